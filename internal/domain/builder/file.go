package builder

import (
	"path"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/alfred/backend/internal/domain/shared"
)

const (
	MaxFiles      = 200
	MaxFileSize   = 512 * 1024
	MaxPathLength = 255
	snapDistance  = 2
)

var (
	ErrInvalidPath  = shared.NewDomainError("INVALID_FILE_PATH", "File path is invalid")
	ErrFileTooLarge = shared.NewDomainError("FILE_TOO_LARGE", "File exceeds 512 KiB")
	ErrTooManyFiles = shared.NewDomainError("TOO_MANY_FILES", "A project can hold at most 200 files")
)

// ProjectFile is one file of a builder project
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileChange describes a write applied to the project
type FileChange struct {
	Path        string `json:"path"`
	Created     bool   `json:"created"`
	RequestedAs string `json:"requested_as,omitempty"`
}

// NewProjectFile validates and normalizes a file
func NewProjectFile(p, content string) (ProjectFile, error) {
	norm, err := NormalizePath(p)
	if err != nil {
		return ProjectFile{}, err
	}
	if len(content) > MaxFileSize {
		return ProjectFile{}, ErrFileTooLarge
	}
	return ProjectFile{Path: norm, Content: content}, nil
}

// NormalizePath returns a clean relative slash path, rejecting traversal
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	p = strings.TrimLeft(path.Clean("/"+p), "/")
	if p == "" || p == "." || len(p) > MaxPathLength {
		return "", ErrInvalidPath
	}
	return p, nil
}

func normalizeFiles(files []ProjectFile) ([]ProjectFile, error) {
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}
	seen := make(map[string]int, len(files))
	out := make([]ProjectFile, 0, len(files))
	for _, f := range files {
		nf, err := NewProjectFile(f.Path, f.Content)
		if err != nil {
			return nil, err
		}
		if idx, dup := seen[nf.Path]; dup {
			out[idx] = nf
			continue
		}
		seen[nf.Path] = len(out)
		out = append(out, nf)
	}
	return out, nil
}

func sortFiles(files []ProjectFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

// ApplyPatch writes model-proposed files into the project. A path that does
// not exist is snapped to the closest existing path within a small edit
// distance (e.g. App.jsx vs App.tsx); otherwise the file is added.
func (p *Project) ApplyPatch(files []ProjectFile) ([]FileChange, error) {
	existing := make([]string, 0, len(p.Metadata.Files))
	for _, f := range p.Metadata.Files {
		existing = append(existing, f.Path)
	}

	changes := make([]FileChange, 0, len(files))
	for _, f := range files {
		norm, err := NormalizePath(f.Path)
		if err != nil {
			return changes, err
		}
		target := ClosestPath(norm, existing)
		created, err := p.UpsertFile(target, f.Content)
		if err != nil {
			return changes, err
		}
		change := FileChange{Path: target, Created: created}
		if target != norm {
			change.RequestedAs = norm
		}
		if created {
			existing = append(existing, target)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// ClosestPath returns the candidate nearest to p when within the snap distance,
// or p itself. Exact matches win.
func ClosestPath(p string, candidates []string) string {
	best, bestDist := "", snapDistance+1
	for _, c := range candidates {
		if c == p {
			return p
		}
		if path.Dir(c) != path.Dir(p) {
			continue
		}
		if d := levenshtein.ComputeDistance(c, p); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return p
	}
	return best
}
