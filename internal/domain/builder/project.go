// Package builder models multi-file generated applications.
package builder

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alfred/backend/internal/domain/seo"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Frameworks the deploy target knows how to build
var Frameworks = map[string]string{
	"static": "",
	"nextjs": "nextjs",
	"vite":   "vite",
	"react":  "create-react-app",
	"svelte": "sveltekit",
	"astro":  "astro",
}

// Metadata is the JSON document stored alongside a project
type Metadata struct {
	Files        []ProjectFile `json:"files"`
	SEO          *seo.Report   `json:"seo,omitempty"`
	CustomDomain string        `json:"custom_domain,omitempty"`
	Prompt       string        `json:"prompt,omitempty"`
}

// Project is a builder project
type Project struct {
	shared.OwnedAggregateRoot
	Name            string
	Description     string
	Framework       string
	Metadata        Metadata
	VercelProjectID string
	ProductionURL   string
	LastDeployedAt  *time.Time
}

// NewProject creates an empty project
func NewProject(ownerID uuid.UUID, name, description, framework string) (*Project, error) {
	p := &Project{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Metadata:           Metadata{Files: []ProjectFile{}},
	}
	if err := p.apply(name, description, framework); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes descriptive fields
func (p *Project) Update(name, description, framework string) error {
	if name == "" {
		name = p.Name
	}
	if framework == "" {
		framework = p.Framework
	}
	if err := p.apply(name, description, framework); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Project) apply(name, description, framework string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot exceed 100 characters")
	}
	framework = strings.ToLower(strings.TrimSpace(framework))
	if framework == "" {
		framework = "static"
	}
	if _, ok := Frameworks[framework]; !ok {
		return shared.NewDomainError("INVALID_FRAMEWORK", "Unsupported framework")
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.Framework = framework
	return nil
}

// Files returns a copy of the project files sorted by path
func (p *Project) Files() []ProjectFile {
	out := make([]ProjectFile, len(p.Metadata.Files))
	copy(out, p.Metadata.Files)
	sortFiles(out)
	return out
}

// File returns the file at path
func (p *Project) File(path string) (ProjectFile, bool) {
	norm, err := NormalizePath(path)
	if err != nil {
		return ProjectFile{}, false
	}
	for _, f := range p.Metadata.Files {
		if f.Path == norm {
			return f, true
		}
	}
	return ProjectFile{}, false
}

// ReplaceFiles swaps the whole file set
func (p *Project) ReplaceFiles(files []ProjectFile) error {
	normalized, err := normalizeFiles(files)
	if err != nil {
		return err
	}
	p.Metadata.Files = normalized
	p.IncrementVersion()
	return nil
}

// UpsertFile writes one file. It reports whether the file was newly created.
func (p *Project) UpsertFile(path, content string) (bool, error) {
	f, err := NewProjectFile(path, content)
	if err != nil {
		return false, err
	}
	for i := range p.Metadata.Files {
		if p.Metadata.Files[i].Path == f.Path {
			p.Metadata.Files[i].Content = f.Content
			p.IncrementVersion()
			return false, nil
		}
	}
	if len(p.Metadata.Files) >= MaxFiles {
		return false, ErrTooManyFiles
	}
	p.Metadata.Files = append(p.Metadata.Files, f)
	p.IncrementVersion()
	return true, nil
}

// DeleteFile removes a file
func (p *Project) DeleteFile(path string) error {
	norm, err := NormalizePath(path)
	if err != nil {
		return err
	}
	for i, f := range p.Metadata.Files {
		if f.Path == norm {
			p.Metadata.Files = append(p.Metadata.Files[:i], p.Metadata.Files[i+1:]...)
			p.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// MergeFiles upserts a batch of files and returns the changed paths
func (p *Project) MergeFiles(files []ProjectFile) ([]FileChange, error) {
	normalized, err := normalizeFiles(files)
	if err != nil {
		return nil, err
	}
	changes := make([]FileChange, 0, len(normalized))
	for _, f := range normalized {
		created, err := p.UpsertFile(f.Path, f.Content)
		if err != nil {
			return changes, err
		}
		changes = append(changes, FileChange{Path: f.Path, Created: created})
	}
	return changes, nil
}

// RecordDeployment stores where the project is live
func (p *Project) RecordDeployment(vercelProjectID, url string, at time.Time) {
	if vercelProjectID != "" {
		p.VercelProjectID = vercelProjectID
	}
	p.ProductionURL = url
	p.LastDeployedAt = &at
	p.IncrementVersion()
}

// SetSEOReport stores the last analysis
func (p *Project) SetSEOReport(r *seo.Report) {
	p.Metadata.SEO = r
	p.IncrementVersion()
}

// SetCustomDomain records a purchased domain
func (p *Project) SetCustomDomain(domain string) {
	p.Metadata.CustomDomain = strings.ToLower(domain)
	p.IncrementVersion()
}

// Pages returns the HTML files as SEO pages
func (p *Project) Pages() []seo.Page {
	var pages []seo.Page
	for _, f := range p.Files() {
		if IsHTML(f.Path) {
			pages = append(pages, seo.Page{Path: f.Path, HTML: f.Content})
		}
	}
	return pages
}

// IsHTML reports whether the path is an HTML document
func IsHTML(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
