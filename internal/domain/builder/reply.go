package builder

import (
	"strings"

	"github.com/alfred/backend/internal/domain/artifact"
)

// FilesFromReply collects the fenced blocks of a model reply that name a path.
// It also returns the prose outside the blocks and the number of blocks
// skipped because they carried no path.
func FilesFromReply(reply string) ([]ProjectFile, string, int) {
	var files []ProjectFile
	skipped := 0
	for _, b := range artifact.ExtractCodeBlocks(reply) {
		if b.Title == "" {
			skipped++
			continue
		}
		files = append(files, ProjectFile{Path: b.Title, Content: strings.TrimRight(b.Content, "\n") + "\n"})
	}
	return files, prose(reply), skipped
}

func prose(md string) string {
	var b strings.Builder
	var fence string
	for _, line := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
