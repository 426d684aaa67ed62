package artifact

import (
	"fmt"
	"regexp"
	"strings"
)

// CodeBlock is one fenced block found in a markdown document
type CodeBlock struct {
	Index    int    `json:"index"`
	Language string `json:"language"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
}

var titleAttr = regexp.MustCompile(`(?:title|filename|file|path)\s*=\s*(?:"([^"]*)"|'([^']*)'|(\S+))`)

// ExtractCodeBlocks returns the fenced code blocks of a markdown document in order.
// Both ``` and ~~~ fences are recognised; a fence closes only with the same
// character repeated at least as many times. Unterminated and blank blocks are dropped.
func ExtractCodeBlocks(markdown string) []CodeBlock {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	var blocks []CodeBlock

	for i := 0; i < len(lines); i++ {
		fenceChar, fenceLen, info, ok := openingFence(lines[i])
		if !ok {
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lines[j], fenceChar, fenceLen) {
				end = j
				break
			}
		}
		if end < 0 {
			break
		}
		content := strings.Join(lines[i+1:end], "\n")
		i = end
		if strings.TrimSpace(content) == "" {
			continue
		}
		lang, title := parseInfo(info)
		blocks = append(blocks, CodeBlock{
			Index:    len(blocks),
			Language: lang,
			Title:    title,
			Content:  content,
		})
	}
	return blocks
}

// Key returns the artifact key for a block: its path when present,
// otherwise language and position.
func (b CodeBlock) Key() string {
	if b.Title != "" {
		return NormalizeKey(b.Title)
	}
	lang := b.Language
	if lang == "" {
		lang = "text"
	}
	return fmt.Sprintf("%s-%d", lang, b.Index+1)
}

// NormalizeKey trims whitespace, a leading "./" and surrounding slashes
func NormalizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "./")
	return strings.Trim(key, "/")
}

func openingFence(line string) (byte, int, string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return 0, 0, "", false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return 0, 0, "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(trimmed[n:])
	if ch == '`' && strings.Contains(info, "`") {
		return 0, 0, "", false
	}
	return ch, n, info, true
}

func isClosingFence(line string, ch byte, minLen int) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < minLen {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != ch {
			return false
		}
	}
	return true
}

// parseInfo splits an info string such as `tsx title="src/App.tsx"`,
// `tsx src/App.tsx` or `tsx:src/App.tsx` into language and title.
func parseInfo(info string) (string, string) {
	if info == "" {
		return "", ""
	}
	if m := titleAttr.FindStringSubmatch(info); m != nil {
		title := m[1] + m[2] + m[3]
		rest := strings.TrimSpace(strings.Replace(info, m[0], "", 1))
		lang := ""
		if f := strings.Fields(rest); len(f) > 0 {
			lang = f[0]
		}
		return strings.ToLower(lang), strings.TrimSpace(title)
	}

	fields := strings.Fields(info)
	lang := fields[0]
	if idx := strings.IndexByte(lang, ':'); idx > 0 {
		return strings.ToLower(lang[:idx]), strings.TrimSpace(lang[idx+1:])
	}
	title := ""
	if len(fields) > 1 && looksLikePath(fields[1]) {
		title = fields[1]
	}
	return strings.ToLower(lang), title
}

func looksLikePath(s string) bool {
	return strings.ContainsAny(s, "./") && !strings.HasPrefix(s, "{")
}
