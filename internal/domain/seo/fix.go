package seo

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DescriptionTarget is the length generated descriptions are cut to
const DescriptionTarget = 155

// FixOptions tunes generated tags
type FixOptions struct {
	BaseURL  string
	SiteName string
	// Descriptions overrides generated meta descriptions by page path
	Descriptions map[string]string
	Lang         string
}

// PageFix lists what was changed on a page
type PageFix struct {
	Path    string   `json:"path"`
	Applied []string `json:"applied"`
}

var (
	titleCaser   = cases.Title(language.English)
	strictPolicy = bluemonday.StrictPolicy()
)

// FixPages applies every mechanical fix and returns the rewritten pages
// together with the changes. Pages that need nothing are returned unchanged.
func FixPages(pages []Page, opts FixOptions) ([]Page, []PageFix, error) {
	out := make([]Page, 0, len(pages))
	var fixes []PageFix
	for _, p := range pages {
		fixed, applied, err := FixPage(p, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("seo: fix %s: %w", p.Path, err)
		}
		out = append(out, fixed)
		if len(applied) > 0 {
			fixes = append(fixes, PageFix{Path: p.Path, Applied: applied})
		}
	}
	return out, fixes, nil
}

// FixPage rewrites a single document
func FixPage(p Page, opts FixOptions) (Page, []string, error) {
	f, err := parse(p.HTML)
	if err != nil {
		return p, nil, err
	}
	if f.htmlNode == nil || f.head == nil {
		return p, nil, fmt.Errorf("document has no html/head element")
	}
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}
	var applied []string

	if f.lang == "" {
		setAttr(f.htmlNode, "lang", lang)
		applied = append(applied, "added lang attribute")
	}
	if !f.hasCharset {
		prepend(f.head, element(atom.Meta, "charset", "utf-8"))
		applied = append(applied, "added charset")
	}
	if !f.hasViewport {
		f.setMeta("name", "viewport", "width=device-width, initial-scale=1")
		applied = append(applied, "added viewport meta tag")
	}

	title := f.title
	if !f.hasTitle || title == "" {
		title = TitleFromPath(p.Path, opts.SiteName)
		setTitle(f, title)
		applied = append(applied, fmt.Sprintf("added title %q", title))
	}

	description := f.description
	if !f.hasDesc {
		description = pickDescription(p.Path, f, title, opts)
		f.setMeta("name", "description", description)
		applied = append(applied, "added meta description")
	}

	if !f.ogTitle {
		f.setMeta("property", "og:title", title)
		applied = append(applied, "added og:title")
	}
	if !f.ogDescription && description != "" {
		f.setMeta("property", "og:description", description)
		applied = append(applied, "added og:description")
	}
	if !f.hasCanonical && opts.BaseURL != "" {
		if base, err := ValidateBaseURL(opts.BaseURL); err == nil {
			f.head.AppendChild(element(atom.Link, "rel", "canonical", "href", PageURL(base, p.Path)))
			applied = append(applied, "added canonical link")
		}
	}
	for _, img := range f.imgsNoAlt {
		setAttr(img, "alt", AltFromSrc(attr(img, "src")))
	}
	if n := len(f.imgsNoAlt); n > 0 {
		applied = append(applied, fmt.Sprintf("added alt text to %d image(s)", n))
	}

	if len(applied) == 0 {
		return p, nil, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, f.root); err != nil {
		return p, nil, err
	}
	return Page{Path: p.Path, HTML: buf.String()}, applied, nil
}

func pickDescription(pagePath string, f *facts, title string, opts FixOptions) string {
	if d, ok := opts.Descriptions[pagePath]; ok {
		if clean := SanitizeText(d); clean != "" {
			return Truncate(clean, DescriptionTarget)
		}
	}
	if f.firstPara != "" {
		return Truncate(f.firstPara, DescriptionTarget)
	}
	return Truncate(title, DescriptionTarget)
}

// SanitizeText strips markup from user supplied text
func SanitizeText(s string) string {
	return collapse(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// TitleFromPath derives a readable title from a file name. Index pages take
// the site name (or their directory name).
func TitleFromPath(filePath, siteName string) string {
	base := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if strings.EqualFold(base, "index") {
		dir := path.Base(path.Dir(filePath))
		if dir == "." || dir == "/" {
			if siteName != "" {
				return siteName
			}
			return "Home"
		}
		base = dir
	}
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(base))
	title := titleCaser.String(strings.Join(words, " "))
	if siteName != "" {
		if full := title + " | " + siteName; utf8.RuneCountInString(full) <= TitleMax {
			return full
		}
	}
	return title
}

// AltFromSrc produces alt text from an image URL; an empty src yields an empty alt
func AltFromSrc(src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := strings.TrimSuffix(path.Base(src), path.Ext(src))
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(base))
	if len(words) == 0 {
		return ""
	}
	text := strings.ToLower(strings.Join(words, " "))
	r, size := utf8.DecodeRuneInString(text)
	return strings.ToUpper(string(r)) + text[size:]
}

// Truncate cuts s to at most n runes at a word boundary, marking the cut with an ellipsis
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n-1])
	if runes[n-1] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > n/2 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func element(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// setMeta fills the content of an existing meta element (for example one
// with an empty content attribute) or appends a new one to head
func (f *facts) setMeta(keyAttr, key, content string) {
	if n, ok := f.metaNodes[key]; ok {
		setAttr(n, "content", content)
		return
	}
	n := element(atom.Meta, keyAttr, key, "content", content)
	f.head.AppendChild(n)
	f.metaNodes[key] = n
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func prepend(parent, child *html.Node) {
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

func setTitle(f *facts, title string) {
	var existing *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if existing != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			existing = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(f.head)
	if existing == nil {
		existing = element(atom.Title)
		f.head.AppendChild(existing)
	}
	for c := existing.FirstChild; c != nil; {
		next := c.NextSibling
		existing.RemoveChild(c)
		c = next
	}
	existing.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}
