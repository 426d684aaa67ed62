// Package seo runs rule-based search-engine checks over HTML documents
// and applies the mechanical fixes for them.
package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Severity ranks an issue's impact on the score
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue codes
const (
	CodeMissingTitle         = "missing_title"
	CodeTitleLength          = "title_length"
	CodeMissingDescription   = "missing_description"
	CodeDescriptionLength    = "description_length"
	CodeMissingH1            = "missing_h1"
	CodeMultipleH1           = "multiple_h1"
	CodeMissingLang          = "missing_lang"
	CodeMissingViewport      = "missing_viewport"
	CodeMissingCharset       = "missing_charset"
	CodeMissingCanonical     = "missing_canonical"
	CodeImageMissingAlt      = "image_missing_alt"
	CodeMissingOGTitle       = "missing_og_title"
	CodeMissingOGDescription = "missing_og_description"
	CodeMultipleNoindex      = "multiple_noindex"
	CodeUnparseable          = "unparseable"
)

const (
	TitleMin       = 10
	TitleMax       = 60
	DescriptionMin = 50
	DescriptionMax = 160
)

// Page is one HTML document to analyze
type Page struct {
	Path string
	HTML string
}

// Issue is a single finding
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fixable  bool     `json:"fixable"`
}

// PageReport holds the findings for one page
type PageReport struct {
	Path   string  `json:"path"`
	URL    string  `json:"url,omitempty"`
	Title  string  `json:"title,omitempty"`
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// facts is what the checks need from a parsed document
type facts struct {
	root          *html.Node
	htmlNode      *html.Node
	head          *html.Node
	title         string
	hasTitle      bool
	description   string
	hasDesc       bool
	hasViewport   bool
	hasCharset    bool
	hasCanonical  bool
	ogTitle       bool
	ogDescription bool
	noindex       int
	lang          string
	h1            int
	imgsNoAlt     []*html.Node
	firstPara     string
	// meta elements seen by name or property, so fixes fill them in place
	metaNodes map[string]*html.Node
}

func parse(doc string) (*facts, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	f := &facts{root: root, metaNodes: map[string]*html.Node{}}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Html:
				f.htmlNode = n
				f.lang = strings.TrimSpace(attr(n, "lang"))
			case atom.Head:
				if f.head == nil {
					f.head = n
				}
			case atom.Title:
				if !f.hasTitle {
					f.hasTitle = true
					f.title = collapse(textOf(n))
				}
			case atom.Meta:
				f.meta(n)
			case atom.Link:
				if strings.EqualFold(attr(n, "rel"), "canonical") && attr(n, "href") != "" {
					f.hasCanonical = true
				}
			case atom.H1:
				f.h1++
			case atom.Img:
				if !hasAttr(n, "alt") {
					f.imgsNoAlt = append(f.imgsNoAlt, n)
				}
			case atom.P:
				if f.firstPara == "" {
					f.firstPara = collapse(textOf(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return f, nil
}

func (f *facts) meta(n *html.Node) {
	if hasAttr(n, "charset") || strings.EqualFold(attr(n, "http-equiv"), "content-type") {
		f.hasCharset = true
	}
	content := strings.TrimSpace(attr(n, "content"))
	name := strings.ToLower(attr(n, "name"))
	property := strings.ToLower(attr(n, "property"))
	for _, key := range []string{name, property} {
		if key != "" {
			f.metaNodes[key] = n
		}
	}
	switch name {
	case "description":
		f.hasDesc = content != ""
		f.description = collapse(content)
	case "viewport":
		f.hasViewport = content != ""
	case "robots", "googlebot":
		if strings.Contains(strings.ToLower(content), "noindex") {
			f.noindex++
		}
	}
	switch property {
	case "og:title":
		f.ogTitle = content != ""
	case "og:description":
		f.ogDescription = content != ""
	}
}

// AnalyzePage runs every check against one page
func AnalyzePage(p Page) PageReport {
	r := PageReport{Path: p.Path, Issues: []Issue{}}
	f, err := parse(p.HTML)
	if err != nil {
		r.Issues = append(r.Issues, Issue{Code: CodeUnparseable, Severity: SeverityError, Message: "Document could not be parsed"})
		r.Score = Score(r.Issues)
		return r
	}
	r.Title = f.title
	r.Issues = check(f)
	r.Score = Score(r.Issues)
	return r
}

// IsNoindex reports whether the page asks not to be indexed
func IsNoindex(p Page) bool {
	f, err := parse(p.HTML)
	return err == nil && f.noindex > 0
}

func check(f *facts) []Issue {
	issues := []Issue{}
	add := func(code string, sev Severity, fixable bool, format string, args ...any) {
		issues = append(issues, Issue{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...), Fixable: fixable})
	}

	switch n := utf8.RuneCountInString(f.title); {
	case !f.hasTitle || n == 0:
		add(CodeMissingTitle, SeverityError, true, "Page has no <title>")
	case n < TitleMin || n > TitleMax:
		add(CodeTitleLength, SeverityWarning, false, "Title is %d characters; keep it between %d and %d", n, TitleMin, TitleMax)
	}

	switch n := utf8.RuneCountInString(f.description); {
	case !f.hasDesc:
		add(CodeMissingDescription, SeverityError, true, "Page has no meta description")
	case n < DescriptionMin || n > DescriptionMax:
		add(CodeDescriptionLength, SeverityWarning, false, "Meta description is %d characters; keep it between %d and %d", n, DescriptionMin, DescriptionMax)
	}

	switch {
	case f.h1 == 0:
		add(CodeMissingH1, SeverityWarning, false, "Page has no <h1>")
	case f.h1 > 1:
		add(CodeMultipleH1, SeverityWarning, false, "Page has %d <h1> elements; use exactly one", f.h1)
	}

	if f.lang == "" {
		add(CodeMissingLang, SeverityWarning, true, "<html> has no lang attribute")
	}
	if !f.hasViewport {
		add(CodeMissingViewport, SeverityError, true, "Page has no viewport meta tag")
	}
	if !f.hasCharset {
		add(CodeMissingCharset, SeverityInfo, true, "Page does not declare a charset")
	}
	if !f.hasCanonical {
		add(CodeMissingCanonical, SeverityInfo, true, "Page has no canonical link")
	}
	if n := len(f.imgsNoAlt); n > 0 {
		add(CodeImageMissingAlt, SeverityWarning, true, "%d image(s) have no alt attribute", n)
	}
	if !f.ogTitle {
		add(CodeMissingOGTitle, SeverityInfo, true, "Page has no og:title")
	}
	if !f.ogDescription {
		add(CodeMissingOGDescription, SeverityInfo, true, "Page has no og:description")
	}
	if f.noindex > 1 {
		add(CodeMultipleNoindex, SeverityWarning, false, "Page declares noindex %d times", f.noindex)
	}
	return issues
}

// Score is 100 minus 10 per error, 4 per warning and 1 per info, floored at 0
func Score(issues []Issue) int {
	score := 100
	for _, i := range issues {
		switch i.Severity {
		case SeverityError:
			score -= 10
		case SeverityWarning:
			score -= 4
		case SeverityInfo:
			score--
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
