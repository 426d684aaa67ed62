package seo

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Summary counts issues by severity across a report
type Summary struct {
	Pages    int `json:"pages"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Fixable  int `json:"fixable"`
}

// Report is a site-wide analysis
type Report struct {
	Score       int          `json:"score"`
	BaseURL     string       `json:"base_url,omitempty"`
	Summary     Summary      `json:"summary"`
	Pages       []PageReport `json:"pages"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Analyze checks every page and aggregates the site score as the mean page score
func Analyze(pages []Page, baseURL string) *Report {
	r := &Report{BaseURL: baseURL, Pages: make([]PageReport, 0, len(pages)), GeneratedAt: time.Now().UTC()}
	for _, p := range pages {
		pr := AnalyzePage(p)
		if baseURL != "" {
			pr.URL = PageURL(baseURL, p.Path)
		}
		r.Pages = append(r.Pages, pr)
	}
	sort.Slice(r.Pages, func(i, j int) bool { return r.Pages[i].Path < r.Pages[j].Path })
	r.recompute()
	return r
}

// FromPageReports aggregates already analyzed pages
func FromPageReports(baseURL string, pages ...PageReport) *Report {
	r := &Report{BaseURL: baseURL, Pages: pages, GeneratedAt: time.Now().UTC()}
	r.recompute()
	return r
}

func (r *Report) recompute() {
	r.Summary = Summary{Pages: len(r.Pages)}
	if len(r.Pages) == 0 {
		r.Score = 0
		return
	}
	total := 0
	for _, p := range r.Pages {
		total += p.Score
		for _, i := range p.Issues {
			switch i.Severity {
			case SeverityError:
				r.Summary.Errors++
			case SeverityWarning:
				r.Summary.Warnings++
			case SeverityInfo:
				r.Summary.Infos++
			}
			if i.Fixable {
				r.Summary.Fixable++
			}
		}
	}
	r.Score = int(math.Round(float64(total) / float64(len(r.Pages))))
}

// Markdown renders the report for humans
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# SEO report\n\n")
	fmt.Fprintf(&b, "**Score:** %d/100  \n", r.Score)
	if r.BaseURL != "" {
		fmt.Fprintf(&b, "**Site:** %s  \n", r.BaseURL)
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "| Pages | Errors | Warnings | Info | Auto-fixable |\n|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n", r.Summary.Pages, r.Summary.Errors, r.Summary.Warnings, r.Summary.Infos, r.Summary.Fixable)

	for _, p := range r.Pages {
		fmt.Fprintf(&b, "\n## %s (%d/100)\n\n", p.Path, p.Score)
		if len(p.Issues) == 0 {
			b.WriteString("No issues found.\n")
			continue
		}
		for _, i := range p.Issues {
			fix := ""
			if i.Fixable {
				fix = " _(auto-fixable)_"
			}
			fmt.Fprintf(&b, "- **%s** `%s`: %s%s\n", i.Severity, i.Code, i.Message, fix)
		}
	}
	return b.String()
}
