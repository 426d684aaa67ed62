package seo

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

// ValidateBaseURL checks that base is an absolute http(s) URL and returns it without a trailing slash
func ValidateBaseURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("seo: base url must be an absolute http(s) url")
	}
	u.RawQuery, u.Fragment = "", ""
	return strings.TrimRight(u.String(), "/"), nil
}

// RoutePath maps a file path to the URL path it is served at:
// index.html → /, docs/index.html → /docs/, about.html → /about.html
func RoutePath(filePath string) string {
	p := "/" + strings.TrimLeft(filePath, "/")
	if strings.EqualFold(path.Base(p), "index.html") || strings.EqualFold(path.Base(p), "index.htm") {
		dir := path.Dir(p)
		if dir == "/" {
			return "/"
		}
		return dir + "/"
	}
	return p
}

// PageURL joins a base URL and a file path
func PageURL(base, filePath string) string {
	return strings.TrimRight(base, "/") + RoutePath(filePath)
}

// Sitemap renders sitemap.xml for the indexable pages. The root gets
// priority 1.0, everything else 0.8.
func Sitemap(pages []Page, baseURL string, lastMod time.Time) ([]byte, error) {
	base, err := ValidateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	set := urlSet{XMLNS: sitemapNS}
	seen := map[string]bool{}
	for _, p := range pages {
		if IsNoindex(p) {
			continue
		}
		route := RoutePath(p.Path)
		if seen[route] {
			continue
		}
		seen[route] = true
		priority := "0.8"
		if route == "/" {
			priority = "1.0"
		}
		entry := sitemapURL{Loc: base + route, ChangeFreq: "weekly", Priority: priority}
		if !lastMod.IsZero() {
			entry.LastMod = lastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, entry)
	}
	sort.SliceStable(set.URLs, func(i, j int) bool {
		if set.URLs[i].Priority != set.URLs[j].Priority {
			return set.URLs[i].Priority > set.URLs[j].Priority
		}
		return set.URLs[i].Loc < set.URLs[j].Loc
	})

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("seo: marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Robots renders a permissive robots.txt pointing at the sitemap
func Robots(baseURL string) (string, error) {
	base, err := ValidateBaseURL(baseURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", base), nil
}
