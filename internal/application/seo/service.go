// Package seo analyzes and repairs the HTML of builder projects and live sites.
package seo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/seo"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoPages   = shared.NewDomainError("NO_HTML_PAGES", "The project has no HTML pages")
	ErrNoReport  = shared.NewDomainError(shared.ErrNotFound.Code, "The project has not been analyzed yet")
	ErrNoBaseURL = shared.NewDomainError(shared.ErrInvalidInput.Code, "A base URL is required until the project is deployed")
	ErrBadURL    = shared.NewDomainError(shared.ErrInvalidInput.Code, "URL must be a public http(s) address")
)

// AnalyzeInput optionally overrides the site URL used for page links
type AnalyzeInput struct {
	BaseURL string `json:"baseUrl" binding:"omitempty,httpurl"`
}

// AnalyzeURLInput names a live page
type AnalyzeURLInput struct {
	URL string `json:"url" binding:"required,httpurl"`
}

// FixInput tunes generated tags
type FixInput struct {
	BaseURL  string `json:"baseUrl" binding:"omitempty,httpurl"`
	SiteName string `json:"siteName" binding:"max=80"`
	Lang     string `json:"lang" binding:"omitempty,max=12"`
}

// FixResultDTO lists what the fix pass changed
type FixResultDTO struct {
	Changes []seo.PageFix `json:"changes"`
	Written []string      `json:"written"`
	Report  *seo.Report   `json:"report"`
}

// Service runs SEO analysis for projects and URLs
type Service struct {
	projects builder.ProjectRepository
	renderer integration.PageRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new SEO service
func NewService(projects builder.ProjectRepository, renderer integration.PageRenderer, logger *zap.Logger) *Service {
	return &Service{projects: projects, renderer: renderer, logger: logger, now: time.Now}
}

// AnalyzeProject checks every HTML file of the project and stores the report
func (s *Service) AnalyzeProject(ctx context.Context, ownerID, projectID uuid.UUID, input AnalyzeInput) (*seo.Report, error) {
	p, err := s.projects.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	pages := p.Pages()
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	base, err := s.baseURL(p, input.BaseURL, false)
	if err != nil {
		return nil, err
	}
	report := seo.Analyze(pages, base)
	p.SetSEOReport(report)
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Project analyzed",
		zap.String("project_id", p.ID.String()),
		zap.Int("pages", report.Summary.Pages),
		zap.Int("score", report.Score))
	return report, nil
}

// AnalyzeURL renders a live page in a browser and checks it
func (s *Service) AnalyzeURL(ctx context.Context, input AnalyzeURLInput) (*seo.Report, error) {
	u, err := publicURL(input.URL)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.Render(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", u.Host, err)
	}
	pagePath := u.Path
	if pagePath == "" {
		pagePath = "/"
	}
	pr := seo.AnalyzePage(seo.Page{Path: pagePath, HTML: doc})
	pr.URL = u.String()
	return seo.FromPageReports(u.Scheme+"://"+u.Host, pr), nil
}

// Report returns the stored analysis of a project
func (s *Service) Report(ctx context.Context, ownerID, projectID uuid.UUID) (*seo.Report, error) {
	p, err := s.projects.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if p.Metadata.SEO == nil {
		return nil, ErrNoReport
	}
	return p.Metadata.SEO, nil
}

// Sitemap renders sitemap.xml for the project's indexable pages
func (s *Service) Sitemap(ctx context.Context, ownerID, projectID uuid.UUID, baseURL string) ([]byte, error) {
	p, err := s.projects.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	base, err := s.baseURL(p, baseURL, true)
	if err != nil {
		return nil, err
	}
	return seo.Sitemap(p.Pages(), base, s.lastMod(p))
}

// Robots renders a permissive robots.txt for baseURL
func (s *Service) Robots(baseURL string) (string, error) {
	out, err := seo.Robots(baseURL)
	if err != nil {
		return "", ErrNoBaseURL
	}
	return out, nil
}

// Fix applies every mechanical fix, writes sitemap.xml and robots.txt when
// a site URL is known, and stores a fresh report
func (s *Service) Fix(ctx context.Context, ownerID, projectID uuid.UUID, input FixInput) (*FixResultDTO, error) {
	p, err := s.projects.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	pages := p.Pages()
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	base, err := s.baseURL(p, input.BaseURL, false)
	if err != nil {
		return nil, err
	}
	siteName := input.SiteName
	if siteName == "" {
		siteName = p.Name
	}
	fixed, changes, err := seo.FixPages(pages, seo.FixOptions{BaseURL: base, SiteName: siteName, Lang: input.Lang})
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	result := &FixResultDTO{Changes: changes, Written: []string{}}
	if result.Changes == nil {
		result.Changes = []seo.PageFix{}
	}
	for _, c := range changes {
		for _, page := range fixed {
			if page.Path != c.Path {
				continue
			}
			if _, err := p.UpsertFile(page.Path, page.HTML); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, page.Path)
		}
	}
	if base != "" {
		sitemap, err := seo.Sitemap(fixed, base, s.now())
		if err != nil {
			return nil, err
		}
		robots, err := seo.Robots(base)
		if err != nil {
			return nil, err
		}
		if _, err := p.UpsertFile("sitemap.xml", string(sitemap)); err != nil {
			return nil, err
		}
		if _, err := p.UpsertFile("robots.txt", robots); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, "sitemap.xml", "robots.txt")
	}

	result.Report = seo.Analyze(fixed, base)
	p.SetSEOReport(result.Report)
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Project SEO fixed",
		zap.String("project_id", p.ID.String()),
		zap.Int("pages_changed", len(changes)),
		zap.Int("score", result.Report.Score))
	return result, nil
}

// baseURL picks the explicit URL, then the custom domain, then the deployed URL
func (s *Service) baseURL(p *builder.Project, explicit string, required bool) (string, error) {
	candidate := strings.TrimSpace(explicit)
	if candidate == "" && p.Metadata.CustomDomain != "" {
		candidate = "https://" + p.Metadata.CustomDomain
	}
	if candidate == "" {
		candidate = p.ProductionURL
	}
	if candidate == "" {
		if required {
			return "", ErrNoBaseURL
		}
		return "", nil
	}
	base, err := seo.ValidateBaseURL(candidate)
	if err != nil {
		return "", ErrBadURL
	}
	return base, nil
}

func (s *Service) lastMod(p *builder.Project) time.Time {
	if p.LastDeployedAt != nil {
		return *p.LastDeployedAt
	}
	return p.UpdatedAt
}

// publicURL rejects URLs that would make the browser reach private networks
func publicURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrBadURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return nil, ErrBadURL
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return nil, ErrBadURL
		}
	}
	u.Fragment = ""
	return u, nil
}
