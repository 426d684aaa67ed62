package handler

import (
	"context"
	"net/http"

	seoapp "github.com/alfred/backend/internal/application/seo"
	"github.com/alfred/backend/internal/domain/seo"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SEOService is the SEO use case surface the handler needs
type SEOService interface {
	AnalyzeProject(ctx context.Context, ownerID, projectID uuid.UUID, input seoapp.AnalyzeInput) (*seo.Report, error)
	AnalyzeURL(ctx context.Context, input seoapp.AnalyzeURLInput) (*seo.Report, error)
	Report(ctx context.Context, ownerID, projectID uuid.UUID) (*seo.Report, error)
	Sitemap(ctx context.Context, ownerID, projectID uuid.UUID, baseURL string) ([]byte, error)
	Robots(baseURL string) (string, error)
	Fix(ctx context.Context, ownerID, projectID uuid.UUID, input seoapp.FixInput) (*seoapp.FixResultDTO, error)
}

// SEOHandler handles page analysis, fixes, sitemap and robots
type SEOHandler struct {
	BaseHandler
	seo SEOService
}

// NewSEOHandler creates a new SEOHandler
func NewSEOHandler(svc SEOService) *SEOHandler {
	return &SEOHandler{seo: svc}
}

// AnalyzeProject godoc
// @Summary      Analyze a project
// @Description  Scores every HTML page of the project and stores the report on it
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body seoapp.AnalyzeInput false "Site URL for absolute links"
// @Success      200 {object} APIResponse[seo.Report]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Project has no HTML pages"
// @Security     BearerAuth
// @Router       /projects/{id}/seo/analyze [post]
func (h *SEOHandler) AnalyzeProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req seoapp.AnalyzeInput
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	report, err := h.seo.AnalyzeProject(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// AnalyzeURL godoc
// @Summary      Analyze a public page
// @Description  Renders the page in a headless browser and scores it
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        request body seoapp.AnalyzeURLInput true "Page URL"
// @Success      200 {object} APIResponse[seo.Report]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /seo/analyze-url [post]
func (h *SEOHandler) AnalyzeURL(c *gin.Context) {
	var req seoapp.AnalyzeURLInput
	if !h.bindJSON(c, &req) {
		return
	}
	report, err := h.seo.AnalyzeURL(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Report godoc
// @Summary      Get the stored SEO report
// @Tags         seo
// @Produce      json,text/markdown
// @Param        id path string true "Project ID" format(uuid)
// @Param        format query string false "json or markdown" Enums(json, markdown)
// @Success      200 {object} APIResponse[seo.Report]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/seo/report [get]
func (h *SEOHandler) Report(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.seo.Report(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown()))
		return
	}
	h.Success(c, report)
}

// Sitemap godoc
// @Summary      Build sitemap.xml
// @Tags         seo
// @Produce      xml
// @Param        id path string true "Project ID" format(uuid)
// @Param        baseUrl query string false "Site URL; defaults to the custom domain or production URL"
// @Success      200 {string} string "sitemap.xml"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/seo/sitemap [get]
func (h *SEOHandler) Sitemap(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.seo.Sitemap(c.Request.Context(), userID, id, c.Query("baseUrl"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", out)
}

// Robots godoc
// @Summary      Build robots.txt
// @Tags         seo
// @Produce      plain
// @Param        baseUrl query string true "Site URL"
// @Success      200 {string} string "robots.txt"
// @Failure      400 {object} ErrorResponse
// @Router       /seo/robots [get]
func (h *SEOHandler) Robots(c *gin.Context) {
	out, err := h.seo.Robots(c.Query("baseUrl"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
}

// Fix godoc
// @Summary      Apply SEO fixes
// @Description  Adds missing titles, descriptions, lang, viewport, canonical and alt text,
// @Description  writes sitemap.xml and robots.txt when a site URL is known, and re-analyzes
// @Tags         seo
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body seoapp.FixInput false "Site details"
// @Success      200 {object} APIResponse[seoapp.FixResultDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/seo/fix [post]
func (h *SEOHandler) Fix(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req seoapp.FixInput
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	out, err := h.seo.Fix(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, out)
}
