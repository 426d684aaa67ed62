package router

import (
	"github.com/alfred/backend/internal/infrastructure/auth"
	"github.com/alfred/backend/internal/infrastructure/cache"
	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/infrastructure/telemetry"
	"github.com/alfred/backend/internal/interfaces/http/handler"
	"github.com/alfred/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	System       *handler.SystemHandler
	Identity     *handler.IdentityHandler
	Conversation *handler.ConversationHandler
	Artifact     *handler.ArtifactHandler
	Project      *handler.ProjectHandler
	Deployment   *handler.DeploymentHandler
	Domain       *handler.DomainHandler
	SEO          *handler.SEOHandler
	Billing      *handler.BillingHandler
	Persona      *handler.PersonaHandler
}

// Options carries what the middleware chain needs
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	JWT    *auth.JWTService
	Users  middleware.UserResolver
	// Limits backs the per-user limit on model-backed endpoints
	Limits cache.Store
	// Metrics is nil when Prometheus is disabled
	Metrics *telemetry.Metrics
	// IPLimiter is owned by the caller, who stops it on shutdown
	IPLimiter *middleware.RateLimiter
}

// publicAPIPaths are API routes reachable without a token
var publicAPIPaths = []string{
	"/api/v1/facets",
	"/api/v1/billing/plans",
	"/api/v1/seo/robots",
	"/api/v1/system/info",
}

// New builds the engine: global middleware, /health, /metrics, /swagger and
// the authenticated /api/v1 tree
func New(opts Options, h Handlers) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	tracing := middleware.DefaultTracingConfig(cfg.Telemetry.ServiceName)
	tracing.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.Tracing(tracing))
	if cfg.Sentry.DSN != "" {
		engine.Use(middleware.Sentry())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(opts.Metrics))
	if opts.IPLimiter != nil {
		engine.Use(middleware.RateLimit(opts.IPLimiter))
	}

	engine.GET("/health", h.System.Health)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	docsAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: opts.JWT,
		Users:      opts.Users,
		Logger:     log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, docsAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: opts.JWT,
			Users:      opts.Users,
			SkipPaths:  publicAPIPaths,
			Logger:     log,
		}),
		middleware.SentryScope(),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(middleware.DefaultProfilingConfig()),
	)
	r.Register(apiGroups(opts, h)...)
	r.Setup()

	return engine
}

// apiGroups declares every /api/v1 route
func apiGroups(opts Options, h Handlers) []RouteRegistrar {
	cfg := opts.Config
	limited := func(scope string) gin.HandlerFunc {
		if opts.Limits == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.UserRateLimit(opts.Limits, scope, cfg.HTTP.LLMRateLimit, cfg.HTTP.LLMRateWindow)
	}

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.Info)

	identity := NewDomainGroup("identity", "")
	identity.GET("/me", h.Identity.GetMe)
	identity.PATCH("/me", h.Identity.UpdateMe)
	identity.GET("/facets", h.Identity.ListFacets)

	conversations := NewDomainGroup("conversations", "/conversations")
	conversations.GET("", h.Conversation.List)
	conversations.POST("", h.Conversation.Create)
	conversations.GET("/:id", h.Conversation.Get)
	conversations.PATCH("/:id", h.Conversation.Update)
	conversations.DELETE("/:id", h.Conversation.Delete)
	conversations.GET("/:id/messages", h.Conversation.ListMessages)
	conversations.POST("/:id/messages", limited("chat"), h.Conversation.SendMessage)
	conversations.GET("/:id/artifacts", h.Artifact.ListByConversation)

	artifacts := NewDomainGroup("artifacts", "/artifacts")
	artifacts.POST("", h.Artifact.Create)
	artifacts.POST("/extract", h.Artifact.Extract)
	artifacts.GET("/:id", h.Artifact.Get)
	artifacts.DELETE("/:id", h.Artifact.Delete)

	projects := NewDomainGroup("projects", "/projects")
	projects.GET("", h.Project.List)
	projects.POST("", h.Project.Create)
	projects.POST("/from-artifacts", h.Project.CreateFromArtifacts)
	projects.GET("/:id", h.Project.Get)
	projects.PATCH("/:id", h.Project.Update)
	projects.DELETE("/:id", h.Project.Delete)
	projects.PUT("/:id/files", h.Project.ReplaceFiles)
	projects.POST("/:id/files", h.Project.UpsertFile)
	projects.DELETE("/:id/files", h.Project.DeleteFile)
	projects.POST("/:id/generate", limited("generate"), h.Project.Generate)
	projects.POST("/:id/deployments", limited("deploy"), h.Deployment.Start)
	projects.GET("/:id/deployments", h.Deployment.ListByProject)
	projects.POST("/:id/seo/analyze", h.SEO.AnalyzeProject)
	projects.POST("/:id/seo/fix", h.SEO.Fix)
	projects.GET("/:id/seo/report", h.SEO.Report)
	projects.GET("/:id/seo/sitemap", h.SEO.Sitemap)

	deployments := NewDomainGroup("deployments", "/deployments")
	deployments.GET("/:id", h.Deployment.Get)

	domains := NewDomainGroup("domains", "/domains")
	domains.GET("/check", h.Domain.Check)
	domains.GET("/suggest", h.Domain.Suggest)
	domains.POST("/checkout", h.Domain.Checkout)
	domains.GET("/purchases", h.Domain.ListPurchases)
	domains.POST("/purchases/:id/confirm", h.Domain.Confirm)

	seo := NewDomainGroup("seo", "/seo")
	seo.POST("/analyze-url", h.SEO.AnalyzeURL)
	seo.GET("/robots", h.SEO.Robots)

	billing := NewDomainGroup("billing", "/billing")
	billing.GET("/plans", h.Billing.Plans)
	billing.GET("/subscription", h.Billing.Subscription)
	billing.POST("/checkout", h.Billing.Checkout)
	billing.POST("/portal", h.Billing.Portal)
	billing.POST("/sync", h.Billing.Sync)

	personas := NewDomainGroup("personas", "/personas")
	personas.GET("", h.Persona.List)
	personas.POST("", h.Persona.Create)
	personas.GET("/presets", h.Persona.Presets)
	personas.GET("/:id", h.Persona.Get)
	personas.PATCH("/:id", h.Persona.Update)
	personas.DELETE("/:id", h.Persona.Delete)
	personas.POST("/:id/avatar", limited("avatar"), h.Persona.GenerateAvatar)
	personas.POST("/:id/renders", limited("render"), h.Persona.SubmitRender)
	personas.GET("/:id/renders", h.Persona.ListRenders)
	personas.GET("/:id/renders/:jobId", h.Persona.GetRender)

	return []RouteRegistrar{
		system, identity, conversations, artifacts, projects,
		deployments, domains, seo, billing, personas,
	}
}
