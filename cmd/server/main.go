package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	artifactapp "github.com/alfred/backend/internal/application/artifact"
	billingapp "github.com/alfred/backend/internal/application/billing"
	builderapp "github.com/alfred/backend/internal/application/builder"
	chatapp "github.com/alfred/backend/internal/application/chat"
	deploymentapp "github.com/alfred/backend/internal/application/deployment"
	identityapp "github.com/alfred/backend/internal/application/identity"
	notificationapp "github.com/alfred/backend/internal/application/notification"
	personaapp "github.com/alfred/backend/internal/application/persona"
	registrarapp "github.com/alfred/backend/internal/application/registrar"
	seoapp "github.com/alfred/backend/internal/application/seo"
	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/auth"
	infrabilling "github.com/alfred/backend/internal/infrastructure/billing"
	"github.com/alfred/backend/internal/infrastructure/browser"
	"github.com/alfred/backend/internal/infrastructure/cache"
	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/alfred/backend/internal/infrastructure/email"
	"github.com/alfred/backend/internal/infrastructure/event"
	"github.com/alfred/backend/internal/infrastructure/hosting"
	"github.com/alfred/backend/internal/infrastructure/imagegen"
	"github.com/alfred/backend/internal/infrastructure/llm"
	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/infrastructure/migration"
	"github.com/alfred/backend/internal/infrastructure/persistence"
	"github.com/alfred/backend/internal/infrastructure/scheduler"
	"github.com/alfred/backend/internal/infrastructure/storage"
	"github.com/alfred/backend/internal/infrastructure/studio"
	"github.com/alfred/backend/internal/infrastructure/telemetry"
	"github.com/alfred/backend/internal/interfaces/http/handler"
	"github.com/alfred/backend/internal/interfaces/http/middleware"
	"github.com/alfred/backend/internal/interfaces/http/router"
	"github.com/alfred/backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/alfred/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Alfred API
//	@version		1.0
//	@description	Chat, build, deploy and publish web projects with an AI assistant.

//	@contact.name	Alfred Support
//	@contact.email	support@alfred.dev

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity provider. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes first so the logger can be bridged to the collector
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize OTLP metrics", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	defer func() { _ = log.Sync() }()

	log.Info("Starting Alfred backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	flushSentry, err := telemetry.InitSentry(cfg.Sentry, version, log)
	if err != nil {
		log.Warn("Sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry.PyroscopeAddress, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics("alfred")
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, false, log); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}

	store := cache.NewStore(cfg.Redis, log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	conversationRepo := persistence.NewGormConversationRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	fileRepo := persistence.NewGormFileRepository(db.DB)
	artifactRepo := persistence.NewGormArtifactRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	deploymentRepo := persistence.NewGormDeploymentRepository(db.DB)
	purchaseRepo := persistence.NewGormDomainPurchaseRepository(db.DB)
	personaRepo := persistence.NewGormPersonaRepository(db.DB)
	renderJobRepo := persistence.NewGormRenderJobRepository(db.DB)

	// Providers
	facets := facet.MustDefault()
	plans := billing.NewCatalogue(billing.PriceIDs(cfg.Stripe.PriceIDs))
	p := newProviders(ctx, cfg, log, metrics)
	defer p.close()

	// Events
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	mailer := email.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.From, log)
	eventBus.Subscribe(notificationapp.NewHandler(userRepo, projectRepo, mailer, log))
	var forwarder *event.KafkaForwarder
	if len(cfg.Kafka.Brokers) > 0 {
		forwarder = event.NewKafkaForwarder(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		eventBus.Subscribe(forwarder)
		log.Info("Forwarding domain events to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	userService := identityapp.NewUserService(userRepo, facets, log)
	quotaService := billingapp.NewQuotaService(billingapp.QuotaRepositories{
		Users:       userRepo,
		Messages:    messageRepo,
		Projects:    projectRepo,
		Deployments: deploymentRepo,
		Personas:    personaRepo,
	}, plans, metrics, log)
	conversationService := chatapp.NewConversationService(conversationRepo, messageRepo, personaRepo, facets, log)
	messageService := chatapp.NewMessageService(chatapp.MessageServiceDeps{
		Conversations: conversationRepo,
		Messages:      messageRepo,
		Files:         fileRepo,
		Personas:      personaRepo,
		Artifacts:     artifactRepo,
		Facets:        facets,
		LLM:           p.llm,
		Quota:         quotaService,
	}, log)
	artifactService := artifactapp.NewService(artifactRepo, conversationRepo, log)
	projectService := builderapp.NewProjectService(builderapp.ProjectServiceDeps{
		Projects:      projectRepo,
		Conversations: conversationRepo,
		Artifacts:     artifactRepo,
		Facets:        facets,
		LLM:           p.llm,
		Quota:         quotaService,
	}, log)

	runner := deploymentapp.NewRunner(deploymentapp.RunnerDeps{
		Deployments: deploymentRepo,
		Projects:    projectRepo,
		Hosting:     p.hosting,
		Storage:     p.storage,
		LLM:         p.llm,
		Facets:      facets,
		Events:      eventBus,
		Observer:    metrics,
	}, deploymentapp.RunnerConfig{
		PollInterval:   cfg.Vercel.PollInterval,
		AttemptTimeout: cfg.Vercel.AttemptTimeout,
	}, log)
	// a request may ask for up to five attempts
	deployQueue := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Name:              "deployments",
		MaxConcurrentJobs: 4,
		QueueSize:         100,
		JobTimeout:        6 * cfg.Vercel.AttemptTimeout,
	}, scheduler.ExecutorFunc(func(ctx context.Context, job *scheduler.Job) error {
		return runner.Run(ctx, job.ID, job.OwnerID)
	}), log)
	if err := deployQueue.Start(ctx); err != nil {
		log.Fatal("Failed to start deployment workers", zap.Error(err))
	}
	deploymentService := deploymentapp.NewService(deploymentRepo, projectRepo, quotaService, deployQueue, cfg.Vercel.MaxAttempts, log)
	if _, err := deploymentService.Resume(ctx); err != nil {
		log.Warn("Failed to resume interrupted deployments", zap.Error(err))
	}

	registrarService := registrarapp.NewService(registrarapp.ServiceDeps{
		Purchases: purchaseRepo,
		Projects:  projectRepo,
		Registrar: p.registrar,
		Payments:  p.payments,
		Cache:     store,
		Events:    eventBus,
		Observer:  metrics,
	}, domainPricing(cfg.Stripe, log), log)
	seoService := seoapp.NewService(projectRepo, p.renderer, log)
	subscriptionService := billingapp.NewSubscriptionService(userRepo, plans, p.payments, billingapp.RedirectURLs{
		SuccessURL:      cfg.Stripe.SuccessURL,
		CancelURL:       cfg.Stripe.CancelURL,
		PortalReturnURL: cfg.Stripe.PortalReturnURL,
	}, log)
	personaService := personaapp.NewService(personaRepo, p.images, quotaService, log)
	studioService := personaapp.NewStudioService(personaRepo, renderJobRepo, p.worker, metrics, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var ipLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		ipLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	engine := router.New(router.Options{
		Config:    cfg,
		Logger:    log,
		JWT:       auth.NewJWTService(cfg.JWT),
		Users:     userService,
		Limits:    store,
		Metrics:   metrics,
		IPLimiter: ipLimiter,
	}, router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
			"database": handler.PingFunc(db.Ping),
		}),
		Identity:     handler.NewIdentityHandler(userService, facets),
		Conversation: handler.NewConversationHandler(conversationService, messageService, metrics),
		Artifact:     handler.NewArtifactHandler(artifactService),
		Project:      handler.NewProjectHandler(projectService),
		Deployment:   handler.NewDeploymentHandler(deploymentService),
		Domain:       handler.NewDomainHandler(registrarService),
		SEO:          handler.NewSEOHandler(seoService),
		Billing:      handler.NewBillingHandler(subscriptionService),
		Persona:      handler.NewPersonaHandler(personaService, studioService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if ipLimiter != nil {
		ipLimiter.Stop()
	}
	// unfinished deployments stay pending and are resumed on the next boot
	if err := deployQueue.Stop(shutdownCtx); err != nil {
		log.Warn("Deployment workers did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			log.Warn("Kafka writer close failed", zap.Error(err))
		}
	}
	if err := store.Close(); err != nil {
		log.Warn("Cache close failed", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if profiler != nil {
		_ = profiler.Stop()
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			baseLog.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}

// providers holds the outbound adapters. Missing credentials select a
// stand-in that fails with integration.ErrProviderNotConfigured, so the
// server boots with only a database.
type providers struct {
	llm       integration.LLMProvider
	hosting   integration.HostingProvider
	registrar integration.DomainRegistrar
	payments  integration.PaymentProvider
	storage   integration.ObjectStorage
	images    integration.ImageGenerator
	worker    integration.RenderWorker
	renderer  integration.PageRenderer
	closers   []func()
}

func newProviders(ctx context.Context, cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) *providers {
	p := &providers{
		hosting:   hosting.Disabled{},
		registrar: hosting.Disabled{},
		payments:  infrabilling.Disabled{},
		storage:   storage.NewMemoryStorage(int64(cfg.Storage.MemoryLimitMB) << 20),
		images:    imagegen.Disabled{},
		worker:    studio.Disabled{},
	}

	var model integration.LLMProvider = llm.Disabled{}
	if cfg.LLM.AnthropicAPIKey != "" || cfg.LLM.GeminiAPIKey != "" {
		built, err := llm.NewProvider(ctx, cfg.LLM, log)
		if err != nil {
			log.Warn("LLM provider disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			model = built
		}
	}
	p.llm = llm.NewObservedProvider(model, metrics, log)

	if cfg.Vercel.Token != "" {
		vc := hosting.NewVercelConfig(cfg.Vercel.Token, cfg.Vercel.TeamID)
		if cfg.Vercel.BaseURL != "" {
			vc.APIBaseURL = cfg.Vercel.BaseURL
		}
		if vercel, err := hosting.NewVercelAdapter(vc, log); err != nil {
			log.Warn("Vercel disabled", zap.Error(err))
		} else {
			p.hosting, p.registrar = vercel, vercel
		}
	}

	if cfg.Stripe.SecretKey != "" {
		stripe, err := infrabilling.NewStripeAdapter(&infrabilling.StripeConfig{
			SecretKey:  cfg.Stripe.SecretKey,
			BackendURL: cfg.Stripe.BackendURL,
		}, log)
		if err != nil {
			log.Warn("Stripe disabled", zap.Error(err))
		} else {
			p.payments = stripe
		}
	}

	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Warn("Object storage falling back to memory", zap.Error(err))
		} else {
			p.storage = s3
		}
	}

	if cfg.Replicate.Token != "" {
		gen, err := imagegen.NewReplicateGenerator(imagegen.ReplicateConfig{
			Token: cfg.Replicate.Token,
			Model: cfg.Replicate.Model,
		}, log)
		if err != nil {
			log.Warn("Avatar generation disabled", zap.Error(err))
		} else {
			p.images = gen
		}
	}

	if cfg.RunPod.EndpointID != "" {
		client, err := studio.NewRunPodClient(&studio.RunPodConfig{
			EndpointID: cfg.RunPod.EndpointID,
			APIKey:     cfg.RunPod.APIKey,
			BaseURL:    cfg.RunPod.BaseURL,
			Timeout:    cfg.RunPod.Timeout,
		}, log)
		if err != nil {
			log.Warn("Persona studio disabled", zap.Error(err))
		} else {
			p.worker = client
		}
	}

	renderer := browser.NewChromedpRenderer(&browser.ChromedpConfig{
		ExecPath:  cfg.Browser.ExecPath,
		RemoteURL: cfg.Browser.RemoteURL,
		Timeout:   cfg.Browser.RenderTimeout,
		NoSandbox: true,
		Logger:    log,
	})
	p.renderer = renderer
	p.closers = append(p.closers, renderer.Close)

	return p
}

func (p *providers) close() {
	for _, c := range p.closers {
		c()
	}
}

// domainPricing parses the markup settings. Bad values fall back to zero
// so a typo cannot block checkout.
func domainPricing(cfg config.StripeConfig, log *zap.Logger) registrarapp.Pricing {
	parse := func(name, raw string) decimal.Decimal {
		if raw == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			log.Warn("Invalid domain pricing setting", zap.String("setting", name), zap.String("value", raw))
			return decimal.Zero
		}
		return d
	}
	return registrarapp.Pricing{
		MarkupPercent: parse("stripe.domain_markup_pct", cfg.DomainMarkupPct),
		FlatFee:       parse("stripe.domain_flat_fee", cfg.DomainFlatFee),
		Currency:      cfg.Currency,
		ProductName:   cfg.DomainCheckoutName,
		SuccessURL:    cfg.SuccessURL,
		CancelURL:     cfg.CancelURL,
	}
}
