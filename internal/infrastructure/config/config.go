package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	LLM       LLMConfig
	Vercel    VercelConfig
	Stripe    StripeConfig
	Storage   StorageConfig
	RunPod    RunPodConfig
	Replicate ReplicateConfig
	Email     EmailConfig
	Kafka     KafkaConfig
	Sentry    SentryConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
	Browser   BrowserConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // public URL of the web app, used in checkout redirects
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int  // in minutes
	ConnMaxIdleTime int  // in minutes
	AutoMigrate     bool // apply embedded SQL migrations on server boot
}

// RedisConfig holds Redis connection settings.
// An empty Host disables Redis; caches and rate limits fall back to memory.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating bearer tokens issued by the identity provider
type JWTConfig struct {
	Secret   string
	Issuer   string // empty = issuer not checked
	Audience string // empty = audience not checked
	Leeway   time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	LLMRateLimit      int           // per-user requests on LLM endpoints
	LLMRateWindow     time.Duration // window for LLMRateLimit
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// LLMConfig selects and configures the language model provider
type LLMConfig struct {
	Provider        string // anthropic, gemini
	Model           string
	MaxTokens       int
	AnthropicAPIKey string
	GeminiAPIKey    string
	Timeout         time.Duration
}

// VercelConfig holds Vercel deployment and domains API settings
type VercelConfig struct {
	Token          string
	TeamID         string
	BaseURL        string
	PollInterval   time.Duration
	AttemptTimeout time.Duration
	MaxAttempts    int
}

// StripeConfig holds Stripe billing settings
type StripeConfig struct {
	SecretKey          string
	BackendURL         string // override for stripe-mock in tests
	PriceIDs           map[string]string
	SuccessURL         string
	CancelURL          string
	PortalReturnURL    string
	Currency           string
	DomainMarkupPct    string // decimal string, e.g. "15"
	DomainFlatFee      string // decimal string, e.g. "2.00"
	DomainCheckoutName string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	UsePathStyle      bool
	PresignExpiration time.Duration
	// MemoryLimitMB caps the in-process fallback used without a bucket
	MemoryLimitMB     int
}

// RunPodConfig holds the persona studio worker endpoint settings
type RunPodConfig struct {
	EndpointID string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}

// ReplicateConfig holds avatar generation settings
type ReplicateConfig struct {
	Token string
	Model string
}

// EmailConfig holds transactional email settings
type EmailConfig struct {
	ResendAPIKey string
	From         string
}

// KafkaConfig holds event forwarding settings. No brokers = disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SentryConfig holds error reporting settings
type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // single IPs or CIDR ranges; empty allows all
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
	MetricsEnabled    bool
	PyroscopeAddress  string // empty = profiling disabled
}

// BrowserConfig holds headless Chrome settings for live SEO analysis
type BrowserConfig struct {
	ExecPath      string // empty = chromedp default lookup
	RenderTimeout time.Duration
	RemoteURL     string // ws url of a remote chrome; overrides ExecPath
}

// Load loads configuration from a .env file, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ALFRED_ prefix (e.g., ALFRED_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ALFRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("jwt.secret"),
			Issuer:   v.GetString("jwt.issuer"),
			Audience: v.GetString("jwt.audience"),
			Leeway:   v.GetDuration("jwt.leeway"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			LLMRateLimit:      v.GetInt("http.llm_rate_limit"),
			LLMRateWindow:     v.GetDuration("http.llm_rate_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		LLM: LLMConfig{
			Provider:        v.GetString("llm.provider"),
			Model:           v.GetString("llm.model"),
			MaxTokens:       v.GetInt("llm.max_tokens"),
			AnthropicAPIKey: v.GetString("llm.anthropic_api_key"),
			GeminiAPIKey:    v.GetString("llm.gemini_api_key"),
			Timeout:         v.GetDuration("llm.timeout"),
		},
		Vercel: VercelConfig{
			Token:          v.GetString("vercel.token"),
			TeamID:         v.GetString("vercel.team_id"),
			BaseURL:        v.GetString("vercel.base_url"),
			PollInterval:   v.GetDuration("vercel.poll_interval"),
			AttemptTimeout: v.GetDuration("vercel.attempt_timeout"),
			MaxAttempts:    v.GetInt("vercel.max_attempts"),
		},
		Stripe: StripeConfig{
			SecretKey:          v.GetString("stripe.secret_key"),
			BackendURL:         v.GetString("stripe.backend_url"),
			PriceIDs:           v.GetStringMapString("stripe.price_ids"),
			SuccessURL:         v.GetString("stripe.success_url"),
			CancelURL:          v.GetString("stripe.cancel_url"),
			PortalReturnURL:    v.GetString("stripe.portal_return_url"),
			Currency:           v.GetString("stripe.currency"),
			DomainMarkupPct:    v.GetString("stripe.domain_markup_percent"),
			DomainFlatFee:      v.GetString("stripe.domain_flat_fee"),
			DomainCheckoutName: v.GetString("stripe.domain_checkout_name"),
		},
		Storage: StorageConfig{
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKeyID:       v.GetString("storage.access_key_id"),
			SecretAccessKey:   v.GetString("storage.secret_access_key"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			MemoryLimitMB:     v.GetInt("storage.memory_limit_mb"),
		},
		RunPod: RunPodConfig{
			EndpointID: v.GetString("runpod.endpoint_id"),
			APIKey:     v.GetString("runpod.api_key"),
			BaseURL:    v.GetString("runpod.base_url"),
			Timeout:    v.GetDuration("runpod.timeout"),
		},
		Replicate: ReplicateConfig{
			Token: v.GetString("replicate.token"),
			Model: v.GetString("replicate.model"),
		},
		Email: EmailConfig{
			ResendAPIKey: v.GetString("email.resend_api_key"),
			From:         v.GetString("email.from"),
		},
		Kafka: KafkaConfig{
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Sentry: SentryConfig{
			DSN:              v.GetString("sentry.dsn"),
			Environment:      v.GetString("sentry.environment"),
			TracesSampleRate: v.GetFloat64("sentry.traces_sample_rate"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
		Browser: BrowserConfig{
			ExecPath:      v.GetString("browser.exec_path"),
			RenderTimeout: v.GetDuration("browser.render_timeout"),
			RemoteURL:     v.GetString("browser.remote_url"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "alfred-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:3000"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "alfred"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Leeway == 0 {
		cfg.JWT.Leeway = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// SSE replies stream for as long as the model talks
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.LLMRateLimit == 0 {
		cfg.HTTP.LLMRateLimit = 20
	}
	if cfg.HTTP.LLMRateWindow == 0 {
		cfg.HTTP.LLMRateWindow = time.Minute
	}
	// NOTE: CORS origins have no wildcard fallback; they must be configured explicitly.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "anthropic"
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.Model = "gemini-2.5-flash"
		default:
			cfg.LLM.Model = "claude-sonnet-4-5"
		}
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 8192
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 3 * time.Minute
	}
	if cfg.Vercel.BaseURL == "" {
		cfg.Vercel.BaseURL = "https://api.vercel.com"
	}
	if cfg.Vercel.PollInterval == 0 {
		cfg.Vercel.PollInterval = 5 * time.Second
	}
	if cfg.Vercel.AttemptTimeout == 0 {
		cfg.Vercel.AttemptTimeout = 10 * time.Minute
	}
	if cfg.Vercel.MaxAttempts == 0 {
		cfg.Vercel.MaxAttempts = 3
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "usd"
	}
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = cfg.App.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = cfg.App.BaseURL + "/billing"
	}
	if cfg.Stripe.PortalReturnURL == "" {
		cfg.Stripe.PortalReturnURL = cfg.App.BaseURL + "/billing"
	}
	if cfg.Stripe.DomainMarkupPct == "" {
		cfg.Stripe.DomainMarkupPct = "0"
	}
	if cfg.Stripe.DomainFlatFee == "" {
		cfg.Stripe.DomainFlatFee = "0"
	}
	if cfg.Stripe.DomainCheckoutName == "" {
		cfg.Stripe.DomainCheckoutName = "Domain registration"
	}
	if cfg.Stripe.PriceIDs == nil {
		cfg.Stripe.PriceIDs = map[string]string{}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MemoryLimitMB <= 0 {
		cfg.Storage.MemoryLimitMB = 64
	}
	if cfg.RunPod.BaseURL == "" {
		cfg.RunPod.BaseURL = "https://api.runpod.ai/v2"
	}
	if cfg.RunPod.Timeout == 0 {
		cfg.RunPod.Timeout = 30 * time.Second
	}
	if cfg.Replicate.Model == "" {
		cfg.Replicate.Model = "black-forest-labs/flux-schnell"
	}
	if cfg.Email.From == "" {
		cfg.Email.From = "Alfred <noreply@alfred.dev>"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "alfred.events"
	}
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = cfg.App.Env
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Browser.RenderTimeout == 0 {
		cfg.Browser.RenderTimeout = 20 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.LLM.Provider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("llm.provider must be anthropic or gemini, got %q", c.LLM.Provider)
	}

	if c.Vercel.MaxAttempts < 1 || c.Vercel.MaxAttempts > 5 {
		return fmt.Errorf("vercel.max_attempts must be between 1 and 5, got %d", c.Vercel.MaxAttempts)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled {
			return fmt.Errorf("swagger must be disabled in production")
		}
		if c.Stripe.BackendURL != "" {
			return fmt.Errorf("stripe.backend_url override is not allowed in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Sentry.TracesSampleRate < 0.0 || c.Sentry.TracesSampleRate > 1.0 {
		return fmt.Errorf("sentry.traces_sample_rate must be between 0.0 and 1.0, got %f", c.Sentry.TracesSampleRate)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
