package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Redis      RedisConfig
	Monday     MondayConfig
	DocuSeal   DocuSealConfig
	Extraction ExtractionConfig
	AssetCache AssetCacheConfig
	Preview    PreviewConfig
	Storage    StorageConfig
	Session    SessionConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	// Rate limiting for the download proxy
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// DownloadAllowedHosts restricts the download proxy; empty allows any host
	DownloadAllowedHosts []string
	DownloadTimeout      time.Duration
}

// RedisConfig holds Redis connection settings.
// Redis is optional: when disabled, caches are kept in process memory.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MondayConfig holds work-board platform settings
type MondayConfig struct {
	APIURL       string
	APIToken     string
	APIVersion   string
	ClientSecret string // verifies host session tokens
	Timeout      time.Duration
	UseMock      bool // serve fixture items instead of calling the platform
	TestMode     bool // outside the host, load items from TestBoardID
	TestBoardID  string
	TestItems    int // items listed from the test board
}

// DocuSealConfig holds signing platform settings
type DocuSealConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	UseMock bool
}

// ExtractionConfig holds the column title keywords
type ExtractionConfig struct {
	EmailKeywords []string
	FileKeywords  []string
}

// AssetCacheConfig holds resolved asset URL caching settings
type AssetCacheConfig struct {
	TTL time.Duration
}

// PreviewConfig holds temporary preview URL settings
type PreviewConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxBytes      int64
	Backend       string // memory or s3
	PublicBaseURL string // prefix for memory-backed preview URLs
}

// StorageConfig holds S3-compatible object storage settings for previews
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
}

// SessionConfig holds workflow session settings
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SIGNBRIDGE_ prefix (e.g., SIGNBRIDGE_MONDAY_API_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SIGNBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),

			DownloadAllowedHosts: v.GetStringSlice("http.download_allowed_hosts"),
			DownloadTimeout:      v.GetDuration("http.download_timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Monday: MondayConfig{
			APIURL:       v.GetString("monday.api_url"),
			APIToken:     v.GetString("monday.api_token"),
			APIVersion:   v.GetString("monday.api_version"),
			ClientSecret: v.GetString("monday.client_secret"),
			Timeout:      v.GetDuration("monday.timeout"),
			UseMock:      v.GetBool("monday.use_mock"),
			TestMode:     v.GetBool("monday.test_mode"),
			TestBoardID:  v.GetString("monday.test_board_id"),
			TestItems:    v.GetInt("monday.test_items"),
		},
		DocuSeal: DocuSealConfig{
			BaseURL: v.GetString("docuseal.base_url"),
			APIKey:  v.GetString("docuseal.api_key"),
			Timeout: v.GetDuration("docuseal.timeout"),
			UseMock: v.GetBool("docuseal.use_mock"),
		},
		Extraction: ExtractionConfig{
			EmailKeywords: v.GetStringSlice("extraction.email_keywords"),
			FileKeywords:  v.GetStringSlice("extraction.file_keywords"),
		},
		AssetCache: AssetCacheConfig{
			TTL: v.GetDuration("asset_cache.ttl"),
		},
		Preview: PreviewConfig{
			TTL:           v.GetDuration("preview.ttl"),
			SweepInterval: v.GetDuration("preview.sweep_interval"),
			MaxBytes:      v.GetInt64("preview.max_bytes"),
			Backend:       v.GetString("preview.backend"),
			PublicBaseURL: v.GetString("preview.public_base_url"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			KeyPrefix:       v.GetString("storage.key_prefix"),
		},
		Session: SessionConfig{
			IdleTimeout:   v.GetDuration("session.idle_timeout"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "signbridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
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
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Monday-Session-Token"}
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.DownloadTimeout == 0 {
		cfg.HTTP.DownloadTimeout = 60 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Monday.APIURL == "" {
		cfg.Monday.APIURL = "https://api.monday.com/v2"
	}
	if cfg.Monday.APIVersion == "" {
		cfg.Monday.APIVersion = "2024-10"
	}
	if cfg.Monday.Timeout == 0 {
		cfg.Monday.Timeout = 30 * time.Second
	}
	if cfg.Monday.TestItems == 0 {
		cfg.Monday.TestItems = 25
	}
	if cfg.DocuSeal.BaseURL == "" {
		cfg.DocuSeal.BaseURL = "http://localhost:3000"
	}
	if cfg.DocuSeal.Timeout == 0 {
		cfg.DocuSeal.Timeout = 30 * time.Second
	}
	if len(cfg.Extraction.EmailKeywords) == 0 {
		cfg.Extraction.EmailKeywords = []string{"email", "correo"}
	}
	if len(cfg.Extraction.FileKeywords) == 0 {
		cfg.Extraction.FileKeywords = []string{"pdf"}
	}
	if cfg.AssetCache.TTL == 0 {
		cfg.AssetCache.TTL = 30 * time.Minute
	}
	if cfg.Preview.TTL == 0 {
		cfg.Preview.TTL = 5 * time.Minute
	}
	if cfg.Preview.SweepInterval == 0 {
		cfg.Preview.SweepInterval = 5 * time.Minute
	}
	if cfg.Preview.MaxBytes == 0 {
		cfg.Preview.MaxBytes = 25 << 20
	}
	if cfg.Preview.Backend == "" {
		cfg.Preview.Backend = "memory"
	}
	if cfg.Preview.PublicBaseURL == "" {
		cfg.Preview.PublicBaseURL = "/api/v1/previews"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "previews/"
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 30 * time.Minute
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 5 * time.Minute
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
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.Monday.APIURL); err != nil {
		return fmt.Errorf("monday.api_url is not a valid URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.DocuSeal.BaseURL); err != nil {
		return fmt.Errorf("docuseal.base_url is not a valid URL: %w", err)
	}
	if c.Monday.TestMode && c.Monday.TestBoardID == "" {
		return fmt.Errorf("monday.test_board_id is required when monday.test_mode is enabled")
	}
	if c.Monday.TestItems < 1 || c.Monday.TestItems > 500 {
		return fmt.Errorf("monday.test_items must be between 1 and 500, got %d", c.Monday.TestItems)
	}

	switch c.Preview.Backend {
	case "memory":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when preview.backend is s3")
		}
	default:
		return fmt.Errorf("preview.backend must be memory or s3, got %q", c.Preview.Backend)
	}
	if c.Preview.TTL < time.Second {
		return fmt.Errorf("preview.ttl must be at least 1s")
	}
	if c.HTTP.RateLimitEnabled && c.HTTP.RateLimitRequests < 1 {
		return fmt.Errorf("http.rate_limit_requests must be positive, got %d", c.HTTP.RateLimitRequests)
	}

	if c.App.Env == "production" {
		if !c.Monday.UseMock && c.Monday.ClientSecret == "" {
			return fmt.Errorf("monday.client_secret is required in production")
		}
		if !c.DocuSeal.UseMock && c.DocuSeal.APIKey == "" {
			return fmt.Errorf("docuseal.api_key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
