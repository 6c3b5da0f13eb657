package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "signbridge", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "https://api.monday.com/v2", cfg.Monday.APIURL)
	assert.Equal(t, "http://localhost:3000", cfg.DocuSeal.BaseURL)
	assert.Equal(t, []string{"email", "correo"}, cfg.Extraction.EmailKeywords)
	assert.Equal(t, []string{"pdf"}, cfg.Extraction.FileKeywords)
	assert.Equal(t, 5*time.Minute, cfg.Preview.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Preview.SweepInterval)
	assert.Equal(t, "memory", cfg.Preview.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "signbridge", cfg.Telemetry.ServiceName)
	assert.False(t, cfg.HTTP.RateLimitEnabled)
	assert.Equal(t, 60, cfg.HTTP.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
	assert.Empty(t, cfg.HTTP.DownloadAllowedHosts)
	assert.Equal(t, 60*time.Second, cfg.HTTP.DownloadTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGNBRIDGE_APP_PORT", "9090")
	t.Setenv("SIGNBRIDGE_MONDAY_API_TOKEN", "tok")
	t.Setenv("SIGNBRIDGE_MONDAY_TEST_MODE", "true")
	t.Setenv("SIGNBRIDGE_MONDAY_TEST_BOARD_ID", "123")
	t.Setenv("SIGNBRIDGE_PREVIEW_TTL", "2m")
	t.Setenv("SIGNBRIDGE_REDIS_ENABLED", "true")
	t.Setenv("SIGNBRIDGE_EXTRACTION_EMAIL_KEYWORDS", "mail correo")
	t.Setenv("SIGNBRIDGE_HTTP_DOWNLOAD_ALLOWED_HOSTS", "monday.com files.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "tok", cfg.Monday.APIToken)
	assert.True(t, cfg.Monday.TestMode)
	assert.Equal(t, "123", cfg.Monday.TestBoardID)
	assert.Equal(t, 2*time.Minute, cfg.Preview.TTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"mail", "correo"}, cfg.Extraction.EmailKeywords)
	assert.Equal(t, []string{"monday.com", "files.example.org"}, cfg.HTTP.DownloadAllowedHosts)
}

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"test mode needs board", func(c *Config) { c.Monday.TestMode = true }, "monday.test_board_id"},
		{"bad docuseal url", func(c *Config) { c.DocuSeal.BaseURL = "::nope" }, "docuseal.base_url"},
		{"unknown preview backend", func(c *Config) { c.Preview.Backend = "disk" }, "preview.backend"},
		{"s3 needs bucket", func(c *Config) { c.Preview.Backend = "s3" }, "storage.bucket"},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
		{"test items out of range", func(c *Config) { c.Monday.TestItems = 1000 }, "monday.test_items"},
		{
			"rate limit needs requests",
			func(c *Config) {
				c.HTTP.RateLimitEnabled = true
				c.HTTP.RateLimitRequests = -1
			},
			"rate_limit_requests",
		},
		{
			"production needs secrets",
			func(c *Config) { c.App.Env = "production" },
			"monday.client_secret",
		},
		{
			"production forbids wildcard cors",
			func(c *Config) {
				c.App.Env = "production"
				c.Monday.ClientSecret = "s"
				c.DocuSeal.APIKey = "k"
				c.HTTP.CORSAllowOrigins = []string{"*"}
			},
			"cors_allow_origins",
		},
		{
			"production with mocks needs no secrets",
			func(c *Config) {
				c.App.Env = "production"
				c.Monday.UseMock = true
				c.DocuSeal.UseMock = true
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
