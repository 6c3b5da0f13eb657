package esign

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/signbridge/backend/internal/infrastructure/config"
)

// DocuSealDefaultBaseURL is the base URL of a local DocuSeal instance
const DocuSealDefaultBaseURL = "http://localhost:3000"

// Errors for DocuSeal configuration
var (
	ErrDocuSealConfigMissingAPIKey  = errors.New("docuseal: api key is required")
	ErrDocuSealConfigInvalidBaseURL = errors.New("docuseal: base url is invalid")
)

// DocuSealConfig holds configuration for the DocuSeal REST integration
type DocuSealConfig struct {
	// BaseURL is the instance root; API paths are appended to it
	BaseURL string
	// APIKey is sent in the X-Auth-Token header
	APIKey string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// NewDocuSealConfig creates a DocuSeal configuration from application settings
func NewDocuSealConfig(cfg config.DocuSealConfig) *DocuSealConfig {
	return &DocuSealConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}
}

// Validate validates the configuration and fills defaults
func (c *DocuSealConfig) Validate() error {
	if c.APIKey == "" {
		return ErrDocuSealConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DocuSealDefaultBaseURL
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrDocuSealConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
