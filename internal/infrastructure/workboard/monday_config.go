package workboard

import (
	"errors"
	"net/url"
	"time"

	"github.com/signbridge/backend/internal/infrastructure/config"
)

const (
	// MondayProductionAPIURL is the GraphQL endpoint of the work-board platform
	MondayProductionAPIURL = "https://api.monday.com/v2"
	// MondayDefaultAPIVersion is sent in the API-Version header
	MondayDefaultAPIVersion = "2024-10"
	// MondayAssetHostSuffix marks asset URLs that need the API token to download
	MondayAssetHostSuffix = ".monday.com"
)

// Errors for monday configuration
var (
	ErrMondayConfigMissingToken  = errors.New("monday: api token is required")
	ErrMondayConfigInvalidAPIURL = errors.New("monday: api url is invalid")
)

// MondayConfig holds configuration for the monday GraphQL integration
type MondayConfig struct {
	// APIURL is the GraphQL endpoint
	APIURL string
	// APIToken is the personal or app API token
	APIToken string
	// APIVersion pins the GraphQL schema version
	APIVersion string
	// ClientSecret verifies host session tokens; empty disables embedded mode
	ClientSecret string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// NewMondayConfig creates a monday configuration from application settings
func NewMondayConfig(cfg config.MondayConfig) *MondayConfig {
	return &MondayConfig{
		APIURL:       cfg.APIURL,
		APIToken:     cfg.APIToken,
		APIVersion:   cfg.APIVersion,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.Timeout,
	}
}

// Validate validates the configuration and fills defaults
func (c *MondayConfig) Validate() error {
	if c.APIToken == "" {
		return ErrMondayConfigMissingToken
	}
	if c.APIURL == "" {
		c.APIURL = MondayProductionAPIURL
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrMondayConfigInvalidAPIURL
	}
	if c.APIVersion == "" {
		c.APIVersion = MondayDefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
