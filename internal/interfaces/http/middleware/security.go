package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds configuration for security headers
type SecurityConfig struct {
	HSTSEnabled           bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	CSPEnabled bool
	// CSPDirective replaces the generated policy when set
	CSPDirective string
	// FrameAncestors may embed the app; empty forbids framing
	FrameAncestors []string
	// FrameSources may be framed by the app, such as the signing form
	FrameSources []string
	// ConnectSources may be fetched from the browser besides 'self'
	ConnectSources []string

	PermissionsPolicyEnabled   bool
	PermissionsPolicyDirective string

	// FrameOptions is the X-Frame-Options value; empty omits the header
	FrameOptions string
}

// DefaultSecurityConfig returns settings for a standalone deployment.
// HSTS is off since it requires HTTPS.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSEnabled:                false,
		HSTSMaxAge:                 31536000,
		HSTSIncludeSubdomains:      true,
		CSPEnabled:                 true,
		PermissionsPolicyEnabled:   true,
		PermissionsPolicyDirective: "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
		FrameOptions:               "DENY",
	}
}

// EmbeddedSecurityConfig returns settings for an app framed by the host
// platform: frame-ancestors lists 'self' plus ancestors and X-Frame-Options
// is dropped, since it cannot express an allow list.
func EmbeddedSecurityConfig(ancestors ...string) SecurityConfig {
	cfg := DefaultSecurityConfig()
	cfg.FrameOptions = ""
	cfg.FrameAncestors = append([]string{"'self'"}, ancestors...)
	return cfg
}

// ContentSecurityPolicy renders the policy sent by SecureWithConfig
func (cfg SecurityConfig) ContentSecurityPolicy() string {
	if cfg.CSPDirective != "" {
		return cfg.CSPDirective
	}
	ancestors := "'none'"
	if len(cfg.FrameAncestors) > 0 {
		ancestors = strings.Join(cfg.FrameAncestors, " ")
	}
	directives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self' data:",
		sourceList("connect-src", cfg.ConnectSources),
		sourceList("frame-src", cfg.FrameSources),
		"frame-ancestors " + ancestors,
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

func sourceList(directive string, extra []string) string {
	return strings.Join(append([]string{directive, "'self'"}, extra...), " ")
}

// Secure adds security headers to responses using default configuration
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to responses with custom configuration
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	var hsts string
	if cfg.HSTSEnabled {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
	}
	var csp string
	if cfg.CSPEnabled {
		csp = cfg.ContentSecurityPolicy()
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if cfg.FrameOptions != "" {
			h.Set("X-Frame-Options", cfg.FrameOptions)
		}
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		if cfg.PermissionsPolicyEnabled && cfg.PermissionsPolicyDirective != "" {
			h.Set("Permissions-Policy", cfg.PermissionsPolicyDirective)
		}
		c.Next()
	}
}
