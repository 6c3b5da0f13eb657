package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func securedHeaders(cfg SecurityConfig) http.Header {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Header()
}

func TestSecure_Defaults(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	h := w.Header()
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureWithConfig_Embedded(t *testing.T) {
	cfg := EmbeddedSecurityConfig("https://*.monday.com")
	cfg.FrameSources = []string{"https://sign.example.org"}
	cfg.ConnectSources = []string{"https://sign.example.org"}

	h := securedHeaders(cfg)

	assert.Empty(t, h.Get("X-Frame-Options"))
	csp := h.Get("Content-Security-Policy")
	assert.Contains(t, csp, "frame-ancestors 'self' https://*.monday.com")
	assert.Contains(t, csp, "frame-src 'self' https://sign.example.org")
	assert.Contains(t, csp, "connect-src 'self' https://sign.example.org")
	assert.NotContains(t, csp, "'none'")
}

func TestSecureWithConfig_HSTS(t *testing.T) {
	tests := []struct {
		name     string
		cfg      SecurityConfig
		expected string
	}{
		{"disabled", SecurityConfig{HSTSMaxAge: 60}, ""},
		{"max age only", SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 60}, "max-age=60"},
		{"subdomains", SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 60, HSTSIncludeSubdomains: true}, "max-age=60; includeSubDomains"},
		{"preload", SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 60, HSTSIncludeSubdomains: true, HSTSPreload: true}, "max-age=60; includeSubDomains; preload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, securedHeaders(tt.cfg).Get("Strict-Transport-Security"))
		})
	}
}

func TestSecureWithConfig_CSPOverrideAndDisable(t *testing.T) {
	h := securedHeaders(SecurityConfig{CSPEnabled: true, CSPDirective: "default-src 'none'"})
	assert.Equal(t, "default-src 'none'", h.Get("Content-Security-Policy"))

	h = securedHeaders(SecurityConfig{CSPEnabled: false, CSPDirective: "default-src 'none'"})
	assert.Empty(t, h.Get("Content-Security-Policy"))
}

func TestContentSecurityPolicy(t *testing.T) {
	cfg := DefaultSecurityConfig()
	assert.Equal(t,
		"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; "+
			"font-src 'self' data:; connect-src 'self'; frame-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		cfg.ContentSecurityPolicy())
}
