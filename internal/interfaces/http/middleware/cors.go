package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS middleware configuration.
//
// AllowOrigins entries are exact origins, "*", or a subdomain pattern such
// as "https://*.monday.com", which matches any subdomain of monday.com over
// https but not monday.com itself.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns default CORS configuration.
// AllowOrigins is empty: the host platform's iframe origin must be
// configured via config.toml or SIGNBRIDGE_HTTP_CORS_ALLOW_ORIGINS.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID", "X-Monday-Session-Token"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS returns a middleware that handles CORS with default configuration
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// originMatcher decides which request origins receive CORS headers
type originMatcher struct {
	wildcard bool
	exact    map[string]struct{}
	suffixes []subdomainPattern
}

type subdomainPattern struct {
	scheme string // "https://"
	suffix string // ".monday.com"
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch {
		case o == "":
		case o == "*":
			m.wildcard = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			m.suffixes = append(m.suffixes, subdomainPattern{scheme: scheme + "://", suffix: strings.ToLower(host)})
		default:
			m.exact[o] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) empty() bool {
	return !m.wildcard && len(m.exact) == 0 && len(m.suffixes) == 0
}

// match returns the Access-Control-Allow-Origin value for origin, or ""
func (m originMatcher) match(origin string) string {
	if m.wildcard {
		return "*"
	}
	if origin == "" {
		return ""
	}
	if _, ok := m.exact[origin]; ok {
		return origin
	}
	lower := strings.ToLower(origin)
	for _, p := range m.suffixes {
		if !strings.HasPrefix(lower, p.scheme) {
			continue
		}
		host := strings.TrimPrefix(lower, p.scheme)
		if strings.HasSuffix(host, p.suffix) && len(host) > len(p.suffix) && !strings.ContainsAny(host, "/:@") {
			return origin
		}
	}
	return ""
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests always end with 204; headers are only added for
// allowed origins. An empty allow list adds no headers at all.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	matcher := newOriginMatcher(cfg.AllowOrigins)

	return func(c *gin.Context) {
		if !matcher.empty() {
			if allowed := matcher.match(c.Request.Header.Get("Origin")); allowed != "" {
				setCORSHeaders(c, cfg, allowed)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, cfg CORSConfig, allowedOrigin string) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", allowedOrigin)
	if allowedOrigin != "*" {
		h.Add("Vary", "Origin")
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}
	h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
	if len(cfg.ExposeHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
	}
}
