package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/infrastructure/esign"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/interfaces/http/dto"
	"github.com/signbridge/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// DownloadUserAgent identifies proxied downloads to the file host
const DownloadUserAgent = "signbridge/1.0"

// ProxyConfig configures ProxyHandler
type ProxyConfig struct {
	// SigningBaseURL is the signing platform the /signing-api routes forward to
	SigningBaseURL string
	// SigningAPIKey is added to forwarded requests so browsers never hold it
	SigningAPIKey string
	// DownloadHosts restricts proxied downloads to these hosts and their
	// subdomains. Empty allows any http or https host.
	DownloadHosts []string
	// DownloadTimeout bounds a proxied download
	DownloadTimeout time.Duration
	// Transport overrides the outbound transport
	Transport http.RoundTripper
}

// ProxyHandler forwards browser requests that cannot go to the remote
// platforms directly
type ProxyHandler struct {
	BaseHandler
	signing  *httputil.ReverseProxy
	client   *http.Client
	hosts    []string
	upstream string
}

// NewProxyHandler creates a new ProxyHandler
func NewProxyHandler(cfg ProxyConfig) (*ProxyHandler, error) {
	target, err := url.Parse(strings.TrimRight(cfg.SigningBaseURL, "/"))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid signing base url %q", cfg.SigningBaseURL)
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 60 * time.Second
	}

	h := &ProxyHandler{
		client:   &http.Client{Timeout: cfg.DownloadTimeout, Transport: cfg.Transport},
		upstream: target.Host,
	}
	for _, host := range cfg.DownloadHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			h.hosts = append(h.hosts, host)
		}
	}

	apiKey := cfg.SigningAPIKey
	h.signing = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if apiKey != "" {
				pr.Out.Header.Set(esign.AuthHeader, apiKey)
			}
		},
		Transport:    cfg.Transport,
		ErrorHandler: h.proxyError,
	}
	return h, nil
}

// Signing godoc
// @ID           proxySigningAPI
// @Summary      Signing platform passthrough
// @Description  Forwards any method under /signing-api to the signing platform with the prefix removed
// @Tags         proxy
// @Param        path path string true "Path on the signing platform"
// @Success      200
// @Failure      502 {object} ErrorResponse
// @Router       /signing-api/{path} [get]
func (h *ProxyHandler) Signing(c *gin.Context) {
	path := c.Param("path")
	if path == "" {
		path = "/"
	}
	c.Request.URL.Path = path
	c.Request.URL.RawPath = ""
	h.signing.ServeHTTP(c.Writer, c.Request)
}

// proxyError answers 502 when the signing platform cannot be reached
func (h *ProxyHandler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logger.L(r.Context()).Warn("signing proxy failed",
		zap.String("upstream", h.upstream),
		zap.Error(err),
	)
	writeJSONError(w, http.StatusBadGateway, dto.ErrCodeUpstream, "Signing platform unreachable",
		w.Header().Get(middleware.RequestIDHeader))
}

// Download godoc
// @ID           proxyDownload
// @Summary      Download a file server-side
// @Description  Fetches url with the bearer token and streams it back with the original Content-Type and Content-Length
// @Tags         proxy
// @Produce      application/octet-stream
// @Param        url   query string true "File URL"
// @Param        token query string true "Bearer token for the file host"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/proxy-download [get]
func (h *ProxyHandler) Download(c *gin.Context) {
	rawURL := c.Query("url")
	token := c.Query("token")
	if rawURL == "" || token == "" {
		h.BadRequest(c, "URL and token are required")
		return
	}
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		h.BadRequest(c, "url must be an absolute http or https URL")
		return
	}
	if !h.hostAllowed(target.Hostname()) {
		h.BadRequest(c, "downloads from "+target.Hostname()+" are not allowed")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		h.BadRequest(c, "invalid download request")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", DownloadUserAgent)

	log := logger.L(c.Request.Context()).With(zap.String("host", target.Host))
	resp, err := h.client.Do(req)
	if err != nil {
		log.Warn("proxy download failed", zap.Error(err))
		h.BadGateway(c, "Failed to download file")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("proxy download rejected", zap.Int("upstream_status", resp.StatusCode))
		h.BadGateway(c, fmt.Sprintf("Failed to download file: upstream status %d", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extra := map[string]string{}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		extra["Content-Disposition"] = cd
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, extra)
	log.Debug("proxy download streamed", zap.Int64("content_length", resp.ContentLength))
}

// hostAllowed matches host against the allowlist, subdomains included
func (h *ProxyHandler) hostAllowed(host string) bool {
	if len(h.hosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range h.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// writeJSONError writes the error envelope outside a gin context
func writeJSONError(w http.ResponseWriter, status int, code, message, requestID string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponseWithRequestID(code, message, requestID))
}
