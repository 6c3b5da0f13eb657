package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func sessionsGroup() *DomainGroup {
	group := NewDomainGroup("sessions", "/sessions")
	group.POST("", reply("start"))
	group.GET("/:id", reply("get"))
	group.PUT("/:id/assignments/:role_id", reply("assign"))
	group.DELETE("/:id/assignments/:role_id", reply("clear"))
	return group
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.APIPrefix())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.APIPrefix())
}

func TestRouter_SetupMountsVersionedAndRoot(t *testing.T) {
	engine := gin.New()
	root := NewDomainGroup("root", "")
	root.GET("/health", reply("healthy"))

	templates := NewDomainGroup("templates", "/templates").GET("", reply("templates"))
	NewRouter(engine).
		Register(sessionsGroup(), templates).
		RegisterRoot(root).
		Setup()

	tests := []struct {
		method string
		target string
		status int
		body   string
	}{
		{http.MethodPost, "/api/v1/sessions", http.StatusOK, "start"},
		{http.MethodGet, "/api/v1/sessions/abc", http.StatusOK, "get"},
		{http.MethodPut, "/api/v1/sessions/abc/assignments/submitter-1", http.StatusOK, "assign"},
		{http.MethodDelete, "/api/v1/sessions/abc/assignments/submitter-1", http.StatusOK, "clear"},
		{http.MethodGet, "/api/v1/templates", http.StatusOK, "templates"},
		{http.MethodGet, "/health", http.StatusOK, "healthy"},
		{http.MethodGet, "/api/v1/health", http.StatusNotFound, ""},
		{http.MethodGet, "/sessions/abc", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestDomainGroup_Any(t *testing.T) {
	engine := gin.New()
	root := NewDomainGroup("root", "")
	root.Any("/signing-api/*path", func(c *gin.Context) {
		c.String(http.StatusOK, c.Request.Method+" "+c.Param("path"))
	})
	NewRouter(engine).RegisterRoot(root).Setup()

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := serve(engine, method, "/signing-api/api/templates/7")
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, method+" /api/templates/7", w.Body.String())
	}
}

func TestDomainGroup_MiddlewareScopedToGroup(t *testing.T) {
	engine := gin.New()
	mark := func(c *gin.Context) {
		c.Header("X-Limited", "yes")
		c.Next()
	}

	root := NewDomainGroup("root", "")
	root.GET("/health", reply("healthy"))
	download := root.Group("download", "/api")
	download.Use(mark)
	download.GET("/proxy-download", reply("file"))
	NewRouter(engine).RegisterRoot(root).Setup()

	w := serve(engine, http.MethodGet, "/api/proxy-download")
	assert.Equal(t, "file", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Limited"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, "healthy", w.Body.String())
	assert.Empty(t, w.Header().Get("X-Limited"))
}

func TestDomainGroup_Routes(t *testing.T) {
	root := NewDomainGroup("root", "")
	root.GET("/health", reply(""))
	root.Any("/signing-api/*path", reply(""))
	root.Group("download", "/api").GET("/proxy-download", reply(""))

	assert.Equal(t, []Route{
		{Method: http.MethodGet, Path: "/health"},
		{Method: anyMethod, Path: "/signing-api/*path"},
		{Method: http.MethodGet, Path: "/api/proxy-download"},
	}, root.Routes())

	routes := sessionsGroup().Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, Route{Method: http.MethodPost, Path: "/sessions"}, routes[0])
	assert.Equal(t, Route{Method: http.MethodPut, Path: "/sessions/:id/assignments/:role_id"}, routes[2])
}

func TestDomainGroup_Accessors(t *testing.T) {
	group := NewDomainGroup("previews", "/previews")
	assert.Equal(t, "previews", group.Name())
	assert.Equal(t, "/previews", group.Prefix())
	assert.Empty(t, group.Routes())
}

func TestRouter_LogsMountedGroups(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewRouter(gin.New(), WithLogger(zap.New(core))).
		Register(sessionsGroup()).
		Setup()

	entries := logs.FilterMessage("Routes mounted").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sessions", fields["group"])
	assert.Equal(t, "/api/v1/sessions", fields["prefix"])
	assert.EqualValues(t, 4, fields["routes"])
}

func TestJoinPath(t *testing.T) {
	tests := []struct{ prefix, rel, want string }{
		{"", "", "/"},
		{"/sessions", "", "/sessions"},
		{"", "/health", "/health"},
		{"/api", "/proxy-download", "/api/proxy-download"},
		{"/previews", "/:handle/", "/previews/:handle/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.prefix, tt.rel), tt)
	}
}
