package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/interfaces/http/router"
)

// SessionRoutes creates the route group for the workflow session endpoints
func SessionRoutes(handler *SessionHandler) *router.DomainGroup {
	group := router.NewDomainGroup("sessions", "/sessions")

	group.POST("", handler.Start)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)

	// Item
	group.GET("/:id/test-items", handler.ListTestItems)
	group.PUT("/:id/item", handler.SwitchItem)

	// Template and role mapping
	group.PUT("/:id/template", handler.SelectTemplate)
	group.GET("/:id/builder-url", handler.BuilderURL)
	group.PUT("/:id/assignments/:role_id", handler.Assign)
	group.DELETE("/:id/assignments/:role_id", handler.ClearAssignment)
	group.GET("/:id/assignments/:role_id/available", handler.AvailableContacts)
	group.POST("/:id/submission", handler.Submit)

	// Files
	group.POST("/:id/files/:index/resolve", handler.ResolveFile)
	group.POST("/:id/files/:index/preview", handler.PreviewFile)
	group.POST("/:id/files/:index/template", handler.CreateTemplate)

	return group
}

// SigningRoutes creates the route group for templates and submissions
func SigningRoutes(handler *SigningHandler) *router.DomainGroup {
	group := router.NewDomainGroup("signing", "")
	group.Group("templates", "/templates").GET("", handler.ListTemplates)
	group.Group("submissions", "/submissions").GET("/:id", handler.GetSubmission)
	return group
}

// PreviewRoutes creates the route group for preview handles
func PreviewRoutes(handler *PreviewHandler) *router.DomainGroup {
	group := router.NewDomainGroup("previews", "/previews")
	group.GET("", handler.Info)
	group.GET("/:handle", handler.Get)
	group.DELETE("/:handle", handler.Revoke)
	return group
}

// SystemRoutes creates the versioned system info routes
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.GET("/info", handler.GetSystemInfo)
	group.GET("/ping", handler.Ping)
	return group
}

// RootRoutes creates the unversioned routes: health, the signing platform
// passthrough and the download proxy. downloadLimit guards the download proxy.
func RootRoutes(system *SystemHandler, proxy *ProxyHandler, downloadLimit gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("root", "")
	group.GET("/health", system.Health)
	group.Any("/signing-api/*path", proxy.Signing)

	download := group.Group("download", "/api")
	if downloadLimit != nil {
		download.Use(downloadLimit)
	}
	download.GET("/proxy-download", proxy.Download)

	return group
}
