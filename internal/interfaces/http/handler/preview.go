package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/application/workflow"
)

// PreviewHandler serves and revokes temporary preview handles
type PreviewHandler struct {
	BaseHandler
	workflowService *workflow.Service
}

// NewPreviewHandler creates a new PreviewHandler
func NewPreviewHandler(workflowService *workflow.Service) *PreviewHandler {
	return &PreviewHandler{
		workflowService: workflowService,
	}
}

// Get godoc
// @ID           getPreview
// @Summary      Download a preview
// @Description  Serves the downloaded file behind a live handle inline
// @Tags         previews
// @Produce      application/pdf
// @Param        handle path string true "Preview handle"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /previews/{handle} [get]
func (h *PreviewHandler) Get(c *gin.Context) {
	blob, err := h.workflowService.OpenPreview(c.Request.Context(), c.Param("handle"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := blob.Handle.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.Handle.Name))
	c.Header("Cache-Control", "private, max-age="+strconv.Itoa(secondsUntil(blob.Handle.ExpiresAt)))
	c.Data(http.StatusOK, contentType, blob.Data)
}

// Revoke godoc
// @ID           revokePreview
// @Summary      Revoke a preview
// @Description  Releases the handle before it expires; unknown handles are ignored
// @Tags         previews
// @Param        handle path string true "Preview handle"
// @Success      204
// @Router       /previews/{handle} [delete]
func (h *PreviewHandler) Revoke(c *gin.Context) {
	if err := h.workflowService.RevokePreview(c.Request.Context(), c.Param("handle")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Info godoc
// @ID           listPreviews
// @Summary      List live previews
// @Tags         previews
// @Produce      json
// @Success      200 {object} APIResponse[workflow.PreviewInfo]
// @Router       /previews [get]
func (h *PreviewHandler) Info(c *gin.Context) {
	info := h.workflowService.PreviewInfo()
	if info.Handles == nil {
		info.Handles = []workflow.PreviewHandle{}
	}
	h.Success(c, info)
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Seconds())
	if s < 0 {
		return 0
	}
	return s
}
