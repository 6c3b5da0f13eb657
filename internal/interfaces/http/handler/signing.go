package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/signing"
)

// SigningHandler exposes session-independent signing platform lookups
type SigningHandler struct {
	BaseHandler
	workflowService *workflow.Service
}

// NewSigningHandler creates a new SigningHandler
func NewSigningHandler(workflowService *workflow.Service) *SigningHandler {
	return &SigningHandler{
		workflowService: workflowService,
	}
}

// ListTemplates godoc
// @ID           listTemplates
// @Summary      List signing templates
// @Tags         templates
// @Produce      json
// @Success      200 {object} APIResponse[[]signing.TemplateSummary]
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /templates [get]
func (h *SigningHandler) ListTemplates(c *gin.Context) {
	templates, err := h.workflowService.ListTemplates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if templates == nil {
		templates = []signing.TemplateSummary{}
	}
	h.Success(c, templates)
}

// GetSubmission godoc
// @ID           getSubmission
// @Summary      Get submission status
// @Description  Current status of a submission and of each of its signers
// @Tags         submissions
// @Produce      json
// @Param        id path string true "Submission ID"
// @Success      200 {object} APIResponse[signing.SubmissionResult]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /submissions/{id} [get]
func (h *SigningHandler) GetSubmission(c *gin.Context) {
	res, err := h.workflowService.SubmissionStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
