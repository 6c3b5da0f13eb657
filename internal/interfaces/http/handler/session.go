package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/signbridge/backend/internal/interfaces/http/middleware"
)

// SessionHandler handles the signing workflow of a session: context,
// item, template selection, role mapping, files and submission
type SessionHandler struct {
	BaseHandler
	workflowService *workflow.Service
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(workflowService *workflow.Service) *SessionHandler {
	return &SessionHandler{
		workflowService: workflowService,
	}
}

// sessionID reads the :id path parameter and tags the request with it
func sessionID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.SessionIDKey, id)
	return id
}

// bindOptionalJSON binds a JSON body when one is present.
// An empty body leaves req untouched.
func bindOptionalJSON(c *gin.Context, req any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// respondView sends the session's current state
func (h *SessionHandler) respondView(c *gin.Context, id string) {
	sess, err := h.workflowService.Session(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(sess.View()))
}

// Start godoc
// @ID           startSession
// @Summary      Start a workflow session
// @Description  Resolves the execution context (embedded, live test board or mock) and loads its item.
// @Description  A failed item load still creates the session; the failure is reported in load_error.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body StartSessionRequest false "Host session"
// @Success      201 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.SessionToken != "" {
		ctx = workitem.WithHostSession(ctx, workitem.HostSession{
			Token:   req.SessionToken,
			ItemID:  req.ItemID,
			BoardID: req.BoardID,
		})
	}

	sess, _ := h.workflowService.StartSession(ctx)
	if sess == nil {
		h.InternalError(c, "Failed to start session")
		return
	}
	c.Set(middleware.SessionIDKey, sess.ID())
	h.Created(c, toSessionResponse(sess.View()))
}

// Get godoc
// @ID           getSession
// @Summary      Get session state
// @Description  Context, item, extracted contacts and files, parse failures, template and assignment status
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	h.respondView(c, sessionID(c))
}

// Delete godoc
// @ID           deleteSession
// @Summary      Discard a session
// @Tags         sessions
// @Param        id path string true "Session ID"
// @Success      204
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	h.workflowService.EndSession(sessionID(c))
	h.NoContent(c)
}

// ListTestItems godoc
// @ID           listSessionTestItems
// @Summary      List test-board items
// @Description  Items the session may switch to; only available in the standalone test modes
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[[]workitem.ItemSummary]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /sessions/{id}/test-items [get]
func (h *SessionHandler) ListTestItems(c *gin.Context) {
	items, err := h.workflowService.ListTestItems(c.Request.Context(), sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// SwitchItem godoc
// @ID           switchSessionItem
// @Summary      Switch the session's item
// @Description  Loads another test-board item. When requests overlap the latest one wins and earlier ones answer 409.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Session ID"
// @Param        request body SwitchItemRequest true "Item to load"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/item [put]
func (h *SessionHandler) SwitchItem(c *gin.Context) {
	id := sessionID(c)
	var req SwitchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if err := h.workflowService.SwitchItem(c.Request.Context(), id, req.ItemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondView(c, id)
}

// SelectTemplate godoc
// @ID           selectSessionTemplate
// @Summary      Select the signing template
// @Description  Loads the template's roles and preview and restarts the role mapping
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Session ID"
// @Param        request body SelectTemplateRequest true "Template to use"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/template [put]
func (h *SessionHandler) SelectTemplate(c *gin.Context) {
	id := sessionID(c)
	var req SelectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if _, err := h.workflowService.SelectTemplate(c.Request.Context(), id, req.TemplateID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondView(c, id)
}

// Assign godoc
// @ID           assignSessionRole
// @Summary      Assign a contact to a role
// @Description  Overwrites any previous assignment. Assigning one contact to several roles is allowed and reported in duplicate_emails.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path string        true "Session ID"
// @Param        role_id path string        true "Template role ID"
// @Param        request body AssignRequest true "Contact email"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/assignments/{role_id} [put]
func (h *SessionHandler) Assign(c *gin.Context) {
	id := sessionID(c)
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if err := h.workflowService.Assign(id, c.Param("role_id"), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondView(c, id)
}

// ClearAssignment godoc
// @ID           clearSessionRole
// @Summary      Clear a role's assignment
// @Tags         sessions
// @Produce      json
// @Param        id      path string true "Session ID"
// @Param        role_id path string true "Template role ID"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/assignments/{role_id} [delete]
func (h *SessionHandler) ClearAssignment(c *gin.Context) {
	id := sessionID(c)
	if err := h.workflowService.ClearAssignment(id, c.Param("role_id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondView(c, id)
}

// AvailableContacts godoc
// @ID           listSessionRoleContacts
// @Summary      List contacts selectable for a role
// @Description  Contacts not already assigned to another role
// @Tags         sessions
// @Produce      json
// @Param        id      path string true "Session ID"
// @Param        role_id path string true "Template role ID"
// @Success      200 {object} APIResponse[[]workitem.Contact]
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/assignments/{role_id}/available [get]
func (h *SessionHandler) AvailableContacts(c *gin.Context) {
	contacts, err := h.workflowService.AvailableContacts(sessionID(c), c.Param("role_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if contacts == nil {
		contacts = []workitem.Contact{}
	}
	h.Success(c, contacts)
}

// Submit godoc
// @ID           submitSession
// @Summary      Send the signature request
// @Description  Builds one submitter per template role from a complete mapping and dispatches it
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path string        true  "Session ID"
// @Param        request body SubmitRequest false "Submission options"
// @Success      201 {object} APIResponse[signing.SubmissionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /sessions/{id}/submission [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	id := sessionID(c)
	var req SubmitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	res, err := h.workflowService.Submit(c.Request.Context(), id, workflow.SubmitOptions{SendEmail: req.SendEmail})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// fileIndex parses the :index path parameter, answering 400 when invalid
func (h *SessionHandler) fileIndex(c *gin.Context) (int, bool) {
	index, err := workflow.ParseFileIndex(c.Param("index"))
	if err != nil {
		h.HandleError(c, err)
		return 0, false
	}
	return index, true
}

// ResolveFile godoc
// @ID           resolveSessionFile
// @Summary      Resolve a file's download URL
// @Description  Attachments known only by asset id are resolved through the work-board platform; results are cached
// @Tags         files
// @Produce      json
// @Param        id    path string true "Session ID"
// @Param        index path int    true "File index"
// @Success      200 {object} APIResponse[FileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /sessions/{id}/files/{index}/resolve [post]
func (h *SessionHandler) ResolveFile(c *gin.Context) {
	id := sessionID(c)
	index, ok := h.fileIndex(c)
	if !ok {
		return
	}
	f, err := h.workflowService.ResolveFile(c.Request.Context(), id, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFileResponse(index, f))
}

// PreviewFile godoc
// @ID           previewSessionFile
// @Summary      Expose a file under a temporary URL
// @Description  Downloads the file server-side and registers a short-lived preview handle
// @Tags         files
// @Produce      json
// @Param        id    path string true "Session ID"
// @Param        index path int    true "File index"
// @Success      201 {object} APIResponse[workflow.PreviewHandle]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /sessions/{id}/files/{index}/preview [post]
func (h *SessionHandler) PreviewFile(c *gin.Context) {
	id := sessionID(c)
	index, ok := h.fileIndex(c)
	if !ok {
		return
	}
	handle, err := h.workflowService.PreviewFile(c.Request.Context(), id, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, handle)
}

// CreateTemplate godoc
// @ID           createTemplateFromSessionFile
// @Summary      Create a signing template from a file
// @Description  Uploads the PDF with one signer role per extracted contact and selects the new template
// @Tags         files
// @Produce      json
// @Param        id    path string true "Session ID"
// @Param        index path int    true "File index"
// @Success      201 {object} APIResponse[signing.DraftResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /sessions/{id}/files/{index}/template [post]
func (h *SessionHandler) CreateTemplate(c *gin.Context) {
	id := sessionID(c)
	index, ok := h.fileIndex(c)
	if !ok {
		return
	}
	res, err := h.workflowService.CreateTemplateFromFile(c.Request.Context(), id, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// BuilderURL godoc
// @ID           getSessionBuilderURL
// @Summary      Template builder link
// @Description  Link to the signing platform's template builder prefilled with the item name, a resolved PDF and the contacts
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[URLData]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /sessions/{id}/builder-url [get]
func (h *SessionHandler) BuilderURL(c *gin.Context) {
	url, err := h.workflowService.BuilderURL(sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, URLData{URL: url})
}
