package handler

import (
	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// StartSessionRequest carries the host session when the app runs embedded
// @Description Optional host session; omit to run in a standalone test mode
type StartSessionRequest struct {
	SessionToken string `json:"session_token" binding:"required_with=ItemID" example:"eyJhbGciOiJIUzI1NiJ9..."`
	ItemID       string `json:"item_id" binding:"omitempty,max=64,platform_id" example:"1234567890"`
	BoardID      string `json:"board_id" binding:"omitempty,max=64,platform_id" example:"987654321"`
}

// SwitchItemRequest selects another test-board item
type SwitchItemRequest struct {
	ItemID string `json:"item_id" binding:"required,max=64,platform_id" example:"mock_item_124"`
}

// SelectTemplateRequest selects the signing template
type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required,max=64,platform_id" example:"mock-template-1"`
}

// AssignRequest maps a role to one of the item's contacts
type AssignRequest struct {
	Email string `json:"email" binding:"required,email" example:"lider@fundacion.org"`
}

// SubmitRequest tunes the submission
type SubmitRequest struct {
	SendEmail *bool `json:"send_email" example:"true"`
}

// ContextResponse is the execution context of a session
// @name HandlerContextResponse
type ContextResponse struct {
	ItemID   string        `json:"item_id" example:"mock_item_123"`
	BoardID  string        `json:"board_id" example:"mock_board_456"`
	User     workitem.User `json:"user"`
	Mode     string        `json:"mode" example:"test-mock"`
	Degraded bool          `json:"degraded"`
	Error    string        `json:"error,omitempty"`
}

// ItemResponse is the loaded work item
type ItemResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BoardID string `json:"board_id"`
}

// FileResponse is an item attachment with its position in the session
type FileResponse struct {
	Index int `json:"index"`
	workitem.FileReference
	Resolved bool `json:"resolved"`
}

// ParseFailureResponse is a column that could not be parsed
type ParseFailureResponse struct {
	ColumnID    string `json:"column_id"`
	ColumnTitle string `json:"column_title"`
	Message     string `json:"message"`
}

// AssignmentResponse is one mapped role
type AssignmentResponse struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// SessionResponse is the full state of a workflow session
// @name HandlerSessionResponse
type SessionResponse struct {
	ID              string                 `json:"id" example:"5b7c1e0a-8d53-4d8e-9c1a-2f0e4b6a7c9d"`
	Stage           string                 `json:"stage" example:"item"`
	Context         ContextResponse        `json:"context"`
	Item            *ItemResponse          `json:"item,omitempty"`
	Contacts        []workitem.Contact     `json:"contacts"`
	Files           []FileResponse         `json:"files"`
	ParseFailures   []ParseFailureResponse `json:"parse_failures,omitempty"`
	LoadError       string                 `json:"load_error,omitempty"`
	Template        *signing.Template      `json:"template,omitempty"`
	PreviewURL      string                 `json:"preview_url,omitempty"`
	Assignments     []AssignmentResponse   `json:"assignments,omitempty"`
	MissingRoles    []signing.SignerRole   `json:"missing_roles,omitempty"`
	DuplicateEmails []string               `json:"duplicate_emails,omitempty"`
	Complete        bool                   `json:"complete"`
}

// toSessionResponse converts a session snapshot
func toSessionResponse(v workflow.View) SessionResponse {
	resp := SessionResponse{
		ID:    v.ID,
		Stage: v.Stage.String(),
		Context: ContextResponse{
			ItemID:   v.Context.ItemID,
			BoardID:  v.Context.BoardID,
			User:     v.Context.User,
			Mode:     string(v.Context.Mode),
			Degraded: v.Context.Degraded(),
			Error:    v.Context.ErrorMessage(),
		},
		Contacts:     v.Contacts,
		Files:        make([]FileResponse, len(v.Files)),
		Template:     v.Template,
		PreviewURL:   v.PreviewURL,
		MissingRoles: v.Missing,
		Complete:     v.Complete,
	}
	if resp.Contacts == nil {
		resp.Contacts = []workitem.Contact{}
	}
	if v.Item != nil {
		resp.Item = &ItemResponse{ID: v.Item.ID, Name: v.Item.Name, BoardID: v.Item.BoardID}
	}
	for i, f := range v.Files {
		resp.Files[i] = toFileResponse(i, f)
	}
	for _, pf := range v.ParseFailures {
		resp.ParseFailures = append(resp.ParseFailures, ParseFailureResponse{
			ColumnID:    pf.ColumnID,
			ColumnTitle: pf.ColumnTitle,
			Message:     pf.Message(),
		})
	}
	if v.LoadErr != nil {
		resp.LoadError = v.LoadErr.Error()
	}
	for _, e := range v.Assignments {
		resp.Assignments = append(resp.Assignments, AssignmentResponse{
			RoleID:   e.Role.ID,
			RoleName: e.Role.Label(),
			Email:    e.Contact.Email,
			Name:     e.Contact.Name(),
		})
	}
	if len(v.Duplicates) > 0 {
		resp.DuplicateEmails = v.Duplicates
	}
	return resp
}

func toFileResponse(index int, f workitem.FileReference) FileResponse {
	return FileResponse{Index: index, FileReference: f, Resolved: f.IsResolved()}
}
