package esign

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type docusealTemplate struct {
	ID          workitem.FlexibleID `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ExternalID  string              `json:"external_id"`
	SharedLink  bool                `json:"shared_link"`
	Submitters  []docusealRole      `json:"submitters"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type docusealRole struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// templateList accepts both the paginated {"data":[...]} shape and a bare array
type templateList []docusealTemplate

func (l *templateList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, (*[]docusealTemplate)(l))
	}
	var page struct {
		Data []docusealTemplate `json:"data"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = page.Data
	return nil
}

func (t docusealTemplate) summary() signing.TemplateSummary {
	return signing.TemplateSummary{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// template converts the payload, in submitter order. The role id is the
// submitter uuid, falling back to the name for older instances.
func (t docusealTemplate) template() *signing.Template {
	out := &signing.Template{
		ID:    t.ID.String(),
		Name:  t.Name,
		Roles: make([]signing.SignerRole, 0, len(t.Submitters)),
	}
	for _, s := range t.Submitters {
		id := s.UUID
		if id == "" {
			id = s.Name
		}
		out.Roles = append(out.Roles, signing.SignerRole{ID: id, Name: s.Name})
	}
	return out
}

// ---------------------------------------------------------------------------
// Submissions
// ---------------------------------------------------------------------------

type submissionPayload struct {
	TemplateID any                `json:"template_id"`
	SendEmail  bool               `json:"send_email"`
	Submitters []submitterPayload `json:"submitters"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

type submitterPayload struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type docusealSubmitter struct {
	ID           workitem.FlexibleID `json:"id"`
	SubmissionID workitem.FlexibleID `json:"submission_id"`
	Slug         string              `json:"slug"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	Status       string              `json:"status"`
	EmbedSrc     string              `json:"embed_src"`
	CompletedAt  *time.Time          `json:"completed_at"`
	CreatedAt    time.Time           `json:"created_at"`
}

type docusealSubmission struct {
	ID          workitem.FlexibleID `json:"id"`
	Slug        string              `json:"slug"`
	Status      string              `json:"status"`
	Submitters  []docusealSubmitter `json:"submitters"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   *time.Time          `json:"expires_at"`
	AuditLogURL string              `json:"audit_log_url"`
}

// decodeSubmission accepts a submission object or the submitter array
// POST /api/submissions returns.
func decodeSubmission(data []byte) (*docusealSubmission, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		var s docusealSubmission
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var submitters []docusealSubmitter
	if err := json.Unmarshal(data, &submitters); err != nil {
		return nil, err
	}
	s := &docusealSubmission{Submitters: submitters, Status: string(signing.SubmissionStatusPending)}
	if len(submitters) > 0 {
		s.ID = submitters[0].SubmissionID
		s.CreatedAt = submitters[0].CreatedAt
	}
	return s, nil
}

func (s *docusealSubmission) result() *signing.SubmissionResult {
	out := &signing.SubmissionResult{
		ID:          s.ID.String(),
		Slug:        s.Slug,
		Status:      mapStatus(s.Status),
		CreatedAt:   s.CreatedAt,
		ExpiresAt:   s.ExpiresAt,
		AuditLogURL: s.AuditLogURL,
		Submitters:  make([]signing.SubmitterStatus, 0, len(s.Submitters)),
	}
	for _, sub := range s.Submitters {
		out.Submitters = append(out.Submitters, signing.SubmitterStatus{
			ID:          sub.ID.String(),
			Slug:        sub.Slug,
			Name:        sub.Name,
			Email:       sub.Email,
			Role:        sub.Role,
			Status:      mapStatus(sub.Status),
			EmbedSrc:    sub.EmbedSrc,
			CompletedAt: sub.CompletedAt,
		})
	}
	return out
}

// mapStatus normalizes platform statuses; unknown values map to pending
func mapStatus(s string) signing.SubmissionStatus {
	switch strings.ToLower(s) {
	case "sent":
		return signing.SubmissionStatusSent
	case "opened":
		return signing.SubmissionStatusOpened
	case "completed":
		return signing.SubmissionStatusCompleted
	case "declined":
		return signing.SubmissionStatusDeclined
	case "expired":
		return signing.SubmissionStatusExpired
	default:
		return signing.SubmissionStatusPending
	}
}

func toSubmissionPayload(req *signing.SubmissionRequest) submissionPayload {
	p := submissionPayload{
		TemplateID: numericOrString(req.TemplateID),
		SendEmail:  req.SendEmail,
		Submitters: make([]submitterPayload, 0, len(req.Submitters)),
		Metadata:   make(map[string]string, 5),
	}
	for _, s := range req.Submitters {
		p.Submitters = append(p.Submitters, submitterPayload{Role: s.RoleName, Email: s.Email, Name: s.Name})
	}

	md := req.Metadata
	for k, v := range map[string]string{
		"monday_item_id":  md.ItemID,
		"monday_board_id": md.BoardID,
		"item_name":       md.ItemName,
		"template_name":   md.TemplateName,
		"created_from":    md.CreatedFrom,
	} {
		if v != "" {
			p.Metadata[k] = v
		}
	}
	return p
}

// numericOrString sends numeric ids as JSON numbers
func numericOrString(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// ---------------------------------------------------------------------------
// Template creation
// ---------------------------------------------------------------------------

type templatePDFPayload struct {
	Name       string            `json:"name"`
	ExternalID string            `json:"external_id"`
	SharedLink bool              `json:"shared_link"`
	Documents  []documentPayload `json:"documents"`
}

type documentPayload struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Fields []signing.DraftField `json:"fields,omitempty"`
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

type errorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// text renders the most specific message the body carries
func (b errorBody) text() string {
	if len(b.Errors) > 0 {
		fields := make([]string, 0, len(b.Errors))
		for f := range b.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f+": "+strings.Join(b.Errors[f], ", "))
		}
		return strings.Join(parts, "; ")
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
