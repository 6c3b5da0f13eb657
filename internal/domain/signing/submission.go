package signing

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// CreatedFromWorkBoard tags submissions originating from a work-board item
const CreatedFromWorkBoard = "monday_app"

// validate is safe for concurrent use
var validate = validator.New()

// Submitter is one signer of a submission
type Submitter struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Metadata is attached to the submission and returned untouched by the platform
type Metadata struct {
	ItemID       string `json:"item_id,omitempty"`
	BoardID      string `json:"board_id,omitempty"`
	ItemName     string `json:"item_name,omitempty"`
	TemplateName string `json:"template_name,omitempty"`
	CreatedFrom  string `json:"created_from,omitempty"`
}

// SubmissionRequest is the validated payload for a signature request.
// It is built only from a total Assignment and not modified afterwards.
type SubmissionRequest struct {
	TemplateID string      `json:"template_id"`
	Submitters []Submitter `json:"submitters"`
	SendEmail  bool        `json:"send_email"`
	Metadata   Metadata    `json:"metadata"`
}

// BuildSubmission builds the signature request for an assignment that is
// total over template's roles. It fails with a validation error when a role
// of template is unassigned or an assigned contact has no usable email.
func BuildSubmission(template *Template, assignment *Assignment, metadata Metadata) (*SubmissionRequest, error) {
	if template == nil || assignment == nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "no template selected", ErrAssignmentIncomplete)
	}
	if len(template.Roles) == 0 {
		return nil, shared.WrapDomainError(shared.CodeValidation,
			fmt.Sprintf("template %q has no signer roles", template.ID), ErrTemplateHasNoRoles)
	}
	var missing []string
	for _, r := range template.Roles {
		if _, ok := assignment.Get(r.ID); !ok {
			missing = append(missing, r.Label())
		}
	}
	if len(missing) > 0 {
		return nil, shared.WrapDomainError(shared.CodeValidation,
			"unassigned roles: "+strings.Join(missing, ", "), ErrAssignmentIncomplete)
	}

	submitters := make([]Submitter, 0, len(template.Roles))
	for _, r := range template.Roles {
		c, _ := assignment.Get(r.ID)
		email := strings.TrimSpace(c.Email)
		if err := validate.Var(email, "required,email"); err != nil {
			return nil, shared.WrapDomainError(shared.CodeValidation,
				fmt.Sprintf("role %s: %q is not a usable email", r.Label(), email), ErrInvalidSignerEmail)
		}
		name := strings.TrimSpace(c.DisplayName)
		if name == "" {
			name = workitem.LocalPart(email)
		}
		submitters = append(submitters, Submitter{
			RoleID:   r.ID,
			RoleName: r.Label(),
			Name:     name,
			Email:    email,
		})
	}

	if metadata.TemplateName == "" {
		metadata.TemplateName = template.Name
	}
	if metadata.CreatedFrom == "" {
		metadata.CreatedFrom = CreatedFromWorkBoard
	}

	return &SubmissionRequest{
		TemplateID: template.ID,
		Submitters: submitters,
		SendEmail:  true,
		Metadata:   metadata,
	}, nil
}

// ---------------------------------------------------------------------------
// Submission result
// ---------------------------------------------------------------------------

// SubmissionStatus is the lifecycle state reported by the signing platform
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusSent      SubmissionStatus = "sent"
	SubmissionStatusOpened    SubmissionStatus = "opened"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusDeclined  SubmissionStatus = "declined"
	SubmissionStatusExpired   SubmissionStatus = "expired"
)

// IsFinal returns true if no further signer activity is expected
func (s SubmissionStatus) IsFinal() bool {
	switch s {
	case SubmissionStatusCompleted, SubmissionStatusDeclined, SubmissionStatusExpired:
		return true
	default:
		return false
	}
}

// SubmitterStatus is the state of one signer on a created submission
type SubmitterStatus struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug,omitempty"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Role        string           `json:"role"`
	Status      SubmissionStatus `json:"status"`
	EmbedSrc    string           `json:"embed_src,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// SubmissionResult is a submission as reported by the signing platform
type SubmissionResult struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug,omitempty"`
	Status      SubmissionStatus  `json:"status"`
	Submitters  []SubmitterStatus `json:"submitters"`
	CreatedAt   time.Time         `json:"created_at,omitzero"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
	AuditLogURL string            `json:"audit_log_url,omitempty"`
}
