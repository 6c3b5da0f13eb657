package signing

import (
	"fmt"
	"strings"
	"time"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// DefaultDraftName names a draft template when the item has no name
const DefaultDraftName = "Plantilla desde Monday"

// FieldType is the kind of a field placed on a drafted template
type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeDate      FieldType = "date"
)

// DraftSigner is one signer role of a drafted template, seeded from a contact
type DraftSigner struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// DraftField is a field placed for one signer role
type DraftField struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Role     string    `json:"role"`
	Required bool      `json:"required"`
}

// TemplateDraft is a new template built from an item's PDF
type TemplateDraft struct {
	Name         string
	ExternalID   string
	DocumentName string
	Document     []byte
	Signers      []DraftSigner
	Fields       []DraftField
}

// NewTemplateDraft drafts a template over document with one signer role per
// distinct contact email, in contact order. Each role gets a required
// signature field and an optional date field.
func NewTemplateDraft(itemID, itemName, documentName string, document []byte, contacts []workitem.Contact, now time.Time) (*TemplateDraft, error) {
	if len(document) == 0 {
		return nil, shared.NewValidationError("document is empty")
	}
	if len(contacts) == 0 {
		return nil, shared.WrapDomainError(shared.CodeValidation, "no contacts to seed signer roles", ErrTemplateHasNoRoles)
	}

	name := strings.TrimSpace(itemName)
	if name == "" {
		name = DefaultDraftName
	}
	if documentName == "" {
		documentName = "documento.pdf"
	}

	d := &TemplateDraft{
		Name:         name,
		ExternalID:   fmt.Sprintf("monday_%s_%d", itemID, now.UnixMilli()),
		DocumentName: documentName,
		Document:     document,
	}

	seen := make(map[string]struct{}, len(contacts))
	for i, c := range contacts {
		key := strings.ToLower(strings.TrimSpace(c.Email))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		role := fmt.Sprintf("signer_%d", i+1)
		desc := c.SourceColumnTitle
		if desc == "" {
			desc = fmt.Sprintf("Firmante %d", i+1)
		}
		d.Signers = append(d.Signers, DraftSigner{Role: role, Email: c.Email, Description: desc})
		d.Fields = append(d.Fields,
			DraftField{Name: "signature_" + role, Type: FieldTypeSignature, Role: role, Required: true},
			DraftField{Name: "date_" + role, Type: FieldTypeDate, Role: role},
		)
	}
	if len(d.Signers) == 0 {
		return nil, shared.WrapDomainError(shared.CodeValidation, "no contact carries an email", ErrTemplateHasNoRoles)
	}
	return d, nil
}

// DraftResult is the template the platform created from a draft
type DraftResult struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	ExternalID string        `json:"external_id"`
	EditURL    string        `json:"edit_url"`
	ViewURL    string        `json:"view_url"`
	Signers    []DraftSigner `json:"signers"`
	CreatedAt  time.Time     `json:"created_at,omitzero"`
}

// BuilderParams prefills the platform's template builder
type BuilderParams struct {
	Name        string
	DocumentURL string
	Contacts    []workitem.Contact
}
