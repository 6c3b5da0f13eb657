package signing

import "time"

// SignerRole is a named party on a template that must sign
type SignerRole struct {
	// ID is opaque and stable for a given template
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label returns the role name, falling back to its id
func (r SignerRole) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Template is a document template with its signer roles, in template order
type Template struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Roles []SignerRole `json:"roles"`
}

// HasRole returns true if roleID is one of the template's roles
func (t *Template) HasRole(roleID string) bool {
	_, ok := t.Role(roleID)
	return ok
}

// Role returns the role with the given id
func (t *Template) Role(roleID string) (SignerRole, bool) {
	for _, r := range t.Roles {
		if r.ID == roleID {
			return r, true
		}
	}
	return SignerRole{}, false
}

// TemplateSummary is the listing form of a template
type TemplateSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}
