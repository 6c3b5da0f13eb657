package signing

import (
	"fmt"
	"strings"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// Assignment maps the signer roles of one template to contacts.
// A contact may be assigned to more than one role; DuplicateEmails reports it.
// Assignment is a plain in-memory value and is not safe for concurrent use.
type Assignment struct {
	template *Template
	contacts []workitem.Contact
	byRole   map[string]workitem.Contact
}

// NewAssignment creates an empty assignment for template over the known contacts
func NewAssignment(template *Template, contacts []workitem.Contact) *Assignment {
	known := make([]workitem.Contact, len(contacts))
	copy(known, contacts)
	return &Assignment{
		template: template,
		contacts: known,
		byRole:   make(map[string]workitem.Contact, len(template.Roles)),
	}
}

// Template returns the template the assignment is scoped to
func (a *Assignment) Template() *Template {
	return a.template
}

// Contacts returns the known contacts
func (a *Assignment) Contacts() []workitem.Contact {
	out := make([]workitem.Contact, len(a.contacts))
	copy(out, a.contacts)
	return out
}

// Assign sets the contact for roleID, replacing any previous one.
// A contact without an email is rejected.
func (a *Assignment) Assign(roleID string, contact workitem.Contact) error {
	if !a.template.HasRole(roleID) {
		return shared.WrapDomainError(shared.CodeValidation,
			fmt.Sprintf("role %q is not part of template %q", roleID, a.template.ID), ErrUnknownRole)
	}
	if strings.TrimSpace(contact.Email) == "" {
		return shared.WrapDomainError(shared.CodeValidation,
			fmt.Sprintf("role %q: contact has no email", roleID), ErrInvalidSignerEmail)
	}
	a.byRole[roleID] = contact
	return nil
}

// Clear removes the contact for roleID. Clearing an unassigned role is a no-op.
func (a *Assignment) Clear(roleID string) {
	delete(a.byRole, roleID)
}

// Get returns the contact assigned to roleID
func (a *Assignment) Get(roleID string) (workitem.Contact, bool) {
	c, ok := a.byRole[roleID]
	return c, ok
}

// Len returns the number of assigned roles
func (a *Assignment) Len() int {
	return len(a.byRole)
}

// IsComplete returns true if every template role has a contact
func (a *Assignment) IsComplete() bool {
	for _, r := range a.template.Roles {
		if _, ok := a.byRole[r.ID]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the roles that still need a contact, in template order
func (a *Assignment) Missing() []SignerRole {
	var missing []SignerRole
	for _, r := range a.template.Roles {
		if _, ok := a.byRole[r.ID]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// AvailableContacts returns the known contacts whose email is not assigned
// to any role other than roleID. The contact currently assigned to roleID
// is always included.
func (a *Assignment) AvailableContacts(roleID string) []workitem.Contact {
	taken := make(map[string]struct{}, len(a.byRole))
	for id, c := range a.byRole {
		if id == roleID {
			continue
		}
		taken[normalizeEmail(c.Email)] = struct{}{}
	}

	out := make([]workitem.Contact, 0, len(a.contacts))
	for _, c := range a.contacts {
		if _, ok := taken[normalizeEmail(c.Email)]; ok {
			continue
		}
		out = append(out, c)
	}

	if current, ok := a.byRole[roleID]; ok && !containsEmail(out, current.Email) {
		out = append(out, current)
	}
	return out
}

// DuplicateEmails returns the emails assigned to more than one role, in template order
func (a *Assignment) DuplicateEmails() []string {
	seen := make(map[string]int)
	var dups []string
	for _, r := range a.template.Roles {
		c, ok := a.byRole[r.ID]
		if !ok {
			continue
		}
		key := normalizeEmail(c.Email)
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, c.Email)
		}
	}
	return dups
}

// Entries returns the assigned (role, contact) pairs in template order
func (a *Assignment) Entries() []AssignmentEntry {
	entries := make([]AssignmentEntry, 0, len(a.byRole))
	for _, r := range a.template.Roles {
		if c, ok := a.byRole[r.ID]; ok {
			entries = append(entries, AssignmentEntry{Role: r, Contact: c})
		}
	}
	return entries
}

// AssignmentEntry is one assigned role
type AssignmentEntry struct {
	Role    SignerRole       `json:"role"`
	Contact workitem.Contact `json:"contact"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func containsEmail(contacts []workitem.Contact, email string) bool {
	key := normalizeEmail(email)
	for _, c := range contacts {
		if normalizeEmail(c.Email) == key {
			return true
		}
	}
	return false
}
