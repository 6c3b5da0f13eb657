package workflow

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// Stage is how far a session has progressed through the pipeline
type Stage int

const (
	// StageContext has a resolved execution context but no item
	StageContext Stage = iota
	// StageItem has a loaded item with its contacts and files
	StageItem
	// StageTemplate has a selected template and an assignment
	StageTemplate
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageItem:
		return "item"
	case StageTemplate:
		return "template"
	default:
		return "context"
	}
}

// Session is one user's run through the pipeline:
// context, then item, then template details, then mapping.
// Every method is safe for concurrent use; mutations are serialized.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	exec       ExecutionContext

	item     *workitem.RawItem
	contacts []workitem.Contact
	files    []workitem.FileReference
	failures []workitem.ParseFailure
	loadErr  error

	template   *signing.Template
	previewURL string
	assignment *signing.Assignment

	// generation tickets: a fetch applies only if no newer fetch started
	itemGen     uint64
	templateGen uint64
}

// NewSession creates a session for a resolved execution context
func NewSession(exec ExecutionContext, now time.Time) *Session {
	return &Session{
		id:         uuid.NewString(),
		createdAt:  now,
		lastActive: now,
		exec:       exec,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the creation time
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Touch marks the session active at now
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastActive) {
		s.lastActive = now
	}
}

// LastActive returns the last time the session was used
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Context returns the execution context
func (s *Session) Context() ExecutionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec
}

// Stage returns the current pipeline stage
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage()
}

func (s *Session) stage() Stage {
	switch {
	case s.template != nil:
		return StageTemplate
	case s.item != nil:
		return StageItem
	default:
		return StageContext
	}
}

// ---------------------------------------------------------------------------
// Item loading
// ---------------------------------------------------------------------------

// beginItemLoad takes a ticket for an item fetch
func (s *Session) beginItemLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemGen++
	return s.itemGen
}

// applyItem installs a fetched item if ticket is still current.
// The template and assignment are reset; in-flight template loads go stale.
func (s *Session) applyItem(ticket uint64, item *workitem.RawItem, ex *workitem.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.itemGen {
		return ErrStaleResult
	}

	s.item = item
	s.contacts = slices.Collect(ex.Contacts())
	s.files = slices.Collect(ex.Files())
	s.failures = ex.Failures()
	s.loadErr = nil
	s.exec.ItemID = item.ID
	if item.BoardID != "" {
		s.exec.BoardID = item.BoardID
	}

	s.templateGen++
	s.template = nil
	s.previewURL = ""
	s.assignment = nil
	return nil
}

// failItemLoad records the failure of the current item fetch
func (s *Session) failItemLoad(ticket uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket == s.itemGen {
		s.loadErr = err
	}
}

// ---------------------------------------------------------------------------
// Template loading
// ---------------------------------------------------------------------------

// beginTemplateLoad takes a ticket for a template details fetch.
// It fails when no item is loaded.
func (s *Session) beginTemplateLoad() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return 0, invalidState("load an item before selecting a template", ErrItemNotLoaded)
	}
	s.templateGen++
	return s.templateGen, nil
}

// applyTemplate installs fetched template details if ticket is still current.
// The assignment restarts empty over the item's contacts.
func (s *Session) applyTemplate(ticket uint64, t *signing.Template, previewURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.templateGen {
		return ErrStaleResult
	}
	s.template = t
	s.previewURL = previewURL
	s.assignment = signing.NewAssignment(t, s.contacts)
	return nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// Assign maps roleID to the item contact with the given email
func (s *Session) Assign(roleID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignment == nil {
		return invalidState("select a template before assigning", ErrNoTemplateSelected)
	}
	c, ok := s.findContact(email)
	if !ok {
		return shared.WrapDomainError(shared.CodeValidation, "no contact with email "+email, ErrContactNotFound)
	}
	return s.assignment.Assign(roleID, c)
}

// Clear removes the contact for roleID
func (s *Session) Clear(roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignment == nil {
		return invalidState("select a template before assigning", ErrNoTemplateSelected)
	}
	if !s.template.HasRole(roleID) {
		return shared.WrapDomainError(shared.CodeValidation, "role "+roleID+" is not part of the template", signing.ErrUnknownRole)
	}
	s.assignment.Clear(roleID)
	return nil
}

// AvailableContacts returns the contacts selectable for roleID
func (s *Session) AvailableContacts(roleID string) ([]workitem.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignment == nil {
		return nil, invalidState("select a template before assigning", ErrNoTemplateSelected)
	}
	return s.assignment.AvailableContacts(roleID), nil
}

func (s *Session) findContact(email string) (workitem.Contact, bool) {
	email = strings.TrimSpace(email)
	for _, c := range s.contacts {
		if strings.EqualFold(c.Email, email) {
			return c, true
		}
	}
	return workitem.Contact{}, false
}

// buildSubmission builds the signature request under the lock, together
// with the emails assigned to more than one role
func (s *Session) buildSubmission() (*signing.SubmissionRequest, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignment == nil {
		return nil, nil, invalidState("select a template before submitting", ErrNoTemplateSelected)
	}
	md := signing.Metadata{
		ItemID:  s.exec.ItemID,
		BoardID: s.exec.BoardID,
	}
	if s.item != nil {
		md.ItemName = s.item.Name
	}
	req, err := signing.BuildSubmission(s.template, s.assignment, md)
	if err != nil {
		return nil, nil, err
	}
	return req, s.assignment.DuplicateEmails(), nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// file returns the file at index together with the item ticket it belongs to
func (s *Session) file(index int) (workitem.FileReference, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return workitem.FileReference{}, 0, invalidState("no item loaded", ErrItemNotLoaded)
	}
	if index < 0 || index >= len(s.files) {
		return workitem.FileReference{}, 0, shared.WrapDomainError(shared.CodeNotFound, "no such file", ErrFileNotFound)
	}
	return s.files[index], s.itemGen, nil
}

// setFile replaces the file at index if the item has not changed since ticket
func (s *Session) setFile(ticket uint64, index int, f workitem.FileReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.itemGen || index >= len(s.files) {
		return
	}
	s.files[index] = f
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// View is a consistent copy of a session's state
type View struct {
	ID            string
	Stage         Stage
	Context       ExecutionContext
	Item          *workitem.RawItem
	Contacts      []workitem.Contact
	Files         []workitem.FileReference
	ParseFailures []workitem.ParseFailure
	LoadErr       error
	Template      *signing.Template
	PreviewURL    string
	Assignments   []signing.AssignmentEntry
	Missing       []signing.SignerRole
	Duplicates    []string
	Complete      bool
}

// View returns a snapshot of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:            s.id,
		Stage:         s.stage(),
		Context:       s.exec,
		Item:          s.item,
		Contacts:      slices.Clone(s.contacts),
		Files:         slices.Clone(s.files),
		ParseFailures: slices.Clone(s.failures),
		LoadErr:       s.loadErr,
		Template:      s.template,
		PreviewURL:    s.previewURL,
	}
	if s.assignment != nil {
		v.Assignments = s.assignment.Entries()
		v.Missing = s.assignment.Missing()
		v.Duplicates = s.assignment.DuplicateEmails()
		v.Complete = s.assignment.IsComplete()
	}
	return v
}

func invalidState(message string, cause error) error {
	return shared.WrapDomainError(shared.CodeInvalidState, message, cause)
}
