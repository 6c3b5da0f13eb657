package workitem

// ContactSource tells which kind of column produced a contact
type ContactSource string

const (
	// ContactSourceEmailColumn is an address scanned from an email-qualifying column
	ContactSourceEmailColumn ContactSource = "email_column"
	// ContactSourcePersonColumn is a person entry from a people column
	ContactSourcePersonColumn ContactSource = "person_column"
)

// String returns the string representation of ContactSource
func (s ContactSource) String() string {
	return string(s)
}

// Contact is a potential signer derived from a work item.
// Contacts are immutable values; Email is the identity within an assignment.
type Contact struct {
	Email             string        `json:"email"`
	DisplayName       string        `json:"display_name"`
	SourceColumnID    string        `json:"source_column_id"`
	SourceColumnTitle string        `json:"source_column_title"`
	Source            ContactSource `json:"source"`
}

// Name returns the display name, falling back to the email's local part
func (c Contact) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return LocalPart(c.Email)
}

// FileReference is a PDF attachment found on a work item.
// It starts either resolved (a direct URL was present) or deferred
// (only an asset id); deferred references are resolved explicitly.
type FileReference struct {
	FileName          string `json:"file_name"`
	AssetID           string `json:"asset_id,omitempty"`
	ResolvedURL       string `json:"resolved_url,omitempty"`
	SourceColumnID    string `json:"source_column_id"`
	SourceColumnTitle string `json:"source_column_title"`
}

// IsResolved returns true if the reference already carries a usable URL
func (f FileReference) IsResolved() bool {
	return f.ResolvedURL != ""
}

// WithURL returns a copy of the reference resolved to url
func (f FileReference) WithURL(url string) FileReference {
	f.ResolvedURL = url
	return f
}
