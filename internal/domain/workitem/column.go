package workitem

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnType is the type tag the board platform attaches to a column
type ColumnType string

const (
	// ColumnTypeEmail is a dedicated email column
	ColumnTypeEmail ColumnType = "email"
	// ColumnTypePerson is a single person column
	ColumnTypePerson ColumnType = "person"
	// ColumnTypePeople is the current name of the multi-person column
	ColumnTypePeople ColumnType = "people"
	// ColumnTypeMultiplePerson is the legacy name of the multi-person column
	ColumnTypeMultiplePerson ColumnType = "multiple-person"
	// ColumnTypeFile is a file attachment column
	ColumnTypeFile ColumnType = "file"
	// ColumnTypeText is a plain text column
	ColumnTypeText ColumnType = "text"
)

// IsPerson returns true for single and multi person columns
func (t ColumnType) IsPerson() bool {
	switch t {
	case ColumnTypePerson, ColumnTypePeople, ColumnTypeMultiplePerson:
		return true
	default:
		return false
	}
}

// String returns the string representation of ColumnType
func (t ColumnType) String() string {
	return string(t)
}

// Column is one typed field of a work item
type Column struct {
	// ID is the column identifier on the board
	ID string
	// Title is the human-readable column title
	Title string
	// Type is the platform type tag
	Type ColumnType
	// Text is the rendered text value
	Text string
	// Value is the raw structured value (JSON encoded), empty when unset
	Value string
}

// HasValue returns true if the column carries a structured value
func (c Column) HasValue() bool {
	v := strings.TrimSpace(c.Value)
	return v != "" && v != "null"
}

// RawItem is a work item as returned by the board platform, columns in board order
type RawItem struct {
	ID      string
	Name    string
	BoardID string
	Columns []Column
}

// ItemSummary is the short form of an item used for listings
type ItemSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ---------------------------------------------------------------------------
// Column payload variants
// ---------------------------------------------------------------------------

// ColumnPayload is the parsed structured value of a column.
// Exactly one variant exists per column type.
type ColumnPayload interface {
	columnPayload()
}

// TextPayload is the payload of columns whose only useful content is the rendered text
type TextPayload struct {
	Text string
}

// PeoplePayload is the payload of person and multi-person columns
type PeoplePayload struct {
	Persons []PersonEntry `json:"personsAndTeams"`
}

// PersonEntry is one person or team in a people column.
// Email and Name are not part of the platform's stored value but are
// filled by the adapter or the host when available.
type PersonEntry struct {
	ID    FlexibleID `json:"id"`
	Kind  string     `json:"kind"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

// FilePayload is the payload of file columns
type FilePayload struct {
	Files []FileEntry `json:"files"`
}

// FileEntry is one attachment in a file column
type FileEntry struct {
	Name      string     `json:"name"`
	AssetID   FlexibleID `json:"assetId"`
	FileType  string     `json:"fileType"`
	URL       string     `json:"url"`
	PublicURL string     `json:"public_url"`
	AssetURL  string     `json:"asset_url"`
}

// DirectURL returns the first direct URL the entry carries, or ""
func (e FileEntry) DirectURL() string {
	switch {
	case e.URL != "":
		return e.URL
	case e.PublicURL != "":
		return e.PublicURL
	default:
		return e.AssetURL
	}
}

// FlexibleID is an identifier the platform encodes either as a JSON number or a string
type FlexibleID string

// UnmarshalJSON accepts a JSON number, a JSON string, or null
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = FlexibleID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the identifier as a string
func (id FlexibleID) String() string {
	return string(id)
}

func (TextPayload) columnPayload()   {}
func (PeoplePayload) columnPayload() {}
func (FilePayload) columnPayload()   {}

// ParsePeopleValue parses the structured value of a person column
func ParsePeopleValue(raw string) (PeoplePayload, error) {
	var p PeoplePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return PeoplePayload{}, fmt.Errorf("%w: people value: %v", ErrMalformedPayload, err)
	}
	return p, nil
}

// ParseFileValue parses the structured value of a file column.
// Besides the usual {"files":[...]} shape it accepts a single top-level
// {"name","url"} object, which some boards store for one-file columns.
func ParseFileValue(raw string) (FilePayload, error) {
	var p FilePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return FilePayload{}, fmt.Errorf("%w: file value: %v", ErrMalformedPayload, err)
	}
	if len(p.Files) > 0 {
		return p, nil
	}

	var single FileEntry
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return FilePayload{}, fmt.Errorf("%w: file value: %v", ErrMalformedPayload, err)
	}
	if single.DirectURL() == "" {
		return FilePayload{}, nil
	}
	if single.Name == "" {
		single.Name = defaultFileName
	}
	return FilePayload{Files: []FileEntry{single}}, nil
}

// defaultFileName names a single-object file payload that carries no name
const defaultFileName = "documento.pdf"

// ParsePayload parses a column's structured value into the variant matching its type.
// Columns without a structured variant yield a TextPayload.
func ParsePayload(c Column) (ColumnPayload, error) {
	switch {
	case c.Type.IsPerson():
		if !c.HasValue() {
			return PeoplePayload{}, nil
		}
		return ParsePeopleValue(c.Value)
	case c.Type == ColumnTypeFile:
		if !c.HasValue() {
			return FilePayload{}, nil
		}
		return ParseFileValue(c.Value)
	default:
		return TextPayload{Text: c.Text}, nil
	}
}
