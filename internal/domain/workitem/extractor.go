package workitem

import (
	"iter"
	"strings"
)

// Default column title keywords
var (
	DefaultEmailKeywords = []string{"email", "correo"}
	DefaultFileKeywords  = []string{"pdf"}
)

// ExtractorConfig holds the column title keywords used to classify columns.
// Matching is a case-insensitive substring test on the column title.
type ExtractorConfig struct {
	EmailKeywords []string
	FileKeywords  []string
}

// DefaultExtractorConfig returns the default keyword configuration
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		EmailKeywords: DefaultEmailKeywords,
		FileKeywords:  DefaultFileKeywords,
	}
}

// Extractor turns raw work items into contacts and file references.
// An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	emailKeywords []string
	fileKeywords  []string
}

// NewExtractor creates an Extractor. Empty keyword lists fall back to the defaults.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if len(cfg.EmailKeywords) == 0 {
		cfg.EmailKeywords = DefaultEmailKeywords
	}
	if len(cfg.FileKeywords) == 0 {
		cfg.FileKeywords = DefaultFileKeywords
	}
	return &Extractor{
		emailKeywords: lowerAll(cfg.EmailKeywords),
		fileKeywords:  lowerAll(cfg.FileKeywords),
	}
}

// IsEmailColumn returns true if the column's text should be scanned for addresses
func (e *Extractor) IsEmailColumn(c Column) bool {
	return c.Type == ColumnTypeEmail || titleHasAny(c.Title, e.emailKeywords)
}

// IsFileColumn returns true if the column's value should be parsed as attachments
func (e *Extractor) IsFileColumn(c Column) bool {
	return c.Type == ColumnTypeFile || titleHasAny(c.Title, e.fileKeywords)
}

// ParseFailure records a column whose structured value could not be parsed
type ParseFailure struct {
	ColumnID    string `json:"column_id"`
	ColumnTitle string `json:"column_title"`
	Err         error  `json:"-"`
}

// Message returns the failure's error text
func (f ParseFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// columnPlan is one column's classification and parsed payloads
type columnPlan struct {
	column  Column
	scan    bool
	persons []PersonEntry
	files   []FileEntry
}

// Extraction is the result of extracting one item.
// Contacts and Files are restartable: each call walks the item again in
// column order, then match order within a column.
type Extraction struct {
	itemID   string
	plans    []columnPlan
	failures []ParseFailure
}

// Extract classifies and parses the item's columns.
// Malformed structured payloads never fail the extraction: the column
// contributes no entries and a ParseFailure is recorded.
func (e *Extractor) Extract(item *RawItem) *Extraction {
	x := &Extraction{}
	if item == nil {
		return x
	}
	x.itemID = item.ID
	x.plans = make([]columnPlan, 0, len(item.Columns))

	for _, col := range item.Columns {
		plan := columnPlan{column: col, scan: e.IsEmailColumn(col)}

		if col.Type.IsPerson() && col.HasValue() {
			people, err := ParsePeopleValue(col.Value)
			if err != nil {
				x.failures = append(x.failures, ParseFailure{ColumnID: col.ID, ColumnTitle: col.Title, Err: err})
			} else {
				plan.persons = people.Persons
			}
		}

		if e.IsFileColumn(col) && col.HasValue() {
			payload, err := ParseFileValue(col.Value)
			if err != nil {
				x.failures = append(x.failures, ParseFailure{ColumnID: col.ID, ColumnTitle: col.Title, Err: err})
			} else {
				plan.files = payload.Files
			}
		}

		x.plans = append(x.plans, plan)
	}
	return x
}

// ItemID returns the id of the extracted item
func (x *Extraction) ItemID() string {
	return x.itemID
}

// Failures returns the per-column parse failures
func (x *Extraction) Failures() []ParseFailure {
	out := make([]ParseFailure, len(x.failures))
	copy(out, x.failures)
	return out
}

// Contacts yields every contact of the item.
// Scanned addresses of a column come before its person entries.
func (x *Extraction) Contacts() iter.Seq[Contact] {
	return func(yield func(Contact) bool) {
		for _, p := range x.plans {
			if p.scan {
				for _, addr := range ScanEmails(p.column.Text) {
					c := Contact{
						Email:             addr,
						DisplayName:       LocalPart(addr),
						SourceColumnID:    p.column.ID,
						SourceColumnTitle: p.column.Title,
						Source:            ContactSourceEmailColumn,
					}
					if !yield(c) {
						return
					}
				}
			}
			for _, person := range p.persons {
				email := strings.TrimSpace(person.Email)
				if email == "" {
					continue
				}
				name := strings.TrimSpace(person.Name)
				if name == "" {
					name = LocalPart(email)
				}
				c := Contact{
					Email:             email,
					DisplayName:       name,
					SourceColumnID:    p.column.ID,
					SourceColumnTitle: p.column.Title,
					Source:            ContactSourcePersonColumn,
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Files yields every PDF attachment of the item.
// Entries with a direct URL are resolved; entries with only an asset id are deferred.
func (x *Extraction) Files() iter.Seq[FileReference] {
	return func(yield func(FileReference) bool) {
		for _, p := range x.plans {
			for _, f := range p.files {
				if !IsPDFName(f.Name) {
					continue
				}
				ref := FileReference{
					FileName:          f.Name,
					AssetID:           f.AssetID.String(),
					ResolvedURL:       f.DirectURL(),
					SourceColumnID:    p.column.ID,
					SourceColumnTitle: p.column.Title,
				}
				if ref.ResolvedURL == "" && ref.AssetID == "" {
					continue
				}
				if !yield(ref) {
					return
				}
			}
		}
	}
}

// IsPDFName returns true if name ends with ".pdf", case-insensitively
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf")
}

func titleHasAny(title string, keywords []string) bool {
	t := strings.ToLower(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(t, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
