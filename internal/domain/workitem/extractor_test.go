package workitem

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultExtractorConfig())
}

func emailsOf(x *Extraction) []string {
	var out []string
	for c := range x.Contacts() {
		out = append(out, c.Email)
	}
	return out
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

func TestExtractor_Classification(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name      string
		column    Column
		wantEmail bool
		wantFile  bool
	}{
		{"email type", Column{Title: "Contact", Type: ColumnTypeEmail}, true, false},
		{"correo title", Column{Title: "Solicitado Por-correo", Type: ColumnTypeText}, true, false},
		{"email title mixed case", Column{Title: "Customer EMAIL", Type: ColumnTypeText}, true, false},
		{"file type", Column{Title: "Adjuntos", Type: ColumnTypeFile}, false, true},
		{"pdf title", Column{Title: "Contrato PDF", Type: ColumnTypeText}, false, true},
		{"unrelated", Column{Title: "Status", Type: ColumnType("status")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantEmail, e.IsEmailColumn(tt.column))
			assert.Equal(t, tt.wantFile, e.IsFileColumn(tt.column))
		})
	}
}

func TestNewExtractor_CustomKeywords(t *testing.T) {
	e := NewExtractor(ExtractorConfig{EmailKeywords: []string{"Mail"}, FileKeywords: []string{"Contrato"}})

	assert.True(t, e.IsEmailColumn(Column{Title: "e-mail address"}))
	assert.False(t, e.IsEmailColumn(Column{Title: "correo"}))
	assert.True(t, e.IsFileColumn(Column{Title: "contrato firmado"}))
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

func TestExtract_NoQualifyingColumns(t *testing.T) {
	item := &RawItem{
		ID: "1",
		Columns: []Column{
			{ID: "status", Title: "Status", Type: "status", Text: "Done"},
			{ID: "notes", Title: "Notes", Type: ColumnTypeText, Text: "ping ana@x.org"},
		},
	}

	x := newTestExtractor().Extract(item)

	assert.Empty(t, slices.Collect(x.Contacts()))
	assert.Empty(t, slices.Collect(x.Files()))
	assert.Empty(t, x.Failures())
}

func TestExtract_NilItem(t *testing.T) {
	x := newTestExtractor().Extract(nil)
	assert.Empty(t, slices.Collect(x.Contacts()))
	assert.Empty(t, slices.Collect(x.Files()))
}

func TestExtract_SolicitadoPorCorreo(t *testing.T) {
	item := &RawItem{
		ID: "42",
		Columns: []Column{
			{ID: "email1", Title: "Solicitado Por-correo", Type: ColumnTypeText, Text: "Jane Doe <jane@example.org>"},
		},
	}

	contacts := slices.Collect(newTestExtractor().Extract(item).Contacts())

	require.Len(t, contacts, 1)
	assert.Equal(t, "jane@example.org", contacts[0].Email)
	assert.Equal(t, "jane", contacts[0].DisplayName)
	assert.Equal(t, "email1", contacts[0].SourceColumnID)
	assert.Equal(t, "Solicitado Por-correo", contacts[0].SourceColumnTitle)
	assert.Equal(t, ContactSourceEmailColumn, contacts[0].Source)
}

func TestExtract_OrderPreserved(t *testing.T) {
	item := &RawItem{
		Columns: []Column{
			{ID: "c1", Title: "Correo", Text: "b@x.org a@x.org c@x.org"},
			{ID: "c2", Title: "Email", Type: ColumnTypeEmail, Text: "d@x.org"},
		},
	}

	assert.Equal(t, []string{"b@x.org", "a@x.org", "c@x.org", "d@x.org"}, emailsOf(newTestExtractor().Extract(item)))
}

func TestExtract_PersonColumns(t *testing.T) {
	item := &RawItem{
		Columns: []Column{
			{
				ID:    "people",
				Title: "Responsables",
				Type:  ColumnTypePeople,
				Value: `{"personsAndTeams":[{"id":1,"kind":"person","name":"Ana Ruiz","email":"ana@x.org"},{"id":2,"kind":"team"},{"id":3,"kind":"person","email":"luis@x.org"}]}`,
			},
		},
	}

	contacts := slices.Collect(newTestExtractor().Extract(item).Contacts())

	require.Len(t, contacts, 2)
	assert.Equal(t, "Ana Ruiz", contacts[0].DisplayName)
	assert.Equal(t, ContactSourcePersonColumn, contacts[0].Source)
	assert.Equal(t, "luis", contacts[1].DisplayName)
}

func TestExtract_PersonParseFailureIsolated(t *testing.T) {
	item := &RawItem{
		Columns: []Column{
			{ID: "owner", Title: "Owner", Type: ColumnTypePerson, Value: `{"personsAndTeams":[`},
			{ID: "mail", Title: "Correo", Type: ColumnTypeText, Text: "ok@x.org"},
		},
	}

	x := newTestExtractor().Extract(item)

	assert.Equal(t, []string{"ok@x.org"}, emailsOf(x))
	failures := x.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "owner", failures[0].ColumnID)
	assert.ErrorIs(t, failures[0].Err, ErrMalformedPayload)
	assert.NotEmpty(t, failures[0].Message())
}

func TestExtract_Restartable(t *testing.T) {
	item := &RawItem{Columns: []Column{{ID: "c", Title: "correo", Text: "a@x.org b@x.org"}}}
	x := newTestExtractor().Extract(item)

	first := emailsOf(x)
	second := emailsOf(x)
	assert.Equal(t, first, second)

	// early break does not disturb the next walk
	for range x.Contacts() {
		break
	}
	assert.Equal(t, first, emailsOf(x))
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func TestExtract_Files(t *testing.T) {
	item := &RawItem{
		Columns: []Column{
			{
				ID:    "files",
				Title: "Archivos",
				Type:  ColumnTypeFile,
				Value: `{"files":[{"name":"Contrato.PDF","assetId":555},{"name":"foto.png","assetId":556},{"name":"anexo.pdf","public_url":"https://cdn/anexo.pdf"}]}`,
			},
			{ID: "link", Title: "PDF firmado", Type: ColumnTypeText, Value: `{"url":"https://files/doc"}`},
		},
	}

	files := slices.Collect(newTestExtractor().Extract(item).Files())

	require.Len(t, files, 3)

	assert.Equal(t, "Contrato.PDF", files[0].FileName)
	assert.Equal(t, "555", files[0].AssetID)
	assert.False(t, files[0].IsResolved())

	assert.Equal(t, "anexo.pdf", files[1].FileName)
	assert.True(t, files[1].IsResolved())
	assert.Equal(t, "https://cdn/anexo.pdf", files[1].ResolvedURL)

	assert.Equal(t, "documento.pdf", files[2].FileName)
	assert.Equal(t, "link", files[2].SourceColumnID)
	assert.True(t, files[2].IsResolved())
}

func TestExtract_FileParseFailure(t *testing.T) {
	item := &RawItem{
		Columns: []Column{
			{ID: "f", Title: "Docs", Type: ColumnTypeFile, Value: `not json`},
			{ID: "m", Title: "Email", Type: ColumnTypeEmail, Text: "a@x.org"},
		},
	}

	x := newTestExtractor().Extract(item)

	assert.Empty(t, slices.Collect(x.Files()))
	assert.Equal(t, []string{"a@x.org"}, emailsOf(x))
	require.Len(t, x.Failures(), 1)
	assert.Equal(t, "f", x.Failures()[0].ColumnID)
}

func TestFileReference_WithURL(t *testing.T) {
	ref := FileReference{FileName: "a.pdf", AssetID: "1"}
	resolved := ref.WithURL("https://x")

	assert.False(t, ref.IsResolved())
	assert.True(t, resolved.IsResolved())
	assert.Equal(t, "https://x", resolved.ResolvedURL)
}

func TestIsPDFName(t *testing.T) {
	assert.True(t, IsPDFName("a.pdf"))
	assert.True(t, IsPDFName("A.PDF "))
	assert.False(t, IsPDFName("a.pdf.png"))
	assert.False(t, IsPDFName(""))
}

func TestContact_Name(t *testing.T) {
	assert.Equal(t, "Ana", Contact{Email: "ana@x.org", DisplayName: "Ana"}.Name())
	assert.Equal(t, "ana", Contact{Email: "ana@x.org"}.Name())
}
