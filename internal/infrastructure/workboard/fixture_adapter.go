package workboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

// FixtureAssetBaseURL prefixes the URLs of fixture attachments
const FixtureAssetBaseURL = "https://fixtures.signbridge.local/assets/"

// fixturePDF is a one-page blank PDF served for every fixture attachment
const fixturePDF = "%PDF-1.4\n" +
	"1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 595 842]>>endobj\n" +
	"xref\n0 4\n0000000000 65535 f \n0000000009 00000 n \n0000000052 00000 n \n0000000101 00000 n \n" +
	"trailer<</Size 4/Root 1 0 R>>\nstartxref\n164\n%%EOF\n"

// FixtureBoard implements workitem.Platform on fixed in-process data.
// It backs the mock mode and local development without credentials.
type FixtureBoard struct {
	items  []workitem.RawItem
	assets map[string]workitem.Asset
}

// Compile-time check
var _ workitem.Platform = (*FixtureBoard)(nil)

// NewFixtureBoard creates the fixture board with its three sample items
func NewFixtureBoard() *FixtureBoard {
	b := &FixtureBoard{assets: make(map[string]workitem.Asset)}
	for i, supplier := range []string{"A", "B", "C"} {
		id := fmt.Sprintf("mock_item_%d", 123+i)
		assetID := fmt.Sprintf("%d", 9001+i)
		fileName := fmt.Sprintf("convenio_proveedor_%s.pdf", strings.ToLower(supplier))
		b.items = append(b.items, fixtureItem(id, "Convenio Proveedor "+supplier, assetID, fileName))
		b.assets[assetID] = workitem.Asset{
			ID:            assetID,
			Name:          fileName,
			URL:           FixtureAssetBaseURL + assetID + "/" + fileName,
			FileExtension: "pdf",
			SizeBytes:     int64(len(fixturePDF)),
		}
	}
	return b
}

func fixtureItem(id, name, assetID, fileName string) workitem.RawItem {
	return workitem.RawItem{
		ID:      id,
		Name:    name,
		BoardID: workflow.MockBoardID,
		Columns: []workitem.Column{
			{ID: "status", Title: "Estado", Type: "status", Text: "En revisión"},
			{ID: "email1", Title: "Solicitado Por-correo", Type: workitem.ColumnTypeText, Text: "solicitante@fundacion.org"},
			{
				ID: "email2", Title: "Autorizado Por (Líder Proceso)-correo", Type: workitem.ColumnTypeEmail,
				Text:  "lider@fundacion.org",
				Value: `{"email":"lider@fundacion.org","text":"lider@fundacion.org"}`,
			},
			{ID: "email3", Title: "Aprobado por (económica)-correo", Type: workitem.ColumnTypeText, Text: "economica@fundacion.org"},
			{ID: "email4", Title: "Aprobado Por (Gerencia)-correo", Type: workitem.ColumnTypeText, Text: "Gerencia <gerencia@fundacion.org>"},
			{
				ID: "files", Title: "Documento pdf", Type: workitem.ColumnTypeFile,
				Text:  FixtureAssetBaseURL + assetID + "/" + fileName,
				Value: fmt.Sprintf(`{"files":[{"name":%q,"assetId":%s,"fileType":"ASSET","isImage":"false"}]}`, fileName, assetID),
			},
		},
	}
}

// GetContext returns the host session unverified, with the mock user
func (b *FixtureBoard) GetContext(ctx context.Context) (*workitem.HostContext, error) {
	hs, ok := workitem.HostSessionFromContext(ctx)
	if !ok {
		return nil, shared.WrapDomainError(shared.CodeValidation, "no host session", workitem.ErrNotEmbedded)
	}
	return &workitem.HostContext{ItemID: hs.ItemID, BoardID: hs.BoardID, User: workflow.MockUser}, nil
}

// GetItem returns a copy of the fixture item
func (b *FixtureBoard) GetItem(_ context.Context, itemID string) (*workitem.RawItem, error) {
	for _, it := range b.items {
		if it.ID == itemID {
			cp := it
			cp.Columns = append([]workitem.Column(nil), it.Columns...)
			return &cp, nil
		}
	}
	return nil, shared.WrapDomainError(shared.CodeNotFound,
		fmt.Sprintf("item %s not found", itemID), workitem.ErrItemNotFound)
}

// ListBoardItems lists the fixture items for any board id
func (b *FixtureBoard) ListBoardItems(_ context.Context, _ string, limit int) ([]workitem.ItemSummary, error) {
	if limit <= 0 || limit > len(b.items) {
		limit = len(b.items)
	}
	out := make([]workitem.ItemSummary, 0, limit)
	for i, it := range b.items[:limit] {
		out = append(out, workitem.ItemSummary{
			ID:        it.ID,
			Name:      it.Name,
			CreatedAt: fmt.Sprintf("2024-01-%02dT10:00:00Z", 15-i),
		})
	}
	return out, nil
}

// ResolveAsset returns the fixture asset
func (b *FixtureBoard) ResolveAsset(_ context.Context, assetID string) (*workitem.Asset, error) {
	a, ok := b.assets[assetID]
	if !ok {
		return nil, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("asset %s not found", assetID), workitem.ErrAssetNotFound)
	}
	return &a, nil
}

// ValidateCredential always accepts
func (b *FixtureBoard) ValidateCredential(context.Context) (*workitem.CredentialCheck, error) {
	return &workitem.CredentialCheck{Valid: true, User: workflow.MockUser}, nil
}

// DownloadAsset serves the blank PDF for fixture asset URLs
func (b *FixtureBoard) DownloadAsset(_ context.Context, url string) (*workitem.Download, error) {
	for _, a := range b.assets {
		if a.URL == url {
			return &workitem.Download{ContentType: "application/pdf", Data: []byte(fixturePDF)}, nil
		}
	}
	return nil, shared.WrapDomainError(shared.CodeNotFound,
		fmt.Sprintf("no fixture asset at %s", url), workitem.ErrAssetNotFound)
}
