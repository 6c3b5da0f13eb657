package workboard

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

func TestFixtureBoard_ItemsExtract(t *testing.T) {
	b := NewFixtureBoard()
	ctx := context.Background()

	item, err := b.GetItem(ctx, workflow.MockItemID)
	require.NoError(t, err)
	assert.Equal(t, "Convenio Proveedor A", item.Name)

	ex := workitem.NewExtractor(workitem.DefaultExtractorConfig()).Extract(item)
	assert.Empty(t, ex.Failures())

	var emails []string
	for c := range ex.Contacts() {
		emails = append(emails, c.Email)
	}
	assert.Equal(t, []string{
		"solicitante@fundacion.org",
		"lider@fundacion.org",
		"economica@fundacion.org",
		"gerencia@fundacion.org",
	}, emails)

	files := slices.Collect(ex.Files())
	require.Len(t, files, 1)
	assert.False(t, files[0].IsResolved())

	asset, err := b.ResolveAsset(ctx, files[0].AssetID)
	require.NoError(t, err)
	dl, err := b.DownloadAsset(ctx, asset.BestURL())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.True(t, workitem.IsPDFName(asset.Name))
	assert.Equal(t, "%PDF", string(dl.Data[:4]))
}

func TestFixtureBoard_GetItemReturnsCopy(t *testing.T) {
	b := NewFixtureBoard()
	first, err := b.GetItem(context.Background(), "mock_item_124")
	require.NoError(t, err)
	first.Columns[0].Text = "changed"

	second, err := b.GetItem(context.Background(), "mock_item_124")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second.Columns[0].Text)
}

func TestFixtureBoard_Lookups(t *testing.T) {
	b := NewFixtureBoard()
	ctx := context.Background()

	items, err := b.ListBoardItems(ctx, workflow.MockBoardID, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, workflow.MockItemID, items[0].ID)

	all, err := b.ListBoardItems(ctx, "any", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = b.GetItem(ctx, "nope")
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	_, err = b.ResolveAsset(ctx, "1")
	assert.ErrorIs(t, err, workitem.ErrAssetNotFound)

	_, err = b.DownloadAsset(ctx, "https://elsewhere/x.pdf")
	assert.ErrorIs(t, err, workitem.ErrAssetNotFound)

	check, err := b.ValidateCredential(ctx)
	require.NoError(t, err)
	assert.True(t, check.Valid)
}

func TestFixtureBoard_GetContext(t *testing.T) {
	b := NewFixtureBoard()

	_, err := b.GetContext(context.Background())
	assert.ErrorIs(t, err, workitem.ErrNotEmbedded)

	ctx := workitem.WithHostSession(context.Background(), workitem.HostSession{Token: "t", ItemID: "mock_item_125"})
	hc, err := b.GetContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mock_item_125", hc.ItemID)
	assert.Equal(t, workflow.MockUser, hc.User)
}
