package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	live     *MockBoard
	fixtures *MockBoard
	signer   *MockSigner
	assets   *memAssets
	previews *memPreviews
	service  *Service
}

func newServiceFixture(cfg ResolverConfig) *serviceFixture {
	f := &serviceFixture{
		live:     new(MockBoard),
		fixtures: new(MockBoard),
		signer:   new(MockSigner),
		assets:   newMemAssets(),
		previews: newMemPreviews(),
	}
	f.service = NewService(Dependencies{
		Resolver: NewContextResolver(f.live, cfg, nil),
		Live:     f.live,
		Fixtures: f.fixtures,
		Signer:   f.signer,
		Sessions: newMemSessions(),
		Assets:   f.assets,
		Previews: f.previews,
	}, WithTestBoard(cfg.TestBoardID, 5))
	return f
}

func mockItem() *workitem.RawItem {
	return &workitem.RawItem{
		ID:      MockItemID,
		Name:    "Convenio Proveedor A",
		BoardID: MockBoardID,
		Columns: []workitem.Column{
			{ID: "solicitante", Title: "Solicitado Por-correo", Type: workitem.ColumnTypeText, Text: "Jane Doe <jane@example.org>"},
			{ID: "lider", Title: "Lider email", Type: workitem.ColumnTypeEmail, Text: "lider@fundacion.org"},
			{ID: "archivo", Title: "Contrato PDF", Type: workitem.ColumnTypeFile, Value: `{"files":[{"name":"contrato.pdf","assetId":77}]}`},
		},
	}
}

func TestService_StartSession_MockMode(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)

	sess, err := f.service.StartSession(context.Background())
	require.NoError(t, err)

	v := sess.View()
	assert.Equal(t, ModeTestMock, v.Context.Mode)
	assert.Equal(t, StageItem, v.Stage)
	require.Len(t, v.Contacts, 2)
	assert.Equal(t, "jane@example.org", v.Contacts[0].Email)
	assert.Equal(t, "lider@fundacion.org", v.Contacts[1].Email)
	require.Len(t, v.Files, 1)
	assert.False(t, v.Files[0].IsResolved())

	f.live.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)

	got, err := f.service.Session(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestService_StartSession_ItemFailureKeepsSession(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	cause := shared.NewConnectivityError("work-board unreachable", workitem.ErrPlatformUnavailable)
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(nil, cause)

	sess, err := f.service.StartSession(context.Background())
	require.Error(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, shared.CodeConnectivity, shared.CodeOf(sess.View().LoadErr))
	assert.Equal(t, StageContext, sess.Stage())
}

func TestService_SessionNotFound(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	_, err := f.service.Session("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestService_SwitchItem(t *testing.T) {
	t.Run("test mode switches", func(t *testing.T) {
		f := newServiceFixture(ResolverConfig{})
		f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)
		other := mockItem()
		other.ID = "mock_item_124"
		f.fixtures.On("GetItem", mock.Anything, "mock_item_124").Return(other, nil)
		f.fixtures.On("ListBoardItems", mock.Anything, MockBoardID, 5).Return([]workitem.ItemSummary{{ID: MockItemID}, {ID: "mock_item_124"}}, nil)

		sess, err := f.service.StartSession(context.Background())
		require.NoError(t, err)

		items, err := f.service.ListTestItems(context.Background(), sess.ID())
		require.NoError(t, err)
		assert.Len(t, items, 2)

		require.NoError(t, f.service.SwitchItem(context.Background(), sess.ID(), "mock_item_124"))
		assert.Equal(t, "mock_item_124", sess.Context().ItemID)
	})

	t.Run("embedded mode refuses", func(t *testing.T) {
		f := newServiceFixture(ResolverConfig{})
		f.live.On("GetContext", mock.Anything).Return(&workitem.HostContext{ItemID: "11", BoardID: "22"}, nil)
		f.live.On("GetItem", mock.Anything, "11").Return(testItem("11", "a@x.org"), nil)

		ctx := workitem.WithHostSession(context.Background(), workitem.HostSession{Token: "jwt"})
		sess, err := f.service.StartSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, ModeEmbedded, sess.Context().Mode)

		err = f.service.SwitchItem(context.Background(), sess.ID(), "12")
		assert.ErrorIs(t, err, ErrItemSwitchNotAllowed)
		_, err = f.service.ListTestItems(context.Background(), sess.ID())
		assert.ErrorIs(t, err, ErrNoTestBoard)
	})
}

func TestService_SubmitFlow(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)
	f.signer.On("GetTemplateDetails", mock.Anything, "t1").Return(twoRoleTemplate(), nil)

	ctx := context.Background()
	sess, err := f.service.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, sess.ID(), SubmitOptions{})
	assert.ErrorIs(t, err, ErrNoTemplateSelected)

	tmpl, err := f.service.SelectTemplate(ctx, sess.ID(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", tmpl.ID)
	assert.Equal(t, "http://signing.test/templates/t1/preview.pdf", sess.View().PreviewURL)

	require.NoError(t, f.service.Assign(sess.ID(), "r1", "jane@example.org"))

	_, err = f.service.Submit(ctx, sess.ID(), SubmitOptions{})
	assert.ErrorIs(t, err, signing.ErrAssignmentIncomplete)
	f.signer.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything)

	require.NoError(t, f.service.Assign(sess.ID(), "r2", "lider@fundacion.org"))

	var sent *signing.SubmissionRequest
	f.signer.On("CreateSubmission", mock.Anything, mock.AnythingOfType("*signing.SubmissionRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*signing.SubmissionRequest) }).
		Return(&signing.SubmissionResult{ID: "s1", Status: signing.SubmissionStatusPending}, nil)

	noEmail := false
	res, err := f.service.Submit(ctx, sess.ID(), SubmitOptions{SendEmail: &noEmail})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.ID)

	require.NotNil(t, sent)
	assert.False(t, sent.SendEmail)
	assert.Equal(t, MockItemID, sent.Metadata.ItemID)
	assert.Equal(t, MockBoardID, sent.Metadata.BoardID)
	require.Len(t, sent.Submitters, 2)
	assert.Equal(t, "r1", sent.Submitters[0].RoleID)
	assert.Equal(t, "jane@example.org", sent.Submitters[0].Email)
	assert.Equal(t, "r2", sent.Submitters[1].RoleID)
	assert.Equal(t, "lider@fundacion.org", sent.Submitters[1].Email)
}

func TestService_SelectTemplateBeforeItem(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(nil, shared.NewNotFoundError("item not found"))

	sess, _ := f.service.StartSession(context.Background())
	_, err := f.service.SelectTemplate(context.Background(), sess.ID(), "t1")
	assert.ErrorIs(t, err, ErrItemNotLoaded)
	f.signer.AssertNotCalled(t, "GetTemplateDetails", mock.Anything, mock.Anything)
}

func TestService_ResolveFile(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)
	f.fixtures.On("ResolveAsset", mock.Anything, "77").
		Return(&workitem.Asset{ID: "77", URL: "http://private/77", PublicURL: "http://public/77"}, nil).Once()

	ctx := context.Background()
	sess, err := f.service.StartSession(ctx)
	require.NoError(t, err)

	ref, err := f.service.ResolveFile(ctx, sess.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, "http://public/77", ref.ResolvedURL)
	assert.True(t, sess.View().Files[0].IsResolved())

	cached, ok, _ := f.assets.Get(ctx, "77")
	require.True(t, ok)
	assert.Equal(t, "http://public/77", cached)

	// a fresh load of the same item resolves from the cache
	require.NoError(t, f.service.SwitchItem(ctx, sess.ID(), MockItemID))
	ref, err = f.service.ResolveFile(ctx, sess.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, "http://public/77", ref.ResolvedURL)
	f.fixtures.AssertNumberOfCalls(t, "ResolveAsset", 1)

	_, err = f.service.ResolveFile(ctx, sess.ID(), 3)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

// countingBoard resolves assets slowly and counts the calls
type countingBoard struct {
	MockBoard
	calls   atomic.Int32
	release chan struct{}
}

func (b *countingBoard) ResolveAsset(ctx context.Context, assetID string) (*workitem.Asset, error) {
	b.calls.Add(1)
	<-b.release
	return &workitem.Asset{ID: assetID, URL: "http://x/" + assetID}, nil
}

func TestService_ResolveAssetDeduplicatesConcurrentCallers(t *testing.T) {
	board := &countingBoard{release: make(chan struct{})}
	s := NewService(Dependencies{
		Resolver: NewContextResolver(board, ResolverConfig{}, nil),
		Live:     board,
		Sessions: newMemSessions(),
	})

	const callers = 8
	var wg sync.WaitGroup
	urls := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := s.resolveAsset(context.Background(), ModeTestLive, "a1")
			assert.NoError(t, err)
			urls[i] = u
		}()
	}

	// let the callers pile up on the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(board.release)
	wg.Wait()

	assert.Equal(t, int32(1), board.calls.Load())
	for _, u := range urls {
		assert.Equal(t, "http://x/a1", u)
	}
}

func TestService_PreviewFile(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)
	f.fixtures.On("ResolveAsset", mock.Anything, "77").Return(&workitem.Asset{ID: "77", URL: "http://private/77"}, nil)
	f.fixtures.On("DownloadAsset", mock.Anything, "http://private/77").
		Return(&workitem.Download{ContentType: "application/pdf", Data: []byte("%PDF-1.4")}, nil)

	ctx := context.Background()
	sess, err := f.service.StartSession(ctx)
	require.NoError(t, err)

	h, err := f.service.PreviewFile(ctx, sess.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, "contrato.pdf", h.Name)
	assert.Equal(t, 8, h.Size)
	assert.Equal(t, 1, f.service.PreviewInfo().Count)

	blob, err := f.service.OpenPreview(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), blob.Data)

	require.NoError(t, f.service.RevokePreview(ctx, h.ID))
	assert.Equal(t, 0, f.service.PreviewInfo().Count)
}

func TestService_CreateTemplateFromFile(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)
	f.fixtures.On("ResolveAsset", mock.Anything, "77").Return(&workitem.Asset{ID: "77", URL: "http://private/77"}, nil)
	f.fixtures.On("DownloadAsset", mock.Anything, "http://private/77").
		Return(&workitem.Download{ContentType: "application/pdf", Data: []byte("%PDF")}, nil)

	var draft *signing.TemplateDraft
	f.signer.On("CreateTemplateFromPDF", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { draft = args.Get(1).(*signing.TemplateDraft) }).
		Return(&signing.DraftResult{ID: "t9", Name: "Convenio Proveedor A"}, nil)
	f.signer.On("GetTemplateDetails", mock.Anything, "t9").Return(&signing.Template{
		ID:    "t9",
		Roles: []signing.SignerRole{{ID: "signer_1"}, {ID: "signer_2"}},
	}, nil)

	ctx := context.Background()
	sess, err := f.service.StartSession(ctx)
	require.NoError(t, err)

	res, err := f.service.CreateTemplateFromFile(ctx, sess.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, "t9", res.ID)

	require.NotNil(t, draft)
	assert.Equal(t, "Convenio Proveedor A", draft.Name)
	assert.Equal(t, "contrato.pdf", draft.DocumentName)
	require.Len(t, draft.Signers, 2)
	assert.Equal(t, "jane@example.org", draft.Signers[0].Email)

	v := sess.View()
	require.NotNil(t, v.Template)
	assert.Equal(t, "t9", v.Template.ID)
}

func TestService_BuilderURL(t *testing.T) {
	f := newServiceFixture(ResolverConfig{})
	f.fixtures.On("GetItem", mock.Anything, MockItemID).Return(mockItem(), nil)

	sess, err := f.service.StartSession(context.Background())
	require.NoError(t, err)

	u, err := f.service.BuilderURL(sess.ID())
	require.NoError(t, err)
	assert.Equal(t, "http://signing.test/templates/new?name=Convenio Proveedor A", u)
}

func TestParseFileIndex(t *testing.T) {
	i, err := ParseFileIndex("2")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	for _, raw := range []string{"", "-1", "x"} {
		_, err := ParseFileIndex(raw)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err), raw)
	}
}
