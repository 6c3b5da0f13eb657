package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/stretchr/testify/mock"
)

// MockBoard is a mock implementation of workitem.Platform
type MockBoard struct {
	mock.Mock
}

func (m *MockBoard) GetContext(ctx context.Context) (*workitem.HostContext, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workitem.HostContext), args.Error(1)
}

func (m *MockBoard) GetItem(ctx context.Context, itemID string) (*workitem.RawItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workitem.RawItem), args.Error(1)
}

func (m *MockBoard) ListBoardItems(ctx context.Context, boardID string, limit int) ([]workitem.ItemSummary, error) {
	args := m.Called(ctx, boardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workitem.ItemSummary), args.Error(1)
}

func (m *MockBoard) ResolveAsset(ctx context.Context, assetID string) (*workitem.Asset, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workitem.Asset), args.Error(1)
}

func (m *MockBoard) ValidateCredential(ctx context.Context) (*workitem.CredentialCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workitem.CredentialCheck), args.Error(1)
}

func (m *MockBoard) DownloadAsset(ctx context.Context, url string) (*workitem.Download, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workitem.Download), args.Error(1)
}

var _ workitem.Platform = (*MockBoard)(nil)

// MockSigner is a mock implementation of signing.Platform
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) ListTemplates(ctx context.Context) ([]signing.TemplateSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]signing.TemplateSummary), args.Error(1)
}

func (m *MockSigner) GetTemplateDetails(ctx context.Context, templateID string) (*signing.Template, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signing.Template), args.Error(1)
}

func (m *MockSigner) GetPreviewURL(templateID string) string {
	return "http://signing.test/templates/" + templateID + "/preview.pdf"
}

func (m *MockSigner) CreateSubmission(ctx context.Context, req *signing.SubmissionRequest) (*signing.SubmissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signing.SubmissionResult), args.Error(1)
}

func (m *MockSigner) GetSubmission(ctx context.Context, submissionID string) (*signing.SubmissionResult, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signing.SubmissionResult), args.Error(1)
}

func (m *MockSigner) CreateTemplateFromPDF(ctx context.Context, draft *signing.TemplateDraft) (*signing.DraftResult, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signing.DraftResult), args.Error(1)
}

func (m *MockSigner) BuilderURL(params signing.BuilderParams) string {
	return "http://signing.test/templates/new?name=" + params.Name
}

var _ signing.Platform = (*MockSigner)(nil)

// ---------------------------------------------------------------------------
// In-memory fakes for the process-local ports
// ---------------------------------------------------------------------------

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*Session)}
}

func (m *memSessions) Save(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

func (m *memSessions) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *memSessions) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *memSessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memAssets struct {
	mu   sync.Mutex
	urls map[string]string
}

func newMemAssets() *memAssets {
	return &memAssets{urls: make(map[string]string)}
}

func (m *memAssets) Get(_ context.Context, assetID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.urls[assetID]
	return u, ok, nil
}

func (m *memAssets) Set(_ context.Context, assetID, url string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[assetID] = url
	return nil
}

type memPreviews struct {
	mu      sync.Mutex
	handles map[string]PreviewBlob
}

func newMemPreviews() *memPreviews {
	return &memPreviews{handles: make(map[string]PreviewBlob)}
}

func (m *memPreviews) Register(_ context.Context, name, contentType string, data []byte) (*PreviewHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := PreviewHandle{
		ID:          "h" + name,
		Name:        name,
		ContentType: contentType,
		Size:        len(data),
		URL:         "/previews/h" + name,
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}
	m.handles[h.ID] = PreviewBlob{Handle: h, Data: data}
	return &h, nil
}

func (m *memPreviews) Open(_ context.Context, id string) (*PreviewBlob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.handles[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return &b, nil
}

func (m *memPreviews) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, id)
	return nil
}

func (m *memPreviews) Info() PreviewInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := PreviewInfo{Count: len(m.handles)}
	for _, b := range m.handles {
		info.Handles = append(info.Handles, b.Handle)
	}
	return info
}
