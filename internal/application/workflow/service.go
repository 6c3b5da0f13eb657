package workflow

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultAssetURLTTL is how long resolved asset URLs are cached
const DefaultAssetURLTTL = 30 * time.Minute

// Service runs the signing workflow: it resolves the execution context,
// loads the item, lets the user pick a template and map its roles, and
// dispatches the signature request.
type Service struct {
	resolver  *ContextResolver
	live      workitem.Platform
	fixtures  workitem.Platform
	signer    signing.Platform
	extractor *workitem.Extractor
	sessions  SessionStore
	assets    AssetURLCache
	previews  PreviewRegistry

	testBoardID string
	testItems   int
	assetTTL    time.Duration

	group   singleflight.Group
	metrics *telemetry.WorkflowMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// Dependencies are the ports the service runs on
type Dependencies struct {
	Resolver  *ContextResolver
	Live      workitem.Platform
	Fixtures  workitem.Platform
	Signer    signing.Platform
	Extractor *workitem.Extractor
	Sessions  SessionStore
	Assets    AssetURLCache
	Previews  PreviewRegistry
}

// Option is a functional option for configuring the service
type Option func(*Service)

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the workflow metrics
func WithMetrics(m *telemetry.WorkflowMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTestBoard sets the board listed for item switching in live test mode
func WithTestBoard(boardID string, limit int) Option {
	return func(s *Service) {
		s.testBoardID = boardID
		s.testItems = limit
	}
}

// WithAssetURLTTL sets how long resolved asset URLs are cached
func WithAssetURLTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.assetTTL = ttl
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the workflow service
func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		resolver:  deps.Resolver,
		live:      deps.Live,
		fixtures:  deps.Fixtures,
		signer:    deps.Signer,
		extractor: deps.Extractor,
		sessions:  deps.Sessions,
		assets:    deps.Assets,
		previews:  deps.Previews,
		testItems: 25,
		assetTTL:  DefaultAssetURLTTL,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = workitem.NewExtractor(workitem.DefaultExtractorConfig())
	}
	if s.fixtures == nil {
		s.fixtures = s.live
	}
	return s
}

// log returns a context logger, falling back to the service logger
func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	if logger.FromContext(ctx) == nil {
		ctx = logger.WithContext(ctx, s.logger)
	}
	return logger.L(ctx)
}

// boardFor returns the platform serving items in mode
func (s *Service) boardFor(mode Mode) workitem.Platform {
	if mode == ModeTestMock {
		return s.fixtures
	}
	return s.live
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// StartSession resolves the execution context and loads its item.
// The session is returned even when the item fails to load; the failure
// is returned alongside and kept on the session for display.
func (s *Service) StartSession(ctx context.Context) (*Session, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "start_session")
	defer span.End()

	exec := s.resolver.Resolve(ctx)
	sess := NewSession(exec, s.now())
	s.sessions.Save(sess)

	ctx = logger.WithSessionID(ctx, sess.ID())
	telemetry.SetAttributes(span, telemetry.SpanAttrSessionID, sess.ID(), telemetry.SpanAttrMode, string(exec.Mode))
	s.log(ctx).Info("session started",
		zap.String("mode", string(exec.Mode)),
		zap.Bool("degraded", exec.Degraded()),
	)

	if err := s.loadItem(ctx, sess, exec.ItemID); err != nil {
		telemetry.RecordError(span, err)
		return sess, err
	}
	telemetry.SetOK(span)
	return sess, nil
}

// Session returns a live session
func (s *Service) Session(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, shared.WrapDomainError(shared.CodeNotFound, "session "+id+" not found", ErrSessionNotFound)
	}
	return sess, nil
}

// EndSession discards a session
func (s *Service) EndSession(id string) {
	s.sessions.Delete(id)
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// SwitchItem loads another item of the test board into the session.
// Only the standalone modes may switch; the latest request wins.
func (s *Service) SwitchItem(ctx context.Context, sessionID, itemID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	if !sess.Context().IsTest() {
		return invalidState("the host fixes the item in embedded mode", ErrItemSwitchNotAllowed)
	}
	ctx = logger.WithSessionID(ctx, sessionID)
	return s.loadItem(ctx, sess, itemID)
}

// ListTestItems lists the items available for switching
func (s *Service) ListTestItems(ctx context.Context, sessionID string) ([]workitem.ItemSummary, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	exec := sess.Context()

	switch exec.Mode {
	case ModeTestLive:
		board := s.testBoardID
		if board == "" {
			board = exec.BoardID
		}
		return s.live.ListBoardItems(ctx, board, s.testItems)
	case ModeTestMock:
		return s.fixtures.ListBoardItems(ctx, MockBoardID, s.testItems)
	default:
		return nil, invalidState("items are fixed by the host in embedded mode", ErrNoTestBoard)
	}
}

// loadItem fetches and extracts itemID, applying it only if no newer load started
func (s *Service) loadItem(ctx context.Context, sess *Session, itemID string) error {
	ctx = logger.WithItemID(ctx, itemID)
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "load_item",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	ticket := sess.beginItemLoad()
	board := s.boardFor(sess.Context().Mode)

	start := s.now()
	item, err := board.GetItem(ctx, itemID)
	s.metrics.RemoteCall(ctx, "workboard", "get_item", s.now().Sub(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		sess.failItemLoad(ticket, err)
		s.log(ctx).Error("failed to load item", zap.Error(err))
		return err
	}

	ex := s.extractor.Extract(item)
	for _, f := range ex.Failures() {
		s.log(ctx).Warn("column payload skipped",
			zap.String("column_id", f.ColumnID),
			zap.String("column_title", f.ColumnTitle),
			zap.Error(f.Err),
		)
	}

	if err := sess.applyItem(ticket, item, ex); err != nil {
		s.log(ctx).Info("discarding stale item load", zap.Uint64("ticket", ticket))
		return invalidState("a newer item load superseded this one", err)
	}
	s.metrics.ItemLoaded(ctx, len(ex.Failures()))
	telemetry.SetOK(span)
	return nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// ListTemplates lists the signing platform's templates
func (s *Service) ListTemplates(ctx context.Context) ([]signing.TemplateSummary, error) {
	start := s.now()
	templates, err := s.signer.ListTemplates(ctx)
	s.metrics.RemoteCall(ctx, "signing", "list_templates", s.now().Sub(start), err)
	return templates, err
}

// SelectTemplate loads a template's roles and preview into the session,
// restarting the assignment. The latest selection wins.
func (s *Service) SelectTemplate(ctx context.Context, sessionID, templateID string) (*signing.Template, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "select_template",
		telemetry.WithAttribute(telemetry.SpanAttrTemplateID, templateID))
	defer span.End()

	ticket, err := sess.beginTemplateLoad()
	if err != nil {
		return nil, err
	}

	start := s.now()
	t, err := s.signer.GetTemplateDetails(ctx, templateID)
	s.metrics.RemoteCall(ctx, "signing", "get_template", s.now().Sub(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := sess.applyTemplate(ticket, t, s.signer.GetPreviewURL(t.ID)); err != nil {
		s.log(ctx).Info("discarding stale template load",
			zap.String("template_id", templateID),
			zap.Uint64("ticket", ticket),
		)
		return nil, invalidState("a newer template selection superseded this one", err)
	}
	telemetry.SetOK(span)
	return t, nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// Assign maps a template role to the item contact with email
func (s *Service) Assign(sessionID, roleID, email string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return sess.Assign(roleID, email)
}

// ClearAssignment removes the contact mapped to a role
func (s *Service) ClearAssignment(sessionID, roleID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return sess.Clear(roleID)
}

// AvailableContacts returns the contacts selectable for a role
func (s *Service) AvailableContacts(sessionID, roleID string) ([]workitem.Contact, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.AvailableContacts(roleID)
}

// ---------------------------------------------------------------------------
// Submissions
// ---------------------------------------------------------------------------

// SubmitOptions tunes a submission
type SubmitOptions struct {
	// SendEmail overrides the default of emailing every signer
	SendEmail *bool
}

// Submit builds the signature request from the session's total assignment
// and dispatches it
func (s *Service) Submit(ctx context.Context, sessionID string, opts SubmitOptions) (*signing.SubmissionResult, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "submit")
	defer span.End()

	req, dups, err := sess.buildSubmission()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ctx = logger.WithItemID(ctx, req.Metadata.ItemID)
	if opts.SendEmail != nil {
		req.SendEmail = *opts.SendEmail
	}
	if len(dups) > 0 {
		s.log(ctx).Warn("contact assigned to more than one role", zap.Strings("emails", dups))
	}

	start := s.now()
	res, err := s.signer.CreateSubmission(ctx, req)
	s.metrics.RemoteCall(ctx, "signing", "create_submission", s.now().Sub(start), err)
	s.metrics.SubmissionCreated(ctx, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Error("failed to create submission",
			zap.String("template_id", req.TemplateID),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrSubmissionID, res.ID, telemetry.SpanAttrTemplateID, req.TemplateID)
	telemetry.SetOK(span)
	s.log(ctx).Info("submission created",
		zap.String("submission_id", res.ID),
		zap.String("template_id", req.TemplateID),
		zap.Int("submitters", len(req.Submitters)),
	)
	return res, nil
}

// SubmissionStatus returns the current state of a submission
func (s *Service) SubmissionStatus(ctx context.Context, submissionID string) (*signing.SubmissionResult, error) {
	start := s.now()
	res, err := s.signer.GetSubmission(ctx, submissionID)
	s.metrics.RemoteCall(ctx, "signing", "get_submission", s.now().Sub(start), err)
	return res, err
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// ResolveFile turns the session's file at index into a downloadable URL.
// Resolution is cached by asset id and shared between concurrent callers.
func (s *Service) ResolveFile(ctx context.Context, sessionID string, index int) (workitem.FileReference, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return workitem.FileReference{}, err
	}
	f, ticket, err := sess.file(index)
	if err != nil {
		return workitem.FileReference{}, err
	}
	if f.IsResolved() {
		return f, nil
	}
	if f.AssetID == "" {
		return f, shared.WrapDomainError(shared.CodeValidation, "file "+f.FileName+" cannot be resolved", ErrFileUnresolved)
	}

	url, err := s.resolveAsset(ctx, sess.Context().Mode, f.AssetID)
	if err != nil {
		return f, err
	}
	f = f.WithURL(url)
	sess.setFile(ticket, index, f)
	return f, nil
}

func (s *Service) resolveAsset(ctx context.Context, mode Mode, assetID string) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "resolve_asset",
		telemetry.WithAttribute(telemetry.SpanAttrAssetID, assetID))
	defer span.End()

	if s.assets != nil {
		url, ok, err := s.assets.Get(ctx, assetID)
		if err != nil {
			s.log(ctx).Warn("asset cache read failed", zap.String("asset_id", assetID), zap.Error(err))
		} else if ok {
			s.metrics.AssetResolved(ctx, "hit")
			return url, nil
		}
	}

	// callers share one fetch; it must outlive the first caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)
	key := string(mode) + ":" + assetID
	v, err, deduped := s.group.Do(key, func() (any, error) {
		start := s.now()
		asset, err := s.boardFor(mode).ResolveAsset(fetchCtx, assetID)
		s.metrics.RemoteCall(fetchCtx, "workboard", "resolve_asset", s.now().Sub(start), err)
		if err != nil {
			return "", err
		}
		url := asset.BestURL()
		if url == "" {
			return "", shared.WrapDomainError(shared.CodeNotFound, "asset "+assetID+" has no url", workitem.ErrAssetNotFound)
		}
		if s.assets != nil {
			if err := s.assets.Set(fetchCtx, assetID, url, s.assetTTL); err != nil {
				s.log(ctx).Warn("asset cache write failed", zap.String("asset_id", assetID), zap.Error(err))
			}
		}
		return url, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}
	if deduped {
		s.metrics.AssetResolved(ctx, "shared")
	} else {
		s.metrics.AssetResolved(ctx, "miss")
	}
	telemetry.SetOK(span)
	return v.(string), nil
}

// download resolves and fetches the session's file at index
func (s *Service) download(ctx context.Context, sessionID string, index int) (workitem.FileReference, *workitem.Download, error) {
	f, err := s.ResolveFile(ctx, sessionID, index)
	if err != nil {
		return f, nil, err
	}
	sess, err := s.Session(sessionID)
	if err != nil {
		return f, nil, err
	}

	start := s.now()
	dl, err := s.boardFor(sess.Context().Mode).DownloadAsset(ctx, f.ResolvedURL)
	s.metrics.RemoteCall(ctx, "workboard", "download_asset", s.now().Sub(start), err)
	if err != nil {
		return f, nil, err
	}
	return f, dl, nil
}

// PreviewFile downloads the file at index and exposes it under a temporary URL
func (s *Service) PreviewFile(ctx context.Context, sessionID string, index int) (*PreviewHandle, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	f, dl, err := s.download(ctx, sessionID, index)
	if err != nil {
		return nil, err
	}
	h, err := s.previews.Register(ctx, f.FileName, dl.ContentType, dl.Data)
	if err != nil {
		return nil, err
	}
	s.metrics.PreviewHandles(ctx, s.previews.Info().Count)
	s.log(ctx).Debug("preview registered",
		zap.String("handle", h.ID),
		zap.Time("expires_at", h.ExpiresAt),
	)
	return h, nil
}

// OpenPreview returns a live preview's content
func (s *Service) OpenPreview(ctx context.Context, handle string) (*PreviewBlob, error) {
	return s.previews.Open(ctx, handle)
}

// RevokePreview releases a preview handle
func (s *Service) RevokePreview(ctx context.Context, handle string) error {
	if err := s.previews.Revoke(ctx, handle); err != nil {
		return err
	}
	s.metrics.PreviewHandles(ctx, s.previews.Info().Count)
	return nil
}

// PreviewInfo lists the live preview handles
func (s *Service) PreviewInfo() PreviewInfo {
	return s.previews.Info()
}

// ---------------------------------------------------------------------------
// Template drafting
// ---------------------------------------------------------------------------

// CreateTemplateFromFile drafts a template from the session's PDF at index,
// with one signer role per distinct contact, and selects it
func (s *Service) CreateTemplateFromFile(ctx context.Context, sessionID string, index int) (*signing.DraftResult, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	ctx, span := telemetry.StartServiceSpan(ctx, "workflow", "create_template")
	defer span.End()

	f, dl, err := s.download(ctx, sessionID, index)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	v := sess.View()
	var itemName string
	if v.Item != nil {
		itemName = v.Item.Name
	}

	draft, err := signing.NewTemplateDraft(v.Context.ItemID, itemName, f.FileName, dl.Data, v.Contacts, s.now())
	if err != nil {
		return nil, err
	}

	start := s.now()
	res, err := s.signer.CreateTemplateFromPDF(ctx, draft)
	s.metrics.RemoteCall(ctx, "signing", "create_template", s.now().Sub(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.log(ctx).Info("template created from item file",
		zap.String("template_id", res.ID),
		zap.Int("signers", len(res.Signers)),
	)

	if _, err := s.SelectTemplate(ctx, sessionID, res.ID); err != nil {
		return res, err
	}
	telemetry.SetOK(span)
	return res, nil
}

// BuilderURL returns a template-builder link prefilled from the session's item.
// The first resolved PDF, if any, is attached as the document.
func (s *Service) BuilderURL(sessionID string) (string, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return "", err
	}
	v := sess.View()
	if v.Item == nil {
		return "", invalidState("no item loaded", ErrItemNotLoaded)
	}

	params := signing.BuilderParams{Name: v.Item.Name, Contacts: v.Contacts}
	for _, f := range v.Files {
		if f.IsResolved() {
			params.DocumentURL = f.ResolvedURL
			break
		}
	}
	return s.signer.BuilderURL(params), nil
}

// ParseFileIndex parses a file index path parameter
func ParseFileIndex(raw string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, shared.WrapDomainError(shared.CodeValidation, "file index must be a non-negative integer", errors.Join(ErrFileNotFound, err))
	}
	return i, nil
}
