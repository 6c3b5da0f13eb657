package workflow

import (
	"context"
	"fmt"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Mode is how the execution context was obtained
type Mode string

const (
	// ModeEmbedded runs inside the host platform with a verified host session
	ModeEmbedded Mode = "embedded"
	// ModeTestLive runs standalone against a configured test board
	ModeTestLive Mode = "test-live"
	// ModeTestMock runs standalone on fixture data
	ModeTestMock Mode = "test-mock"
)

// Fixed identifiers of the mock context
const (
	MockItemID  = "mock_item_123"
	MockBoardID = "mock_board_456"
)

// MockUser is the user reported by the mock context
var MockUser = workitem.User{Name: "Usuario de Prueba", Email: "test@example.com"}

// ExecutionContext identifies the item a session works on
type ExecutionContext struct {
	ItemID  string
	BoardID string
	User    workitem.User
	Mode    Mode
	// Err is the failure that forced a fallback to the mock context, if any
	Err error
}

// Degraded returns true when the context is a fallback after a failure
func (e ExecutionContext) Degraded() bool {
	return e.Err != nil
}

// IsTest returns true for the standalone modes
func (e ExecutionContext) IsTest() bool {
	return e.Mode != ModeEmbedded
}

// MockContext returns the fixed mock context carrying cause
func MockContext(cause error) ExecutionContext {
	return ExecutionContext{
		ItemID:  MockItemID,
		BoardID: MockBoardID,
		User:    MockUser,
		Mode:    ModeTestMock,
		Err:     cause,
	}
}

// ResolverConfig selects the standalone live test mode
type ResolverConfig struct {
	TestMode    bool
	TestBoardID string
	TestItems   int
}

// ContextResolver determines the execution context of a new session.
// Detection order: host session, then live test board, then mock.
// It never fails: any error degrades to the mock context.
type ContextResolver struct {
	board   workitem.Platform
	cfg     ResolverConfig
	metrics *telemetry.WorkflowMetrics
}

// NewContextResolver creates a resolver over the live board platform
func NewContextResolver(board workitem.Platform, cfg ResolverConfig, metrics *telemetry.WorkflowMetrics) *ContextResolver {
	if cfg.TestItems <= 0 {
		cfg.TestItems = 1
	}
	return &ContextResolver{board: board, cfg: cfg, metrics: metrics}
}

// Resolve returns the execution context for ctx
func (r *ContextResolver) Resolve(ctx context.Context) ExecutionContext {
	ctx, span := telemetry.StartSpan(ctx, "workflow.resolve_context")
	defer span.End()

	var (
		ec  ExecutionContext
		err error
	)
	switch {
	case workitem.IsEmbedded(ctx):
		ec, err = r.embedded(ctx)
	case r.cfg.TestMode:
		ec, err = r.testLive(ctx)
	default:
		ec = MockContext(nil)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("context resolution failed, using mock context",
			zap.String("mode", string(ec.Mode)),
			zap.Error(err),
		)
		ec = MockContext(err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrMode, string(ec.Mode),
		telemetry.SpanAttrItemID, ec.ItemID,
		telemetry.SpanAttrBoardID, ec.BoardID,
	)
	r.metrics.ContextResolved(ctx, string(ec.Mode), ec.Degraded())
	return ec
}

func (r *ContextResolver) embedded(ctx context.Context) (ExecutionContext, error) {
	ec := ExecutionContext{Mode: ModeEmbedded}
	hc, err := r.board.GetContext(ctx)
	if err != nil {
		return ec, err
	}
	if hc.ItemID == "" {
		return ec, shared.WrapDomainError(shared.CodeValidation, "host session carries no item", workitem.ErrMissingHostItemID)
	}
	ec.ItemID = hc.ItemID
	ec.BoardID = hc.BoardID
	ec.User = hc.User
	return ec, nil
}

func (r *ContextResolver) testLive(ctx context.Context) (ExecutionContext, error) {
	ec := ExecutionContext{Mode: ModeTestLive}

	check, err := r.board.ValidateCredential(ctx)
	if err != nil {
		return ec, err
	}
	if !check.Valid {
		cause := check.Err
		if cause == nil {
			cause = workitem.ErrPlatformAuthFailed
		}
		return ec, shared.NewAuthenticationError("work-board credential rejected", cause)
	}

	items, err := r.board.ListBoardItems(ctx, r.cfg.TestBoardID, r.cfg.TestItems)
	if err != nil {
		return ec, err
	}
	if len(items) == 0 {
		return ec, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("test board %s has no items", r.cfg.TestBoardID), workitem.ErrBoardEmpty)
	}

	ec.ItemID = items[0].ID
	ec.BoardID = r.cfg.TestBoardID
	ec.User = check.User
	return ec, nil
}

// ErrorMessage returns the user-facing message of a degraded context
func (e ExecutionContext) ErrorMessage() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
