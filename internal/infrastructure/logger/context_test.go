package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func bufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), &buf
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetSessionID(ctx))
	assert.Empty(t, GetItemID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithItemID(ctx, "item-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
	assert.Equal(t, "item-1", GetItemID(ctx))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", GetTraceID(ctx))
}

// ---------------------------------------------------------------------------
// ContextLogger
// ---------------------------------------------------------------------------

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	base, buf := bufferLogger()

	ctx := WithContext(context.Background(), base)
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithSessionID(ctx, "sess-456")
	ctx = WithItemID(ctx, "item-789")

	L(ctx).Info("item loaded", zap.Int("contacts", 3))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"session_id":"sess-456"`)
	assert.Contains(t, out, `"item_id":"item-789"`)
	assert.Contains(t, out, `"contacts":3`)
	assert.Contains(t, out, `"msg":"item loaded"`)
}

func TestContextLogger_TraceFields(t *testing.T) {
	base, buf := bufferLogger()

	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(WithContext(context.Background(), base), sc)

	L(ctx).Warn("traced")

	assert.Contains(t, buf.String(), `"trace_id":"0123456789abcdef0123456789abcdef"`)
	assert.Contains(t, buf.String(), `"span_id":"0123456789abcdef"`)
}

func TestContextLogger_EmptyFieldsOmitted(t *testing.T) {
	base, buf := bufferLogger()

	L(WithContext(context.Background(), base)).Debug("plain")

	assert.NotContains(t, buf.String(), "session_id")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestContextLogger_With(t *testing.T) {
	base, buf := bufferLogger()
	ctx := WithContext(context.Background(), base)

	L(ctx).With(zap.String("component", "resolver")).Error("failed")

	assert.Contains(t, buf.String(), `"component":"resolver"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestContextLogger_NoLoggerInContext(t *testing.T) {
	cl := L(context.Background())
	assert.NotPanics(t, func() {
		cl.Info("dropped")
		_ = cl.Zap()
	})
}
