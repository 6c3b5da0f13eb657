package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// WorkflowMetrics records the signing workflow's business metrics.
// A nil *WorkflowMetrics is valid and records nothing.
type WorkflowMetrics struct {
	contextsResolved   *Counter
	itemsLoaded        *Counter
	parseFailures      *Counter
	submissionsCreated *Counter
	assetResolutions   *Counter
	remoteCallDuration *Histogram
	previewHandles     *Gauge
}

// NewWorkflowMetrics creates the workflow instruments on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	var (
		wm  WorkflowMetrics
		err error
	)
	if wm.contextsResolved, err = NewCounter(meter, "signbridge.contexts.resolved", "Execution contexts resolved, by mode", "{context}"); err != nil {
		return nil, err
	}
	if wm.itemsLoaded, err = NewCounter(meter, "signbridge.items.loaded", "Work items fetched and extracted", "{item}"); err != nil {
		return nil, err
	}
	if wm.parseFailures, err = NewCounter(meter, "signbridge.columns.parse_failures", "Structured column payloads that failed to parse", "{column}"); err != nil {
		return nil, err
	}
	if wm.submissionsCreated, err = NewCounter(meter, "signbridge.submissions.created", "Signature requests dispatched", "{submission}"); err != nil {
		return nil, err
	}
	if wm.assetResolutions, err = NewCounter(meter, "signbridge.assets.resolutions", "Asset URL resolutions, by cache result", "{asset}"); err != nil {
		return nil, err
	}
	if wm.remoteCallDuration, err = NewHistogram(meter, "signbridge.remote.duration", "Duration of calls to remote platforms", "s", RemoteDurationBuckets...); err != nil {
		return nil, err
	}
	if wm.previewHandles, err = NewGauge(meter, "signbridge.previews.active", "Live preview handles", "{handle}"); err != nil {
		return nil, err
	}
	return &wm, nil
}

// ContextResolved counts a resolved execution context
func (wm *WorkflowMetrics) ContextResolved(ctx context.Context, mode string, degraded bool) {
	if wm == nil {
		return
	}
	outcome := OutcomeSuccess
	if degraded {
		outcome = OutcomeFailure
	}
	wm.contextsResolved.Inc(ctx, AttrMode.String(mode), AttrOutcome.String(outcome))
}

// ItemLoaded counts a loaded item and its column parse failures
func (wm *WorkflowMetrics) ItemLoaded(ctx context.Context, parseFailures int) {
	if wm == nil {
		return
	}
	wm.itemsLoaded.Inc(ctx)
	if parseFailures > 0 {
		wm.parseFailures.Add(ctx, int64(parseFailures))
	}
}

// SubmissionCreated counts a dispatch attempt
func (wm *WorkflowMetrics) SubmissionCreated(ctx context.Context, err error) {
	if wm == nil {
		return
	}
	wm.submissionsCreated.Inc(ctx, AttrOutcome.String(outcomeOf(err)))
}

// AssetResolved counts an asset resolution; cache is "hit", "miss" or "direct"
func (wm *WorkflowMetrics) AssetResolved(ctx context.Context, cache string) {
	if wm == nil {
		return
	}
	wm.assetResolutions.Inc(ctx, AttrCache.String(cache))
}

// RemoteCall records the duration of a call to a remote platform
func (wm *WorkflowMetrics) RemoteCall(ctx context.Context, remote, operation string, d time.Duration, err error) {
	if wm == nil {
		return
	}
	wm.remoteCallDuration.RecordDuration(ctx, d,
		AttrRemote.String(remote), AttrOperation.String(operation), AttrOutcome.String(outcomeOf(err)))
}

// PreviewHandles records the number of live preview handles
func (wm *WorkflowMetrics) PreviewHandles(ctx context.Context, n int) {
	if wm == nil {
		return
	}
	wm.previewHandles.Record(ctx, int64(n))
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
