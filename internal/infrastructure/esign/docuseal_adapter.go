package esign

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/infrastructure/telemetry"
)

// maxResponseSize is the maximum allowed response size from the DocuSeal API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const remoteName = "signing"

// AuthHeader carries the DocuSeal API key
const AuthHeader = "X-Auth-Token"

// DocuSealAdapter implements signing.Platform over the DocuSeal REST API
type DocuSealAdapter struct {
	config     *DocuSealConfig
	httpClient *http.Client
	now        func() time.Time
}

// Compile-time check
var _ signing.Platform = (*DocuSealAdapter)(nil)

// DocuSealOption configures a DocuSealAdapter
type DocuSealOption func(*DocuSealAdapter)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) DocuSealOption {
	return func(a *DocuSealAdapter) {
		a.httpClient = c
	}
}

// NewDocuSealAdapter creates a new DocuSeal adapter with the given configuration
func NewDocuSealAdapter(config *DocuSealConfig, opts ...DocuSealOption) (*DocuSealAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a := &DocuSealAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// signing.Platform
// ---------------------------------------------------------------------------

// ListTemplates returns every template available to the API key
func (a *DocuSealAdapter) ListTemplates(ctx context.Context) ([]signing.TemplateSummary, error) {
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "list_templates")
	defer span.End()

	body, err := a.doRequest(ctx, http.MethodGet, "/api/templates", nil, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var list templateList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, invalidResponse(err)
	}

	out := make([]signing.TemplateSummary, 0, len(list))
	for _, t := range list {
		out = append(out, t.summary())
	}
	return out, nil
}

// GetTemplateDetails returns a template with its signer roles
func (a *DocuSealAdapter) GetTemplateDetails(ctx context.Context, templateID string) (*signing.Template, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, shared.NewValidationError("template id is required")
	}
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "get_template",
		telemetry.WithAttribute(telemetry.SpanAttrTemplateID, templateID))
	defer span.End()

	body, err := a.doRequest(ctx, http.MethodGet, "/api/templates/"+url.PathEscape(templateID), nil, signing.ErrTemplateNotFound)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var t docusealTemplate
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, invalidResponse(err)
	}
	return t.template(), nil
}

// GetPreviewURL returns the URL rendering the template's document
func (a *DocuSealAdapter) GetPreviewURL(templateID string) string {
	return fmt.Sprintf("%s/api/templates/%s/preview.pdf", a.config.BaseURL, url.PathEscape(templateID))
}

// CreateSubmission dispatches a signature request
func (a *DocuSealAdapter) CreateSubmission(ctx context.Context, req *signing.SubmissionRequest) (*signing.SubmissionResult, error) {
	if req == nil {
		return nil, shared.NewValidationError("submission request is required")
	}
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "create_submission",
		telemetry.WithAttribute(telemetry.SpanAttrTemplateID, req.TemplateID))
	defer span.End()

	body, err := a.doRequest(ctx, http.MethodPost, "/api/submissions", toSubmissionPayload(req), signing.ErrTemplateNotFound)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	sub, err := decodeSubmission(body)
	if err != nil {
		return nil, invalidResponse(err)
	}
	res := sub.result()
	telemetry.SetAttributes(span, telemetry.SpanAttrSubmissionID, res.ID)
	return res, nil
}

// GetSubmission returns the current state of a submission
func (a *DocuSealAdapter) GetSubmission(ctx context.Context, submissionID string) (*signing.SubmissionResult, error) {
	if strings.TrimSpace(submissionID) == "" {
		return nil, shared.NewValidationError("submission id is required")
	}
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "get_submission",
		telemetry.WithAttribute(telemetry.SpanAttrSubmissionID, submissionID))
	defer span.End()

	body, err := a.doRequest(ctx, http.MethodGet, "/api/submissions/"+url.PathEscape(submissionID), nil, signing.ErrSubmissionNotFound)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	sub, err := decodeSubmission(body)
	if err != nil {
		return nil, invalidResponse(err)
	}
	return sub.result(), nil
}

// CreateTemplateFromPDF uploads a drafted template with its signature fields
func (a *DocuSealAdapter) CreateTemplateFromPDF(ctx context.Context, draft *signing.TemplateDraft) (*signing.DraftResult, error) {
	if draft == nil || len(draft.Document) == 0 {
		return nil, shared.NewValidationError("template draft has no document")
	}
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "create_template")
	defer span.End()

	payload := templatePDFPayload{
		Name:       draft.Name,
		ExternalID: draft.ExternalID,
		SharedLink: true,
		Documents: []documentPayload{{
			Name:   draft.DocumentName,
			File:   base64.StdEncoding.EncodeToString(draft.Document),
			Fields: draft.Fields,
		}},
	}
	body, err := a.doRequest(ctx, http.MethodPost, "/api/templates/pdf", payload, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var t docusealTemplate
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, invalidResponse(err)
	}

	id := t.ID.String()
	telemetry.SetAttributes(span, telemetry.SpanAttrTemplateID, id)
	res := &signing.DraftResult{
		ID:         id,
		Name:       t.Name,
		ExternalID: t.ExternalID,
		EditURL:    fmt.Sprintf("%s/templates/%s/edit", a.config.BaseURL, id),
		ViewURL:    fmt.Sprintf("%s/templates/%s", a.config.BaseURL, id),
		Signers:    draft.Signers,
		CreatedAt:  t.CreatedAt,
	}
	if res.ExternalID == "" {
		res.ExternalID = draft.ExternalID
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = a.now()
	}
	return res, nil
}

// BuilderURL returns a link opening the template builder prefilled with params
func (a *DocuSealAdapter) BuilderURL(params signing.BuilderParams) string {
	return builderURL(a.config.BaseURL, params)
}

func builderURL(base string, params signing.BuilderParams) string {
	q := url.Values{}
	if params.Name != "" {
		q.Set("name", params.Name)
	}
	if params.DocumentURL != "" {
		q.Set("document_url", params.DocumentURL)
	}
	for i, c := range params.Contacts {
		idx := strconv.Itoa(i)
		q.Set("submitter_"+idx+"_name", c.Name())
		q.Set("submitter_"+idx+"_email", c.Email)
	}
	u := base + "/templates/new"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an HTTP request to the DocuSeal API. notFound is the
// sentinel wrapped into a 404; nil means a 404 is an endpoint problem.
func (a *DocuSealAdapter) doRequest(ctx context.Context, method, path string, payload any, notFound error) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("docuseal: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("docuseal: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(AuthHeader, a.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, shared.NewConnectivityError("signing platform unreachable",
			fmt.Errorf("%w: %v", signing.ErrPlatformUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, shared.NewConnectivityError("signing response interrupted",
			fmt.Errorf("%w: failed to read response: %v", signing.ErrPlatformUnavailable, err))
	}

	logger.L(ctx).Debug("signing request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, body, notFound)
	}
	return body, nil
}

// statusError maps an HTTP error response to a domain error
func statusError(status int, body []byte, notFound error) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	detail := eb.text()
	cause := fmt.Errorf("%w: HTTP %d", signing.ErrPlatformRequestFailed, status)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.NewAuthenticationError("signing platform rejected the API key",
			fmt.Errorf("%w: HTTP %d", signing.ErrPlatformAuthFailed, status))
	case status == http.StatusNotFound:
		if notFound == nil {
			return shared.WrapDomainError(shared.CodeNotFound, "signing endpoint not found", cause)
		}
		return shared.WrapDomainError(shared.CodeNotFound, notFoundMessage(notFound, detail), notFound)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		msg := "signing platform rejected the request"
		if detail != "" {
			msg += ": " + detail
		}
		return shared.WrapDomainError(shared.CodeValidation, msg,
			fmt.Errorf("%w: HTTP %d", signing.ErrPlatformRejected, status))
	case status == http.StatusTooManyRequests || status >= 500:
		return shared.NewConnectivityError("signing platform unavailable", cause)
	default:
		return shared.WrapDomainError(shared.CodeValidation, "signing request failed", cause)
	}
}

func notFoundMessage(sentinel error, detail string) string {
	switch {
	case detail != "":
		return detail
	case errors.Is(sentinel, signing.ErrSubmissionNotFound):
		return "submission not found"
	default:
		return "template not found"
	}
}

func invalidResponse(err error) error {
	return shared.NewConnectivityError("unexpected signing platform response",
		fmt.Errorf("%w: %v", signing.ErrPlatformInvalidResponse, err))
}
