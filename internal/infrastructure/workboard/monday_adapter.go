package workboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/infrastructure/telemetry"
)

// maxResponseSize is the maximum allowed GraphQL response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxDownloadSize is the maximum attachment size fetched by DownloadAsset (50MB)
const maxDownloadSize = 50 * 1024 * 1024

const remoteName = "workboard"

// MondayAdapter implements workitem.Platform over the monday GraphQL API
type MondayAdapter struct {
	config     *MondayConfig
	httpClient *http.Client
}

// Compile-time check
var _ workitem.Platform = (*MondayAdapter)(nil)

// MondayOption configures a MondayAdapter
type MondayOption func(*MondayAdapter)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) MondayOption {
	return func(a *MondayAdapter) {
		a.httpClient = c
	}
}

// NewMondayAdapter creates a new monday adapter with the given configuration
func NewMondayAdapter(config *MondayConfig, opts ...MondayOption) (*MondayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a := &MondayAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// workitem.Platform
// ---------------------------------------------------------------------------

// GetContext verifies the host session carried by ctx and returns its item and user
func (a *MondayAdapter) GetContext(ctx context.Context) (*workitem.HostContext, error) {
	hs, ok := workitem.HostSessionFromContext(ctx)
	if !ok {
		return nil, shared.WrapDomainError(shared.CodeValidation, "no host session", workitem.ErrNotEmbedded)
	}
	if a.config.ClientSecret == "" {
		return nil, shared.NewAuthenticationError("host session verification is not configured", workitem.ErrPlatformNotConfigured)
	}

	claims, err := a.verifySessionToken(hs.Token)
	if err != nil {
		return nil, shared.NewAuthenticationError("host session token rejected", err)
	}

	hc := &workitem.HostContext{
		ItemID:    hs.ItemID,
		BoardID:   hs.BoardID,
		User:      workitem.User{ID: claims.Data.UserID.String()},
		AccountID: claims.Data.AccountID.String(),
	}

	// The token carries only ids; name and email are looked up best effort.
	if hc.User.ID != "" {
		if u, err := a.lookupUser(ctx, hc.User.ID); err != nil {
			logger.L(ctx).Debug("host user lookup failed", zap.String("user_id", hc.User.ID), zap.Error(err))
		} else if u != nil {
			hc.User = toUser(u)
		}
	}
	return hc, nil
}

// verifySessionToken validates a host session token against the client secret
func (a *MondayAdapter) verifySessionToken(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, workitem.ErrInvalidHostSession
		}
		return []byte(a.config.ClientSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", workitem.ErrInvalidHostSession)
		}
		return nil, workitem.ErrInvalidHostSession
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, workitem.ErrInvalidHostSession
	}
	return claims, nil
}

func (a *MondayAdapter) lookupUser(ctx context.Context, userID string) (*mondayUser, error) {
	var data usersData
	if err := a.query(ctx, "get_user", usersQuery, map[string]any{"ids": []string{userID}}, &data); err != nil {
		return nil, err
	}
	if len(data.Users) == 0 {
		return nil, nil
	}
	return &data.Users[0], nil
}

// GetItem fetches one item with all of its columns
func (a *MondayAdapter) GetItem(ctx context.Context, itemID string) (*workitem.RawItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, shared.NewValidationError("item id is required")
	}
	var data itemsData
	if err := a.query(ctx, "get_item", itemQuery, map[string]any{"ids": []string{itemID}}, &data); err != nil {
		return nil, err
	}
	if len(data.Items) == 0 {
		return nil, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("item %s not found", itemID), workitem.ErrItemNotFound)
	}
	return toRawItem(data.Items[0]), nil
}

// ListBoardItems lists up to limit items of a board, newest first
func (a *MondayAdapter) ListBoardItems(ctx context.Context, boardID string, limit int) ([]workitem.ItemSummary, error) {
	if strings.TrimSpace(boardID) == "" {
		return nil, shared.NewValidationError("board id is required")
	}
	if limit <= 0 {
		limit = 25
	}
	var data boardsData
	vars := map[string]any{"ids": []string{boardID}, "limit": limit}
	if err := a.query(ctx, "list_board_items", boardItemsQuery, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Boards) == 0 {
		return nil, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("board %s not found", boardID), workitem.ErrItemNotFound)
	}

	items := data.Boards[0].ItemsPage.Items
	out := make([]workitem.ItemSummary, 0, len(items))
	for _, it := range items {
		out = append(out, workitem.ItemSummary{ID: it.ID, Name: it.Name, CreatedAt: it.CreatedAt})
	}
	return out, nil
}

// ResolveAsset turns an asset id into a downloadable URL
func (a *MondayAdapter) ResolveAsset(ctx context.Context, assetID string) (*workitem.Asset, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, shared.NewValidationError("asset id is required")
	}
	var data assetsData
	if err := a.query(ctx, "resolve_asset", assetQuery, map[string]any{"ids": []string{assetID}}, &data); err != nil {
		return nil, err
	}
	if len(data.Assets) == 0 {
		return nil, shared.WrapDomainError(shared.CodeNotFound,
			fmt.Sprintf("asset %s not found", assetID), workitem.ErrAssetNotFound)
	}
	return toAsset(data.Assets[0]), nil
}

// ValidateCredential checks the configured API token with the "me" query
func (a *MondayAdapter) ValidateCredential(ctx context.Context) (*workitem.CredentialCheck, error) {
	var data meData
	err := a.query(ctx, "validate_credential", meQuery, nil, &data)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeAuthentication {
			return &workitem.CredentialCheck{Valid: false, Err: err}, nil
		}
		return nil, err
	}
	if data.Me == nil {
		return &workitem.CredentialCheck{Valid: false, Err: workitem.ErrPlatformAuthFailed}, nil
	}
	return &workitem.CredentialCheck{Valid: true, User: toUser(data.Me)}, nil
}

// DownloadAsset fetches the content behind a resolved asset URL.
// Platform-hosted URLs get the API token; presigned public URLs do not.
func (a *MondayAdapter) DownloadAsset(ctx context.Context, rawURL string) (*workitem.Download, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid asset url %q", rawURL))
	}

	ctx, span := telemetry.StartClientSpan(ctx, remoteName, "download_asset")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("monday: failed to create request: %w", err)
	}
	if strings.HasSuffix(u.Hostname(), MondayAssetHostSuffix) {
		req.Header.Set("Authorization", a.config.APIToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewConnectivityError("asset download failed",
			fmt.Errorf("%w: %v", workitem.ErrPlatformUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, statusError(resp.StatusCode, "asset download failed")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, shared.NewConnectivityError("asset download interrupted",
			fmt.Errorf("%w: %v", workitem.ErrPlatformUnavailable, err))
	}
	if len(body) > maxDownloadSize {
		return nil, shared.NewValidationError(fmt.Sprintf("asset exceeds %d bytes", maxDownloadSize))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") || strings.HasPrefix(ct, "binary/octet-stream") {
		ct = http.DetectContentType(body)
	}
	return &workitem.Download{ContentType: ct, Data: body}, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// query runs a GraphQL operation and decodes its data into out
func (a *MondayAdapter) query(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	ctx, span := telemetry.StartClientSpan(ctx, remoteName, operation)
	defer span.End()

	body, err := a.doRequest(ctx, graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return shared.NewConnectivityError("unreadable work-board response",
			fmt.Errorf("%w: failed to parse response: %v", workitem.ErrPlatformInvalidResponse, err))
	}
	if msg, code, ok := resp.firstError(); ok {
		err := graphQLFailure(msg, code)
		telemetry.RecordError(span, err)
		return err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return shared.NewConnectivityError("empty work-board response", workitem.ErrPlatformInvalidResponse)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return shared.NewConnectivityError("unexpected work-board response",
			fmt.Errorf("%w: %v", workitem.ErrPlatformInvalidResponse, err))
	}
	telemetry.SetOK(span)
	return nil
}

// doRequest performs an HTTP request to the GraphQL endpoint
func (a *MondayAdapter) doRequest(ctx context.Context, payload graphQLRequest) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("monday: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIURL, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("monday: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", a.config.APIToken)
	req.Header.Set("API-Version", a.config.APIVersion)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, shared.NewConnectivityError("work-board platform unreachable",
			fmt.Errorf("%w: %v", workitem.ErrPlatformUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, shared.NewConnectivityError("work-board response interrupted",
			fmt.Errorf("%w: failed to read response: %v", workitem.ErrPlatformUnavailable, err))
	}

	if resp.StatusCode >= 400 {
		// Error bodies usually carry a GraphQL error with a better message.
		var gr graphQLResponse
		if json.Unmarshal(body, &gr) == nil {
			if msg, code, ok := gr.firstError(); ok {
				if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
					return nil, shared.NewAuthenticationError(msg, workitem.ErrPlatformAuthFailed)
				}
				return nil, graphQLFailure(msg, code)
			}
		}
		return nil, statusError(resp.StatusCode, "work-board request failed")
	}

	logger.L(ctx).Debug("work-board request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// graphQLFailure maps a GraphQL error to a domain error
func graphQLFailure(message, code string) error {
	if message == "" {
		message = code
	}
	if isAuthError(message, code) {
		return shared.NewAuthenticationError(message, workitem.ErrPlatformAuthFailed)
	}
	if strings.EqualFold(code, "ComplexityException") || strings.EqualFold(code, "RATE_LIMITED") {
		return shared.NewConnectivityError(message, workitem.ErrPlatformUnavailable)
	}
	return shared.WrapDomainError(shared.CodeValidation, message,
		fmt.Errorf("%w: %s", workitem.ErrPlatformRequestFailed, code))
}

// statusError maps an HTTP status without a usable body to a domain error
func statusError(status int, message string) error {
	cause := fmt.Errorf("%w: HTTP %d", workitem.ErrPlatformRequestFailed, status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return shared.NewAuthenticationError(message, fmt.Errorf("%w: HTTP %d", workitem.ErrPlatformAuthFailed, status))
	case status == http.StatusNotFound:
		return shared.WrapDomainError(shared.CodeNotFound, message, cause)
	case status == http.StatusTooManyRequests || status >= 500:
		return shared.NewConnectivityError(message, cause)
	default:
		return shared.WrapDomainError(shared.CodeValidation, message, cause)
	}
}
