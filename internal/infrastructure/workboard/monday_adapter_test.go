package workboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/domain/workitem"
)

const testSecret = "client-secret"

func TestMondayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *MondayConfig
		wantErr error
	}{
		{
			name:   "defaults filled",
			config: &MondayConfig{APIToken: "tok"},
		},
		{
			name:    "missing token",
			config:  &MondayConfig{},
			wantErr: ErrMondayConfigMissingToken,
		},
		{
			name:    "bad url",
			config:  &MondayConfig{APIToken: "tok", APIURL: "not a url"},
			wantErr: ErrMondayConfigInvalidAPIURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MondayProductionAPIURL, tt.config.APIURL)
			assert.Equal(t, MondayDefaultAPIVersion, tt.config.APIVersion)
			assert.Equal(t, 30*time.Second, tt.config.Timeout)
		})
	}
}

// graphQLServer answers every request with handler's result and records the last request
type graphQLServer struct {
	*httptest.Server
	mu       sync.Mutex
	lastReq  graphQLRequest
	lastAuth string
	lastVer  string
}

func (s *graphQLServer) last() (graphQLRequest, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq, s.lastAuth, s.lastVer
}

func newGraphQLServer(t *testing.T, status int, body string) *graphQLServer {
	t.Helper()
	s := &graphQLServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.lastAuth = r.Header.Get("Authorization")
		s.lastVer = r.Header.Get("API-Version")
		_ = json.Unmarshal(raw, &s.lastReq)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestAdapter(t *testing.T, apiURL string) *MondayAdapter {
	t.Helper()
	a, err := NewMondayAdapter(&MondayConfig{
		APIURL:       apiURL,
		APIToken:     "tok-123",
		ClientSecret: testSecret,
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return a
}

func TestMondayAdapter_GetItem(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusOK, `{"data":{"items":[{
		"id":"42","name":"Convenio","board":{"id":"7"},
		"column_values":[
			{"id":"email1","type":"text","text":"a@b.org","value":null,"column":{"title":"Solicitado Por-correo"}},
			{"id":"files","type":"file","text":null,"value":"{\"files\":[{\"name\":\"c.pdf\",\"assetId\":5}]}","column":{"title":"Archivos"}}
		]}]}}`)
	a := newTestAdapter(t, srv.URL)

	item, err := a.GetItem(context.Background(), "42")
	require.NoError(t, err)

	req, auth, ver := srv.last()
	assert.Equal(t, "tok-123", auth)
	assert.Equal(t, MondayDefaultAPIVersion, ver)
	assert.Equal(t, []any{"42"}, req.Variables["ids"])

	assert.Equal(t, "42", item.ID)
	assert.Equal(t, "7", item.BoardID)
	require.Len(t, item.Columns, 2)
	assert.Equal(t, "Solicitado Por-correo", item.Columns[0].Title)
	assert.Equal(t, "a@b.org", item.Columns[0].Text)
	assert.Empty(t, item.Columns[0].Value)
	assert.Equal(t, workitem.ColumnTypeFile, item.Columns[1].Type)
	assert.Contains(t, item.Columns[1].Value, "c.pdf")
}

func TestMondayAdapter_GetItem_NotFound(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusOK, `{"data":{"items":[]}}`)
	a := newTestAdapter(t, srv.URL)

	_, err := a.GetItem(context.Background(), "42")
	assert.ErrorIs(t, err, workitem.ErrItemNotFound)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestMondayAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantErr  error
	}{
		{
			name:     "graphql auth error",
			status:   http.StatusOK,
			body:     `{"errors":[{"message":"Not Authenticated"}]}`,
			wantCode: shared.CodeAuthentication,
			wantErr:  workitem.ErrPlatformAuthFailed,
		},
		{
			name:     "http 401 with body",
			status:   http.StatusUnauthorized,
			body:     `{"error_message":"Invalid token","status_code":401}`,
			wantCode: shared.CodeAuthentication,
			wantErr:  workitem.ErrPlatformAuthFailed,
		},
		{
			name:     "graphql query error",
			status:   http.StatusOK,
			body:     `{"errors":[{"message":"Field 'x' doesn't exist","extensions":{"code":"undefinedField"}}]}`,
			wantCode: shared.CodeValidation,
			wantErr:  workitem.ErrPlatformRequestFailed,
		},
		{
			name:     "server error",
			status:   http.StatusBadGateway,
			body:     `upstream down`,
			wantCode: shared.CodeConnectivity,
			wantErr:  workitem.ErrPlatformRequestFailed,
		},
		{
			name:     "garbage body",
			status:   http.StatusOK,
			body:     `<html>`,
			wantCode: shared.CodeConnectivity,
			wantErr:  workitem.ErrPlatformInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGraphQLServer(t, tt.status, tt.body)
			a := newTestAdapter(t, srv.URL)

			_, err := a.GetItem(context.Background(), "1")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, shared.CodeOf(err))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMondayAdapter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := newTestAdapter(t, url)
	_, err := a.ListBoardItems(context.Background(), "9", 5)
	assert.ErrorIs(t, err, workitem.ErrPlatformUnavailable)
	assert.Equal(t, shared.CodeConnectivity, shared.CodeOf(err))
}

func TestMondayAdapter_ListBoardItems(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusOK, `{"data":{"boards":[{"items_page":{"items":[
		{"id":"3","name":"Tres","created_at":"2024-03-01T00:00:00Z"},
		{"id":"2","name":"Dos","created_at":"2024-02-01T00:00:00Z"}
	]}}]}}`)
	a := newTestAdapter(t, srv.URL)

	items, err := a.ListBoardItems(context.Background(), "9", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[0].ID)
	assert.Equal(t, "Dos", items[1].Name)
	req, _, _ := srv.last()
	assert.EqualValues(t, 2, req.Variables["limit"])
}

func TestMondayAdapter_ResolveAsset(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusOK, `{"data":{"assets":[
		{"id":"5","name":"c.pdf","url":"https://x.monday.com/protected/5","public_url":"https://s3/signed","file_extension":".pdf","file_size":1024}
	]}}`)
	a := newTestAdapter(t, srv.URL)

	asset, err := a.ResolveAsset(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "5", asset.ID)
	assert.Equal(t, "https://s3/signed", asset.BestURL())
	assert.EqualValues(t, 1024, asset.SizeBytes)

	empty := newGraphQLServer(t, http.StatusOK, `{"data":{"assets":[]}}`)
	_, err = newTestAdapter(t, empty.URL).ResolveAsset(context.Background(), "5")
	assert.ErrorIs(t, err, workitem.ErrAssetNotFound)
}

func TestMondayAdapter_ValidateCredential(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		srv := newGraphQLServer(t, http.StatusOK, `{"data":{"me":{"id":11,"name":"Ana","email":"ana@x.org"}}}`)
		check, err := newTestAdapter(t, srv.URL).ValidateCredential(context.Background())
		require.NoError(t, err)
		assert.True(t, check.Valid)
		assert.Equal(t, "11", check.User.ID)
		assert.Equal(t, "ana@x.org", check.User.Email)
	})

	t.Run("rejected token is a result, not an error", func(t *testing.T) {
		srv := newGraphQLServer(t, http.StatusOK, `{"errors":[{"message":"Not Authenticated"}]}`)
		check, err := newTestAdapter(t, srv.URL).ValidateCredential(context.Background())
		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Contains(t, check.Err.Error(), "Not Authenticated")
	})

	t.Run("server failure is an error", func(t *testing.T) {
		srv := newGraphQLServer(t, http.StatusServiceUnavailable, ``)
		_, err := newTestAdapter(t, srv.URL).ValidateCredential(context.Background())
		assert.Equal(t, shared.CodeConnectivity, shared.CodeOf(err))
	})
}

func signSession(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		Data:             sessionData{UserID: "11", AccountID: "99"},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestMondayAdapter_GetContext(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusOK, `{"data":{"users":[{"id":"11","name":"Ana","email":"ana@x.org"}]}}`)
	a := newTestAdapter(t, srv.URL)

	t.Run("not embedded", func(t *testing.T) {
		_, err := a.GetContext(context.Background())
		assert.ErrorIs(t, err, workitem.ErrNotEmbedded)
	})

	t.Run("verified session", func(t *testing.T) {
		ctx := workitem.WithHostSession(context.Background(), workitem.HostSession{
			Token:   signSession(t, testSecret, time.Now().Add(time.Hour)),
			ItemID:  "42",
			BoardID: "7",
		})
		hc, err := a.GetContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "42", hc.ItemID)
		assert.Equal(t, "7", hc.BoardID)
		assert.Equal(t, "99", hc.AccountID)
		assert.Equal(t, "Ana", hc.User.Name)
	})

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signSession(t, "other", time.Now().Add(time.Hour))},
		{"expired", signSession(t, testSecret, time.Now().Add(-time.Hour))},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := workitem.WithHostSession(context.Background(), workitem.HostSession{Token: tt.token, ItemID: "42"})
			_, err := a.GetContext(ctx)
			assert.ErrorIs(t, err, workitem.ErrInvalidHostSession)
			assert.Equal(t, shared.CodeAuthentication, shared.CodeOf(err))
		})
	}
}

func TestMondayAdapter_GetContext_UserLookupFailureIsTolerated(t *testing.T) {
	srv := newGraphQLServer(t, http.StatusInternalServerError, ``)
	a := newTestAdapter(t, srv.URL)

	ctx := workitem.WithHostSession(context.Background(), workitem.HostSession{
		Token:  signSession(t, testSecret, time.Now().Add(time.Hour)),
		ItemID: "42",
	})
	hc, err := a.GetContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11", hc.User.ID)
	assert.Empty(t, hc.User.Name)
}

func TestMondayAdapter_DownloadAsset(t *testing.T) {
	var (
		mu      sync.Mutex
		gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		switch r.URL.Path {
		case "/ok.pdf":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = io.WriteString(w, "%PDF-1.4 test")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	a := newTestAdapter(t, srv.URL)

	dl, err := a.DownloadAsset(context.Background(), srv.URL+"/ok.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.Equal(t, "%PDF-1.4 test", string(dl.Data))
	mu.Lock()
	assert.Empty(t, gotAuth, "token is only sent to platform hosts")
	mu.Unlock()

	_, err = a.DownloadAsset(context.Background(), srv.URL+"/missing.pdf")
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	_, err = a.DownloadAsset(context.Background(), "ftp://host/file.pdf")
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestGraphQLFailure(t *testing.T) {
	err := graphQLFailure("", "ComplexityException")
	assert.Equal(t, shared.CodeConnectivity, shared.CodeOf(err))
	assert.True(t, errors.Is(err, workitem.ErrPlatformUnavailable))
}
