package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewHandler_Lifecycle(t *testing.T) {
	engine := newTestRouter(t, newTestService(t))
	sess := startSession(t, engine)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/files/0/preview", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var handle struct {
		ID          string    `json:"id"`
		URL         string    `json:"url"`
		Name        string    `json:"name"`
		ContentType string    `json:"content_type"`
		ExpiresAt   time.Time `json:"expires_at"`
	}
	decodeData(t, w, &handle)
	require.NotEmpty(t, handle.ID)
	assert.Equal(t, "convenio_proveedor_a.pdf", handle.Name)
	assert.True(t, handle.ExpiresAt.After(time.Now()))

	w = doJSON(t, engine, http.MethodGet, "/api/v1/previews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		Count int `json:"count"`
	}
	decodeData(t, w, &info)
	assert.Equal(t, 1, info.Count)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/previews/"+handle.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `inline; filename="convenio_proveedor_a.pdf"`)
	assert.True(t, strings.HasPrefix(w.Header().Get("Cache-Control"), "private, max-age="))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/previews/"+handle.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/previews/"+handle.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// revoking twice is harmless
	w = doJSON(t, engine, http.MethodDelete, "/api/v1/previews/"+handle.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPreviewHandler_InfoEmpty(t *testing.T) {
	engine := newTestRouter(t, newTestService(t))

	w := doJSON(t, engine, http.MethodGet, "/api/v1/previews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"handles":[]`)
}

func TestSecondsUntil(t *testing.T) {
	assert.Equal(t, 0, secondsUntil(time.Now().Add(-time.Minute)))
	assert.InDelta(t, 60, secondsUntil(time.Now().Add(61*time.Second)), 1)
}
