package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"keymerger/internal/integrator"
	"keymerger/internal/storage"
	"keymerger/internal/validation"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (chi.Router, string) {
	t.Helper()
	router := chi.NewMux()
	config := huma.DefaultConfig("Test API", "1.0.0")
	humaAPI := humachi.New(router, config)

	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := integrator.NewService(store, validation.NewObjectValidator(), integrator.Options{}, logger)
	NewMergeHandlers(humaAPI, svc)

	return router, dir
}

func post(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMergeDocumentsEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := post(t, router, "/api/v1/merge", map[string]any{
		"source": json.RawMessage(`{"a": 1, "b": 2}`),
		"target": json.RawMessage(`{"b": 9}`),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var respBody struct {
		Merged     json.RawMessage      `json:"merged"`
		AddedCount int                  `json:"addedCount"`
		AddedKeys  []string             `json:"addedKeys"`
		Patch      []integrator.PatchOp `json:"patch"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, 1, respBody.AddedCount)
	assert.Equal(t, []string{"a"}, respBody.AddedKeys)
	assert.Equal(t, `{"b":9,"a":""}`, string(respBody.Merged))
	require.Len(t, respBody.Patch, 1)
	assert.Equal(t, "/a", respBody.Patch[0].Path)
}

func TestMergeDocumentsEndpoint_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			name:       "Missing target",
			payload:    map[string]any{"source": json.RawMessage(`{"a": 1}`)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Source is an array",
			payload: map[string]any{
				"source": json.RawMessage(`[1, 2, 3]`),
				"target": json.RawMessage(`{"x": 1}`),
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/api/v1/merge", tt.payload)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCreateIntegrationEndpoint(t *testing.T) {
	router, dir := setupRouter(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"hello": "Hello", "bye": "Bye"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.json"), []byte(`{"hello": "Bonjour"}`), 0644))

	w := post(t, router, "/api/v1/integrations", map[string]any{"source": "en.json", "target": "fr.json"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report integrator.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.AddedCount)
	assert.Equal(t, "fr_integrated.json", report.Output)
	assert.True(t, report.Written)

	written, err := os.ReadFile(filepath.Join(dir, "fr_integrated.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"hello\": \"Bonjour\",\n    \"bye\": \"\"\n}", string(written))
}

func TestCreateIntegrationEndpoint_Errors(t *testing.T) {
	router, dir := setupRouter(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid json`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.json"), []byte(`[1]`), 0644))

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{name: "Missing source", payload: map[string]any{"target": "ok.json"}, wantStatus: http.StatusBadRequest},
		{name: "Malformed target", payload: map[string]any{"source": "ok.json", "target": "bad.json"}, wantStatus: http.StatusBadRequest},
		{name: "Array source", payload: map[string]any{"source": "list.json", "target": "ok.json"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "Unknown document", payload: map[string]any{"source": "nope.json", "target": "ok.json"}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/api/v1/integrations", tt.payload)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	_, err := os.Stat(filepath.Join(dir, "bad_integrated.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateIntegrationEndpoint_RefsOutsideStore(t *testing.T) {
	router, dir := setupRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.json"), []byte(`{"a": 1}`), 0644))

	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.json")
	require.NoError(t, os.WriteFile(victim, []byte(`{"secret": 1}`), 0644))
	relVictim, err := filepath.Rel(dir, victim)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "Relative target", payload: map[string]any{"source": "ok.json", "target": relVictim}},
		{name: "Absolute target", payload: map[string]any{"source": "ok.json", "target": victim}},
		{name: "Relative source", payload: map[string]any{"source": relVictim, "target": "ok.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/api/v1/integrations", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "secret")
		})
	}

	entries, err := os.ReadDir(outside)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	_, err = os.Stat(filepath.Join(dir, "ok_integrated.json"))
	assert.True(t, os.IsNotExist(err))
}
