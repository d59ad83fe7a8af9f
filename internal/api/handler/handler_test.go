package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Rrens/datachat/internal/api"
	"github.com/Rrens/datachat/internal/api/handler"
	"github.com/Rrens/datachat/internal/config"
	"github.com/Rrens/datachat/internal/insight"
	"github.com/Rrens/datachat/internal/llm"
	"github.com/Rrens/datachat/internal/session"
	"github.com/Rrens/datachat/internal/visualization"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `age,income,city
25,70000,Berlin
30,50000,Hamburg
35,80000,Berlin
28,55000,Munich
`

type stubProvider struct {
	reply string
}

func (p *stubProvider) Name() string              { return "stub" }
func (p *stubProvider) AvailableModels() []string { return []string{"stub-1"} }
func (p *stubProvider) DefaultModel() string      { return "stub-1" }
func (p *stubProvider) IsConfigured() bool        { return true }

func (p *stubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return &llm.Response{Text: p.reply, Model: "stub-1"}, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.MiddlewareTimeout = time.Minute
	cfg.Dataset.UploadDir = t.TempDir()
	cfg.Dataset.MaxUploadMB = 10
	cfg.Plots.OutputDir = t.TempDir()

	llmRouter := llm.NewRouter("stub")
	llmRouter.RegisterProvider(&stubProvider{reply: "stub analysis"})

	client := insight.NewClient(llmRouter, "stub", "", 0, zerolog.Nop())
	sess := session.New(client, visualization.NewGenerator(zerolog.Nop()), zerolog.Nop())

	webFS := fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("<!DOCTYPE html>")}}
	return api.NewRouter(cfg, sess, llmRouter, webFS)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	}
	return rec, envelope
}

func uploadCSV(t *testing.T, srv http.Handler, filename, content string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return rec, envelope
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "ok", envelope["data"].(map[string]any)["status"])
}

func TestListLLMProviders(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/llm-providers", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "stub", data["default_provider"])
}

func TestDatasetFlow(t *testing.T) {
	srv := newTestServer(t)

	// preview before any load
	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/dataset/", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "please load a dataset first", envelope["error"])

	// upload
	rec, envelope = uploadCSV(t, srv, "people.csv", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code, envelope)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "people.csv", data["original_name"])
	profile := data["profile"].(map[string]any)
	assert.Equal(t, float64(4), profile["rows"])
	assert.Equal(t, float64(3), profile["cols"])

	// preview
	rec, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/dataset/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]any)
	head := data["head"].([]any)
	require.NotEmpty(t, head)
	assert.Equal(t, []any{"age", "income", "city"}, head[0])
	stats := data["statistics"].(map[string]any)
	assert.Contains(t, stats, "age")
	assert.Contains(t, stats, "income")

	// plan
	rec, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/visualizations/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := envelope["data"].(map[string]any)["categories"].([]any)
	require.Len(t, categories, 4)
	first := categories[0].(map[string]any)
	assert.Equal(t, "distribution", first["name"])
	assert.Equal(t, float64(2), first["count"])

	// clear
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/dataset/", nil)
	clearRec := httptest.NewRecorder()
	srv.ServeHTTP(clearRec, req)
	require.Equal(t, http.StatusNoContent, clearRec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/v1/dataset/", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := uploadCSV(t, srv, "data.xlsx", "not a csv")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid file type. Allowed: .csv", envelope["error"])
}

func TestUploadParseError(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := uploadCSV(t, srv, "bad.csv", "a,b\n1,2,3\n")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, envelope["error"], "failed to parse")
}

func TestLoadFromPath(t *testing.T) {
	srv := newTestServer(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	t.Run("success", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/dataset/load", map[string]string{"path": path})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, path, envelope["data"].(map[string]any)["path"])
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.csv")
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/dataset/load", map[string]string{"path": missing})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, envelope["error"], "dataset file not found")
	})

	t.Run("missing path field", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPost, "/api/v1/dataset/load", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateVisualizations(t *testing.T) {
	srv := newTestServer(t)

	t.Run("before load", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/visualizations/", map[string]any{"categories": []string{"boxplot"}})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "please load a dataset first", envelope["error"])
	})

	rec, _ := uploadCSV(t, srv, "people.csv", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("selected category", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/visualizations/", map[string]any{"categories": []string{"countplot"}})
		require.Equal(t, http.StatusOK, rec.Code)

		data := envelope["data"].(map[string]any)
		assert.Equal(t, float64(1), data["count"])
		plots := data["plots"].([]any)
		require.Len(t, plots, 1)
		plot := plots[0].(map[string]any)
		assert.Equal(t, "countplot_city.png", plot["file"])
		assert.Equal(t, "/plots/countplot_city.png", plot["url"])
	})

	t.Run("null categories means all", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/visualizations/", map[string]any{})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(6), envelope["data"].(map[string]any)["count"])
	})

	t.Run("empty list generates nothing", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/visualizations/", map[string]any{"categories": []string{}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), envelope["data"].(map[string]any)["count"])
	})

	t.Run("unknown category", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/visualizations/", map[string]any{"categories": []string{"scatter"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, envelope["error"], "unknown plot category")
	})
}

func TestAnalysisAndChat(t *testing.T) {
	srv := newTestServer(t)

	t.Run("analysis before load returns guidance", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/analysis", map[string]string{"query": ""})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Please load a dataset first.", envelope["data"].(map[string]any)["analysis"])
	})

	rec, _ := uploadCSV(t, srv, "people.csv", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("analysis", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/analysis", map[string]string{"query": "anything odd?"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "stub analysis", envelope["data"].(map[string]any)["analysis"])
	})

	t.Run("chat records history", func(t *testing.T) {
		rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/chat/", map[string]string{"message": "hello"})
		require.Equal(t, http.StatusOK, rec.Code)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "stub analysis", data["reply"])
		assert.Len(t, data["history"].([]any), 2)

		rec, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/chat/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, envelope["data"].(map[string]any)["history"].([]any), 2)
	})

	t.Run("chat requires a message", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPost, "/api/v1/chat/", map[string]string{"message": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
