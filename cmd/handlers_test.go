package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/startup-analyst/internal/config"
	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/ocr"
	"github.com/sells-group/startup-analyst/internal/pipeline"
	"github.com/sells-group/startup-analyst/internal/store"
)

func newTestServer(t *testing.T) (*apiServer, store.Store) {
	t.Helper()
	c := &config.Config{
		Analysis: config.AnalysisConfig{
			MaxCorpusChars:  12_000,
			UnitTimeoutSecs: 10,
			UploadDir:       t.TempDir(),
		},
	}
	st := store.NewMemory()
	orch := pipeline.New(c, st, &pipeline.StubLLMClient{}, ocr.NewExtractor(""))
	return newAPIServer(c, st, orch), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	api, _ := newTestServer(t)
	rec := doJSON(t, api.routes(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Units  map[string]string `json:"units"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ready", body.Units["financial"])
}

func TestAnalyzeLifecycle(t *testing.T) {
	api, st := newTestServer(t)
	h := api.routes()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", analyzeRequest{
		CompanyName: "Acme Robotics",
		Writeup:     "Pitch notes",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		RunID  string `json:"run_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.RunID)

	// Poll the store directly until the background run completes.
	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := st.GetRun(context.Background(), accepted.RunID)
		require.NoError(t, err)
		if run.Status == model.RunStatusCompleted {
			break
		}
		require.True(t, time.Now().Before(deadline), "run did not complete")
		time.Sleep(10 * time.Millisecond)
	}

	statusRec := doJSON(t, h, http.MethodGet, "/api/v1/analysis/"+accepted.RunID+"/status", nil)
	require.Equal(t, http.StatusOK, statusRec.Code)
	assert.Contains(t, statusRec.Body.String(), string(model.RunStatusCompleted))

	reportRec := doJSON(t, h, http.MethodGet, "/api/v1/analysis/"+accepted.RunID+"/report", nil)
	require.Equal(t, http.StatusOK, reportRec.Code)
	var report model.Report
	require.NoError(t, json.Unmarshal(reportRec.Body.Bytes(), &report))
	assert.Equal(t, "Acme Robotics", report.Metadata.CompanyName)
	assert.NotEmpty(t, report.ExecutiveSummary.Recommendation)

	summaryRec := doJSON(t, h, http.MethodGet, "/api/v1/analysis/"+accepted.RunID+"/summary", nil)
	require.Equal(t, http.StatusOK, summaryRec.Code)
	assert.Contains(t, summaryRec.Body.String(), "executive_summary")

	listRec := doJSON(t, h, http.MethodGet, "/api/v1/analyses", nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), accepted.RunID)

	delRec := doJSON(t, h, http.MethodDelete, "/api/v1/analysis/"+accepted.RunID, nil)
	require.Equal(t, http.StatusOK, delRec.Code)

	goneRec := doJSON(t, h, http.MethodGet, "/api/v1/analysis/"+accepted.RunID+"/status", nil)
	assert.Equal(t, http.StatusNotFound, goneRec.Code)
}

func TestAnalyzeValidation(t *testing.T) {
	api, _ := newTestServer(t)
	h := api.routes()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", analyzeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("not json"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestReportNotReady(t *testing.T) {
	api, st := newTestServer(t)
	run, err := st.CreateRun(context.Background(), model.AnalysisRequest{CompanyName: "Pending Co"})
	require.NoError(t, err)

	rec := doJSON(t, api.routes(), http.MethodGet, "/api/v1/analysis/"+run.ID+"/report", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not completed")
}

func TestRunNotFound(t *testing.T) {
	api, _ := newTestServer(t)
	rec := doJSON(t, api.routes(), http.MethodGet, "/api/v1/analysis/nope/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload(t *testing.T) {
	api, _ := newTestServer(t)
	h := api.routes()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "deck.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Acme Robotics pitch deck"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Files []struct {
			Filename string `json:"filename"`
			Path     string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, "deck.txt", body.Files[0].Filename)

	saved, err := os.ReadFile(body.Files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics pitch deck", string(saved))
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	api, _ := newTestServer(t)
	h := api.routes()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x4d, 0x5a})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}
