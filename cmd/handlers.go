package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/config"
	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/ocr"
	"github.com/sells-group/startup-analyst/internal/pipeline"
	"github.com/sells-group/startup-analyst/internal/store"
)

const maxUploadBytes = 32 << 20

// apiServer exposes the evaluation pipeline over HTTP.
type apiServer struct {
	cfg          *config.Config
	store        store.Store
	orchestrator *pipeline.Orchestrator
}

func newAPIServer(cfg *config.Config, st store.Store, orch *pipeline.Orchestrator) *apiServer {
	return &apiServer{cfg: cfg, store: st, orchestrator: orch}
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents/upload", s.handleUpload)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses", s.handleListAnalyses)
		r.Route("/analysis/{id}", func(r chi.Router) {
			r.Get("/status", s.handleStatus)
			r.Get("/report", s.handleReport)
			r.Get("/summary", s.handleSummary)
			r.Delete("/", s.handleDelete)
		})
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"units":  s.orchestrator.Health(),
	})
}

// handleUpload accepts multipart document uploads and stores them under
// the configured upload directory with opaque names. The returned paths
// are what the analyze endpoint expects in its documents list.
func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	dir := s.cfg.Analysis.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "upload directory unavailable")
		return
	}

	type uploaded struct {
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}
	out := make([]uploaded, 0, len(files))

	for _, fh := range files {
		if !ocr.IsSupported(fh.Filename) {
			writeError(w, http.StatusBadRequest, "unsupported file type: "+fh.Filename)
			return
		}

		src, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file: "+fh.Filename)
			return
		}

		dest := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
		if err := saveUpload(src, dest); err != nil {
			zap.L().Error("upload save failed", zap.String("file", fh.Filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store "+fh.Filename)
			return
		}
		out = append(out, uploaded{Filename: fh.Filename, Path: dest})
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": out})
}

func saveUpload(src io.ReadCloser, dest string) error {
	defer src.Close()
	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create upload")
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return eris.Wrap(err, "write upload")
	}
	return nil
}

type analyzeRequest struct {
	CompanyName string   `json:"company_name"`
	Documents   []string `json:"documents"`
	Writeup     string   `json:"writeup"`
}

// handleAnalyze starts an evaluation asynchronously and returns the run
// ID for status polling.
func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyName == "" && len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "company_name or documents required")
		return
	}

	runID := s.orchestrator.Launch(r.Context(), model.AnalysisRequest{
		CompanyName: req.CompanyName,
		Documents:   req.Documents,
		Writeup:     req.Writeup,
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": string(model.RunStatusPending),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	run, ok := s.getRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":     run.ID,
		"company":    run.Request.CompanyName,
		"status":     run.Status,
		"error":      run.Error,
		"created_at": run.CreatedAt,
		"updated_at": run.UpdatedAt,
	})
}

func (s *apiServer) handleReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.getRun(w, r)
	if !ok {
		return
	}
	if run.Status != model.RunStatusCompleted || run.Report == nil {
		writeError(w, http.StatusBadRequest, "analysis not completed: "+string(run.Status))
		return
	}
	writeJSON(w, http.StatusOK, run.Report)
}

func (s *apiServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := s.getRun(w, r)
	if !ok {
		return
	}
	if run.Report == nil {
		writeError(w, http.StatusBadRequest, "analysis not completed: "+string(run.Status))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":            run.ID,
		"company":           run.Report.Metadata.CompanyName,
		"status":            run.Status,
		"executive_summary": run.Report.ExecutiveSummary,
	})
}

func (s *apiServer) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	type item struct {
		RunID   string          `json:"run_id"`
		Company string          `json:"company"`
		Status  model.RunStatus `json:"status"`
		Score   *float64        `json:"score,omitempty"`
	}
	out := make([]item, 0, len(runs))
	for _, run := range runs {
		it := item{RunID: run.ID, Company: run.Request.CompanyName, Status: run.Status}
		if run.Report != nil {
			score := run.Report.ExecutiveSummary.OverallScore
			it.Score = &score
		}
		out = append(out, it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": out})
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("delete run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *apiServer) getRun(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return nil, false
		}
		zap.L().Error("get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
