// Package api implements the HTTP surface of the jobs service.
//
// Routes:
//
//	GET  /              → service banner
//	GET  /health        → liveness
//	GET  /jobs          → filtered, paginated job list
//	GET  /jobs/{id}     → single job
//	POST /jobs/scrape   → trigger a background ingestion run
//	GET  /tags          → all tags
//	GET  /stats         → aggregate counts
//	GET  /runs/{id}     → ingestion run status
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/runs"
	"github.com/Jbelley18/VermontJobs/internal/store"
)

const (
	Version = "1.0.0"
	service = "jobs-service"

	// ScrapeTrigger is the name recorded on runs started through the API.
	ScrapeTrigger = "api"
)

// JobStore is the read side of the job store.
type JobStore interface {
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.JobListing, error)
	GetJob(ctx context.Context, id int64) (*model.JobListing, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// Launcher starts ingestion runs and reports on them.
type Launcher interface {
	Trigger(ctx context.Context, trigger string) (*model.Run, error)
	Get(ctx context.Context, id string) (*model.Run, error)
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	jobs     JobStore
	launcher Launcher
}

// NewHandler returns a configured Handler.
func NewHandler(jobs JobStore, launcher Launcher) *Handler {
	return &Handler{jobs: jobs, launcher: launcher}
}

// Routes returns the service's routes wrapped in the CORS middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return WithCORS(mux)
}

// RegisterRoutes mounts all routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJob)
	mux.HandleFunc("/tags", h.handleTags)
	mux.HandleFunc("/stats", h.handleStats)
	mux.HandleFunc("/runs/", h.handleRun)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonOK(w, map[string]string{
		"message":       "Vermont Jobs API",
		"version":       Version,
		"documentation": "GET /jobs, /jobs/{id}, /tags, /stats, /runs/{id}; POST /jobs/scrape",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": service,
		"version": Version,
	})
}

// handleJobs handles GET /jobs
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	f, err := parseJobFilter(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobs, err := h.jobs.ListJobs(r.Context(), f)
	if err != nil {
		slog.Error("list jobs failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []model.JobListing{}
	}
	jsonOK(w, jobs)
}

// handleJob handles GET /jobs/{id} and POST /jobs/scrape
func (h *Handler) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if rest == "" || strings.Contains(rest, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	if rest == "scrape" {
		if !allow(w, r, http.MethodPost) {
			return
		}
		h.triggerScrape(w, r)
		return
	}

	if !allow(w, r, http.MethodGet) {
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		jsonError(w, "job id must be an integer", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get job failed", "id", id, "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	tags, err := h.jobs.ListTags(r.Context())
	if err != nil {
		slog.Error("list tags failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	jsonOK(w, tags)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	stats, err := h.jobs.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, stats)
}

// handleRun handles GET /runs/{id}
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	run, err := h.launcher.Get(r.Context(), id)
	if errors.Is(err, runs.ErrUnknownRun) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get run failed", "id", id, "err", err)
		jsonError(w, "run lookup failed", http.StatusInternalServerError)
		return
	}
	jsonOK(w, run)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) triggerScrape(w http.ResponseWriter, r *http.Request) {
	run, err := h.launcher.Trigger(r.Context(), ScrapeTrigger)
	if errors.Is(err, runs.ErrRunInProgress) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("trigger scrape failed", "err", err)
		jsonError(w, "could not start ingestion run", http.StatusInternalServerError)
		return
	}

	jsonStatus(w, http.StatusAccepted, map[string]string{
		"message": "Job scraping started in the background",
		"run_id":  run.ID,
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}
