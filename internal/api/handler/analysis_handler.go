package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-ad-insights/internal/analysis"
	"go-ad-insights/internal/model"
	"go-ad-insights/internal/store"
	"go-ad-insights/pkg/utils"
)

// Handler serves the analysis API.
type Handler struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{log: log}
}

// CreateAnalysis creates a new descriptive-statistics analysis job
// @Summary Create a new analysis
// @Description Create and start a descriptive-statistics analysis of a tabular dataset
// @Tags analyses
// @Accept json
// @Produce json
// @Param analysis body model.AnalysisJobSpec true "Analysis configuration"
// @Success 200 {object} map[string]interface{} "Analysis created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analyses [post]
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var spec model.AnalysisJobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if spec.Source.URL == "" {
		http.Error(w, "A source URL is required", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	if err := store.SaveJob(jobID, spec); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(spec.Concurrency.JobTimeout))
	go func() {
		defer cancel()
		if err := analysis.Run(ctx, h.log, jobID, spec); err != nil {
			store.SaveJobError(jobID, err)
		}
	}()

	writeJSON(w, map[string]interface{}{
		"message":   "Analysis created successfully!",
		"jobID":     jobID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	})
}

// ListAnalyses retrieves all analysis jobs
// @Summary List all analyses
// @Description Get a list of all analysis jobs with their current status
// @Tags analyses
// @Produce json
// @Success 200 {array} map[string]interface{} "List of analyses"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analyses [get]
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch analyses", http.StatusInternalServerError)
		return
	}
	writeJSON(w, jobs)
}

// GetAnalysis retrieves a specific analysis job
// @Summary Get analysis
// @Description Retrieve details of a specific analysis job
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{} "Analysis details"
// @Failure 404 {object} map[string]interface{} "Analysis not found"
// @Router /analyses/{id} [get]
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}
	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job)
}

// GetAnalysisReport retrieves the flattened statistics report
// @Summary Get analysis report
// @Description Retrieve the (group, column, summary) rows computed by a finished analysis
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{} "Report rows"
// @Failure 404 {object} map[string]interface{} "Analysis not found"
// @Router /analyses/{id}/report [get]
func (h *Handler) GetAnalysisReport(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/report")
	if !ok {
		return
	}
	rows, err := store.GetReportRows(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"jobID":       jobID,
		"recordCount": len(rows),
		"rows":        rows,
	})
}

// GetAnalysisErrors retrieves errors for an analysis
// @Summary Get analysis errors
// @Description Retrieve all errors recorded for an analysis job
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{} "Analysis errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analyses/{id}/errors [get]
func (h *Handler) GetAnalysisErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/errors")
	if !ok {
		return
	}
	errs, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"jobID":  jobID,
		"errors": errs,
	})
}

// GetAnalysisLogs retrieves persisted log lines for an analysis
// @Summary Get analysis logs
// @Description Retrieve the persisted stage logs of an analysis job
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{} "Analysis logs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analyses/{id}/logs [get]
func (h *Handler) GetAnalysisLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/logs")
	if !ok {
		return
	}
	logs, err := store.GetJobLogs(jobID)
	if err != nil {
		http.Error(w, "Failed to fetch logs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"jobID": jobID,
		"logs":  logs,
	})
}

func jobIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	const prefix = "/api/v1/analyses/"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}
	jobID := strings.TrimSuffix(path[len(prefix):], suffix)
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return "", false
	}
	return jobID, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
