package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mw "github.com/kiranshivaraju/gamescout/internal/api/middleware"
	"github.com/kiranshivaraju/gamescout/internal/api/response"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// NewCreateJobHandler returns an http.HandlerFunc for POST /api/v1/jobs.
// The job is queued; a worker picks it up on its next poll.
func NewCreateJobHandler(jobs store.JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourceAppID int `json:"source_app_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.SourceAppID <= 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "source_app_id must be a positive integer", nil)
			return
		}

		job := &models.SuggestionJob{
			ID:          uuid.New(),
			SourceAppID: req.SourceAppID,
			Status:      models.JobStatusQueued,
			CreatedAt:   time.Now().UTC(),
		}
		if err := jobs.CreateJob(r.Context(), job); err != nil {
			mw.LoggerFrom(r.Context()).Error("create job failed", "source_app_id", req.SourceAppID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		mw.LoggerFrom(r.Context()).Info("job queued", "job_id", job.ID, "source_app_id", job.SourceAppID)
		response.Accepted(w, job)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(jobs store.JobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a UUID", nil)
			return
		}

		job, err := jobs.GetJob(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
			return
		}
		if err != nil {
			mw.LoggerFrom(r.Context()).Error("get job failed", "job_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, job)
	}
}
