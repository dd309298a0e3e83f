package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aufaim/docquery/internal/core/ingestion"
	"github.com/aufaim/docquery/internal/models"
)

// DocumentHandler exposes the ingestion endpoints.
type DocumentHandler struct {
	jobs *ingestion.Manager
}

func NewDocumentHandler(jobs *ingestion.Manager) *DocumentHandler {
	return &DocumentHandler{jobs: jobs}
}

// ProcessDocuments accepts an ingestion request and queues it as a background
// job. The response is 202 with the job id; clients poll the job endpoint for
// the outcome.
func (h *DocumentHandler) ProcessDocuments(w http.ResponseWriter, r *http.Request) {
	var params models.IngestParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.Submit(params)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrSourceBusy):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, models.ErrUnknownSourceType),
			errors.Is(err, models.ErrMissingFolderID),
			errors.Is(err, models.ErrMissingLocalPath):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to queue ingestion")
		}
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// JobStatus returns the current state of a background ingestion job.
func (h *DocumentHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, ingestion.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	respondJSON(w, http.StatusOK, job)
}
