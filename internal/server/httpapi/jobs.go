package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/server/models"
)

type registerJobRequest struct {
	JobType    string `json:"job_type"`
	ConfigJSON struct {
		JobData struct {
			ContentID   int64                      `json:"content_id"`
			ContentType string                     `json:"content_type"`
			Filters     map[string]json.RawMessage `json:"filters"`
		} `json:"job_data"`
	} `json:"config_json"`
}

type jobResponse struct {
	JobID     string `json:"job_id"`
	ContentID int64  `json:"content_id"`
	JobType   string `json:"job_type"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Model     string `json:"model,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func toJobResponse(j models.Job) jobResponse {
	return jobResponse{
		JobID:     j.JobID,
		ContentID: j.ContentID,
		JobType:   j.JobType,
		Status:    j.Status,
		Progress:  j.Progress,
		Model:     j.Model,
		CreatedAt: j.CreatedAt,
	}
}

// activeFilterCount counts filters whose "active" flag is set. Unknown
// extra fields in a filter value are ignored.
func activeFilterCount(filters map[string]json.RawMessage) int {
	n := 0
	for _, raw := range filters {
		var v struct {
			Active bool `json:"active"`
		}
		if err := json.Unmarshal(raw, &v); err == nil && v.Active {
			n++
		}
	}
	return n
}

// RegisterJob validates ownership and tier limits, then records a pending
// job. Workers pick it up out of band; status flows back over Redis.
func (h *Handler) RegisterJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req registerJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobType == "" {
		writeError(w, http.StatusBadRequest, "Invalid job request")
		return
	}
	jd := req.ConfigJSON.JobData
	if jd.ContentID == 0 || len(jd.Filters) == 0 {
		writeError(w, http.StatusBadRequest, "Job requires a content id and at least one filter")
		return
	}

	content, err := h.repos.Contents().GetByID(r.Context(), userID, jd.ContentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Content not found")
			return
		}
		h.log.Error(r.Context(), "content lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if content.Status != models.ContentStatusCompleted {
		writeError(w, http.StatusConflict, "Content is still being indexed")
		return
	}

	user, err := h.repos.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if maxFilters, ok := h.config.TierMaxFilters[user.Tier]; ok {
		if active := activeFilterCount(jd.Filters); active > maxFilters {
			writeError(w, http.StatusBadRequest, "Filter count exceeds tier limit")
			return
		}
	}

	config, err := json.Marshal(req.ConfigJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid job config")
		return
	}

	job := &models.Job{
		JobID:     uuid.NewString(),
		UserID:    userID,
		ContentID: jd.ContentID,
		JobType:   req.JobType,
		Status:    models.JobStatusPending,
		Config:    config,
	}
	if err := h.repos.Jobs().Create(r.Context(), job); err != nil {
		h.log.Error(r.Context(), "job create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusCreated, "Job registered", toJobResponse(*job))
}

// GetJobs lists the user's jobs newest first, optionally filtered by type.
func (h *Handler) GetJobs(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	limit, offset := pageParams(r)
	jobType := r.URL.Query().Get("job_type")

	jobs, total, err := h.repos.Jobs().List(r.Context(), userID, jobType, limit, offset)
	if err != nil {
		h.log.Error(r.Context(), "job list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	writeList(w, "OK", out, total)
}

// CancelJob marks a non-terminal job cancelled. Workers observe the status
// change and stop; already-finished jobs are not reopened.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	if err := h.repos.Jobs().Cancel(r.Context(), userID, jobID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Job not found or already finished")
			return
		}
		h.log.Error(r.Context(), "job cancel failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, "Job cancelled", nil)
}
