package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/go-chi/chi/v5"
)

// createJobInput is the POST /jobs request body.
type createJobInput struct {
	Query      string `json:"query"`
	Source     string `json:"source"`
	Quality    string `json:"quality"`
	ArtistName string `json:"artist_name"`
	AlbumTitle string `json:"album_title"`
	TrackID    int64  `json:"track_id"`
	Kind       string `json:"kind"`
}

// handleCreateJob accepts a new download job and hands it to the worker pool.
func handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in createJobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Query == "" {
		errorJSON(w, http.StatusBadRequest, "query is required")
		return
	}
	if in.Source == "" {
		in.Source = consts.SourceManual
	}
	switch in.Source {
	case consts.SourceManual, consts.SourceMonitor, consts.SourceImport:
	default:
		errorJSON(w, http.StatusBadRequest, "unknown source")
		return
	}
	if in.Kind == "" {
		in.Kind = consts.KindDownload
	}
	switch in.Kind {
	case consts.KindDownload, consts.KindRemux, consts.KindHLSSegment:
	default:
		errorJSON(w, http.StatusBadRequest, "unknown job kind")
		return
	}

	id, err := pool.Enqueue(r.Context(), models.JobPayload{
		Kind:       in.Kind,
		Query:      in.Query,
		Source:     in.Source,
		Quality:    in.Quality,
		ArtistName: in.ArtistName,
		AlbumTitle: in.AlbumTitle,
		TrackID:    in.TrackID,
	})
	if err != nil {
		errorJSON(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// handleListJobs lists recent jobs, newest first.
func handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			errorJSON(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	jobs, err := js.ListJobs(r.Context(), limit)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetJob returns a single job record.
func handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	j, found, err := js.GetJob(r.Context(), id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		errorJSON(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// handleCancelJob requests cancellation of a pending or running job.
// In-flight external tool work drains on its own; the status flip here is
// what prevents any later state from landing.
func handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	j, found, err := js.GetJob(r.Context(), id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		errorJSON(w, http.StatusNotFound, "job not found")
		return
	}
	if j.Status == models.JobCancelled {
		writeJSON(w, http.StatusOK, j)
		return
	}

	applied, err := js.UpdateJobIfNotCancelled(r.Context(), id, models.JobUpdate{
		Status: models.StatusPtr(models.JobCancelled),
	})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !applied {
		errorJSON(w, http.StatusConflict, "job already finished")
		return
	}

	j, _, err = js.GetJob(r.Context(), id)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// handleRotateStreamToken replaces the shared stream token, invalidating
// every URL minted with the old one.
func handleRotateStreamToken(w http.ResponseWriter, r *http.Request) {
	newToken, err := tokens.Rotate(r.Context())
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := acts.Append(r.Context(), consts.EventTokenRotated, "Stream token rotated", nil); err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": newToken})
}

// handleListActivity lists recent activity events, newest first.
func handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			errorJSON(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := acts.Recent(r.Context(), limit)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
