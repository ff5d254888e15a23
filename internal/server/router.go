// Package server exposes the streaming and job admin HTTP surface.
package server

import (
	"net/http"

	"grabarr/internal/cfg"
	"grabarr/internal/contracts"
	"grabarr/internal/queue"
	"grabarr/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	js   contracts.JobStore
	as   contracts.AssetStore
	acts contracts.ActivityStore

	tokens *token.Service
	media  *cfg.MediaRoot
	pool   *queue.Pool
)

const DefaultPort = "8842"

// NewRouter returns an http Handler over the given collaborators.
func NewRouter(s contracts.Store, t *token.Service, m *cfg.MediaRoot, p *queue.Pool) http.Handler {
	// Inject stores
	js = s.JobStore()
	as = s.AssetStore()
	acts = s.ActivityStore()

	tokens = t
	media = m
	pool = p

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Streaming ---
	r.Route("/tracks/{id}", func(r chi.Router) {
		r.Get("/stream", handleStreamTrack)

		r.Route("/hls", func(r chi.Router) {
			r.Use(requireToken)
			r.Get("/playlist.m3u8", handleHLSPlaylist)
			r.Get("/{segment}", handleHLSSegment)
		})
	})

	// --- Admin API ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", handleListJobs)
			r.Post("/", handleCreateJob)
			r.Get("/{id}", handleGetJob)
			r.Post("/{id}/cancel", handleCancelJob)
		})
		r.Delete("/tracks/{id}/media", handleDeleteTrackMedia)
		r.Post("/stream-token/rotate", handleRotateStreamToken)
		r.Get("/activity", handleListActivity)
	})

	return r
}
