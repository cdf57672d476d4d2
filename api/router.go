package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the WebSocket endpoint and the HTTP API.
func NewRouter(h *Handler, serveWS http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", serveWS)
	r.Get("/healthz", Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", h.Records)
		r.Options("/records", h.Records)
		r.Get("/history", h.History)
		r.Options("/history", h.History)
	})
	return r
}
