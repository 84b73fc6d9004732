package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the UI-facing API.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/healthz", h.Healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/welcome", h.Welcome)
		r.Post("/chat", h.Chat)
		r.Post("/reset", h.Reset)
		r.Get("/history", h.History)
		r.Get("/userinfo", h.UserInfo)
	})

	return r
}
