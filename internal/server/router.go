package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the chi router with the full middleware stack and all
// journal routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.HandleRegister)
		r.Post("/login", h.HandleLogin)

		// Everything below operates on a resolved owner id.
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/logout", h.HandleLogout)
			r.Post("/preview", h.HandlePreview)

			r.Route("/trades", func(r chi.Router) {
				r.Post("/", h.HandleCreateTrade)
				r.Get("/", h.HandleListTrades)
				r.Get("/stats", h.HandleStats)
				r.Get("/export", h.HandleExportCSV)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.HandleGetTrade)
					r.Patch("/", h.HandleUpdateTrade)
					r.Post("/close", h.HandleCloseTrade)
					r.Delete("/", h.HandleDeleteTrade)
					r.Post("/attachments", h.HandleUploadAttachment)
				})
			})
		})
	})

	return r
}
