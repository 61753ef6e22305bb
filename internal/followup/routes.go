package followup

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/leads/{id}/followups", func(r chi.Router) {
		r.Post("/ingest", h.Ingest)
		r.Post("/autopilot", h.Autopilot)
		// alias kept for the UI calling /run
		r.Post("/run", h.Autopilot)
		r.Post("/agent", h.Agent)
	})
}
