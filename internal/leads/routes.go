package leads

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/capture", h.Capture)
		r.Post("/personalize/batch", h.PersonalizeBatch)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/personalize", h.Personalize)
		r.Post("/{id}/sms/send", h.SendSMS)
		r.Post("/{id}/email/send", h.SendEmail)
		r.Post("/{id}/email/compose", h.ComposeEmail)
		r.Get("/{id}/messages", h.Thread)
	})

	r.Post("/integrations/sms/inbound", h.InboundSMS)
	r.Post("/integrations/email/inbound", h.InboundEmail)
}
