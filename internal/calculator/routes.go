package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the stateless evaluator under /calculator, the
// session endpoints under /sessions and the shared history under /history.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/keys", h.PressKeys)
			r.Post("/history/{calcID}", h.SelectHistory)
			r.Post("/inquiry", h.Inquire)
			r.Delete("/answer", h.DismissAnswer)
		})
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.ListHistory)
		r.Delete("/", h.ClearHistory)
	})
}
