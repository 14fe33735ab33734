package handle

import "github.com/go-chi/chi/v5"

// Mount registers every endpoint on r.
func (h *Handle) Mount(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.HandleFunc("/api/genai", h.GenAI)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/views", h.Views)
		r.Post("/generate/{kind}", h.Generate)
		r.Post("/pronunciation", h.Pronunciation)
		r.Post("/render", h.Render)
		r.Post("/gamification/extract", h.Extract)
		r.Get("/history", h.History)

		r.Route("/awards", func(r chi.Router) {
			r.Post("/", h.CreateAward)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetAward)
				r.Delete("/", h.DeleteAward)
				r.Post("/toggle", h.ToggleAward)
				r.Post("/finalize", h.FinalizeAward)
				r.Get("/events", h.AwardEvents)
			})
		})
	})
}
