package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes mounts the control API.
func SetupRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Post("/config", h.Launch)
		r.Post("/reset", h.Reset)
		r.Put("/tab", h.SetTab)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.CreateTeam)
			r.Patch("/{id}", h.UpdateTeam)
			r.Delete("/{id}", h.DeleteTeam)
		})

		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.CreatePlayer)
			r.Patch("/{id}", h.UpdatePlayer)
			r.Delete("/{id}", h.DeletePlayer)
		})

		r.Route("/auction", func(r chi.Router) {
			r.Post("/open", h.OpenBidding)
			r.Post("/bid", h.PlaceBid)
			r.Post("/base-pick", h.BasePick)
			r.Post("/undo-bid", h.UndoBid)
			r.Post("/restart", h.RestartBidding)
			r.Post("/sale", h.ConfirmSale)
			r.Post("/unsold", h.MarkUnsold)
			r.Post("/undo-sale", h.UndoSale)
			r.Post("/cancel", h.CancelBidding)
		})

		r.Route("/live", func(r chi.Router) {
			r.Post("/show-squads", h.ShowSquads)
			r.Post("/show-idle", h.ShowIdle)
		})
	})

	return r
}
