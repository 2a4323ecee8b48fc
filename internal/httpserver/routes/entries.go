package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/handlers"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/mw"
)

func init() { Register("entries", registerEntries) }

func registerEntries(r chi.Router, d deps.Deps) {
	r.Get("/api/entries", handlers.ListEntries(d))
	r.Get("/api/entries/{tokenId}", handlers.GetEntry(d))
	r.Get("/api/stats", handlers.Stats(d))
	r.Get("/api/eligibility", handlers.Eligibility(d))

	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger)).
		Post("/api/entries/refresh", handlers.RefreshEntries(d))
}
