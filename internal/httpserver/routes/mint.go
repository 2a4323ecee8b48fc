package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/handlers"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/mw"
)

func init() { Register("mint", registerMint) }

func registerMint(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), writeLimit(d)).Post("/api/mint", handlers.Mint(d))
}
