package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/handlers"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/mw"
)

func init() { Register("health", registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.Get("/infra", handlers.Infra(d))
	internal.Handle("/metrics", promhttp.Handler())
}
