package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/handlers"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/mw"
)

func init() { Register("drafts", registerDrafts) }

func writeLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.WriteBurst,
		RefillPerIPPerMin: d.WriteRefill,
		MaxEntries:        10_000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})
}

func registerDrafts(r chi.Router, d deps.Deps) {
	w := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	w.Get("/api/drafts", handlers.PendingDraft(d))
	w.With(writeLimit(d)).Post("/api/drafts", handlers.PrepareDraft(d))
	w.Delete("/api/drafts", handlers.ResetDraft(d))
}
