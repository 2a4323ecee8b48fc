package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Snehagupta1907/monad-journal/internal/aggregator"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type entriesResponse struct {
	Entries     []domain.AggregatedEntry `json:"entries"`
	Count       int                      `json:"count"`
	LastRefresh *time.Time               `json:"lastRefresh,omitempty"`
}

// ListEntries serves the last applied view, optionally filtered by ?author=0x...
func ListEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := d.Index.GetAllEntries()
		if author := strings.TrimSpace(r.URL.Query().Get("author")); author != "" {
			entries = aggregator.FilterByMinter(entries, author)
		}

		resp := entriesResponse{Entries: entries, Count: len(entries)}
		if last := d.Index.GetLastReload(); !last.IsZero() {
			resp.LastRefresh = &last
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GetEntry serves one entry from the view, resolving it from the registry when the view lacks it.
func GetEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "tokenId"), 10, 64)
		if err != nil {
			writeError(w, d.Logger, fmt.Errorf("%w: token id must be a positive integer", domain.ErrValidation))
			return
		}

		if e, ok := d.Index.GetEntry(id); ok {
			writeJSON(w, http.StatusOK, e)
			return
		}

		e, err := d.Entries.Entry(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// RefreshEntries queues an aggregation pass.
func RefreshEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Refresher.Trigger() {
			d.Logger.Info("manual refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh triggered"})
			return
		}

		d.Logger.Warn("refresh already queued",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "refresh already in progress"})
	}
}

type statsResponse struct {
	TotalEntries uint64 `json:"totalEntries"`
	aggregator.Stats
	LastRefresh *time.Time `json:"lastRefresh,omitempty"`
	Registry    string     `json:"registry,omitempty"`
}

// Stats reports the registry counter next to the todo totals of the current view.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := d.Registry.TotalEntries(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		resp := statsResponse{
			TotalEntries: total,
			Stats:        aggregator.Summarize(d.Index.GetAllEntries()),
			Registry:     d.RegistryAddr,
		}
		if last := d.Index.GetLastReload(); !last.IsZero() {
			resp.LastRefresh = &last
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Eligibility reports whether the session wallet may mint today.
func Eligibility(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Guard.Snapshot())
	}
}
