package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	EntriesLoaded *int   `json:"entries_loaded,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		count := d.Index.Count()
		lastReload := "never"
		if t := d.Index.GetLastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"chain": checkChain(ctx, d),
			"view": {
				OK:            !d.Index.GetLastReload().IsZero(),
				EntriesLoaded: &count,
				LastReload:    lastReload,
			},
			"redis":  checkRedis(ctx, d),
			"wallet": checkWallet(d),
			"gateway": {
				OK:   true,
				Mode: d.Gateway,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["chain"].OK {
		return "critical" // no registry reads, no mints
	}
	if !components["view"].OK || !components["redis"].OK {
		return "degraded"
	}
	if !components["wallet"].OK {
		return "read-only"
	}
	return "operational"
}

func checkChain(ctx context.Context, d deps.Deps) componentStatus {
	if _, err := d.Registry.HeadBlock(ctx); err != nil {
		return componentStatus{OK: false, Impact: "entries-and-minting-unavailable", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.RegistryAddr}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "no-metadata-cache"}
	}
	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "metadata-cache-disabled", Error: "timeout"}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}

func checkWallet(d deps.Deps) componentStatus {
	snap := d.Guard.Snapshot()
	if snap.State == eligibility.Disconnected {
		return componentStatus{OK: false, Mode: string(snap.State), Impact: "minting-disabled"}
	}
	return componentStatus{OK: true, Mode: string(snap.State), Error: snap.Error}
}
