package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready     bool   `json:"ready"`
	HeadBlock uint64 `json:"head_block,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Readyz is ready once the chain endpoint answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		head, err := d.Registry.HeadBlock(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, HeadBlock: head})
	}
}
