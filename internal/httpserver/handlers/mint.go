package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
)

type mintRequest struct {
	Address domain.ContentAddress `json:"address,omitempty"` // empty mints the pending draft
}

// Mint registers the pending draft, or the given address, from the session wallet.
func Mint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

		var req mintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, d.Logger, fmt.Errorf("%w: invalid json: %v", domain.ErrValidation, err))
			return
		}

		res, err := d.Journal.Mint(r.Context(), req.Address)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
