package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Snehagupta1907/monad-journal/internal/aggregator"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Submitted bool   `json:"submitted"`
	TxHash    string `json:"tx_hash,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to a status code. Mint failures report whether a transaction was submitted.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	kind := domain.Kind(err)
	if errors.Is(err, aggregator.ErrEntryNotFound) {
		kind = "not_found"
	}

	resp := errorResponse{Error: err.Error(), Kind: kind}
	var me *domain.MintError
	if errors.As(err, &me) {
		resp.Submitted = me.Submitted
		resp.TxHash = me.TxHash
	}

	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		log.Warn("request failed",
			logger.String("kind", kind),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, resp)
}

func statusFor(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "mint_busy":
		return http.StatusConflict
	case "not_eligible", "not_connected":
		return http.StatusForbidden
	case "store_unavailable", "chain_read", "mint_rejected", "mint_failed", "metadata_resolution":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
