package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
)

const draftOverhead = 64 << 10

type draftRequest struct {
	domain.DraftEntry
	Image string `json:"image,omitempty"` // base64, optionally as a data: URL
}

// PrepareDraft stores the draft's image and metadata and keeps the result as the pending draft.
func PrepareDraft(d deps.Deps) http.HandlerFunc {
	// base64 grows payloads by 4/3
	limit := int64(d.MaxImageBytes)*4/3 + draftOverhead

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, d.Logger, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrValidation, tooLarge.Limit))
				return
			}
			writeError(w, d.Logger, fmt.Errorf("%w: invalid json: %v", domain.ErrValidation, err))
			return
		}

		image, err := decodeImage(req.Image)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		p, err := d.Journal.Prepare(r.Context(), req.DraftEntry, image)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// PendingDraft returns the prepared draft waiting to be minted.
func PendingDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.Journal.Pending()
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no pending draft", Kind: "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// ResetDraft drops the pending draft.
func ResetDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Journal.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("%w: malformed data url", domain.ErrValidation)
		}
		s = s[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", domain.ErrValidation)
	}
	return b, nil
}
