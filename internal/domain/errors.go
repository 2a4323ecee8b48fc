package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrStoreUnavailable   = errors.New("content store unavailable")
	ErrChainRead          = errors.New("chain read failure")
	ErrMintRejected       = errors.New("mint rejected")
	ErrMintFailed         = errors.New("mint failed")
	ErrMetadataResolution = errors.New("metadata resolution failure")
	ErrMintBusy           = errors.New("mint already in flight")
	ErrNotEligible        = errors.New("address cannot mint today")
	ErrNotConnected       = errors.New("wallet session not connected")
)

// MintError reports a terminal mint attempt failure.
// Submitted is true once a transaction reached the network, even if it later reverted.
type MintError struct {
	Kind      error // ErrMintRejected or ErrMintFailed
	Submitted bool
	TxHash    string
	Err       error
}

func (e *MintError) Error() string {
	switch {
	case e.TxHash != "" && e.Err != nil:
		return fmt.Sprintf("%v (tx %s): %v", e.Kind, e.TxHash, e.Err)
	case e.TxHash != "":
		return fmt.Sprintf("%v (tx %s)", e.Kind, e.TxHash)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *MintError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the sentinel name used in API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrMintBusy):
		return "mint_busy"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, ErrMintRejected):
		return "mint_rejected"
	case errors.Is(err, ErrMintFailed):
		return "mint_failed"
	case errors.Is(err, ErrChainRead):
		return "chain_read"
	case errors.Is(err, ErrMetadataResolution):
		return "metadata_resolution"
	default:
		return "internal"
	}
}
