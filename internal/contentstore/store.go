// Package contentstore uploads opaque payloads to IPFS and resolves content addresses back to bytes.
package contentstore

import (
	"context"
	"strings"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

// Scheme is the prefix of every address returned by a Store.
const Scheme = "ipfs://"

// DefaultGateway is the gateway host used when none is configured.
const DefaultGateway = "ipfs.filebase.io"

// Store persists a payload and returns its content address.
// A failed call returns no address and wraps domain.ErrStoreUnavailable.
type Store interface {
	Store(ctx context.Context, payload []byte) (domain.ContentAddress, error)
}

// Fetcher loads the metadata document stored at an address.
// Every failure wraps domain.ErrMetadataResolution.
type Fetcher interface {
	FetchMetadata(ctx context.Context, addr domain.ContentAddress) (domain.Metadata, error)
}

// Resolver rewrites content addresses into gateway URLs.
type Resolver struct {
	base string // https://<host>/ipfs/
}

// NewResolver accepts a bare host ("ipfs.io") or a URL ("https://ipfs.io/").
func NewResolver(gateway string) Resolver {
	host := strings.TrimSpace(gateway)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	host = strings.TrimSuffix(host, "/ipfs")
	if host == "" {
		host = DefaultGateway
	}
	return Resolver{base: "https://" + host + "/ipfs/"}
}

// Resolve returns addr as a fetchable URL. Addresses without the ipfs scheme pass through unchanged.
func (r Resolver) Resolve(addr string) string {
	if !strings.HasPrefix(addr, Scheme) {
		return addr
	}
	return r.base + strings.TrimPrefix(addr, Scheme)
}

// Gateway returns the URL prefix used for rewritten addresses.
func (r Resolver) Gateway() string { return r.base }
