package contentstore

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/utils"
)

// maxDocumentBytes bounds the size of a metadata document read from the gateway.
const maxDocumentBytes = 1 << 20

// HTTPFetcher reads metadata documents through an IPFS gateway.
type HTTPFetcher struct {
	client   *http.Client
	resolver Resolver
}

// NewHTTPFetcher builds a fetcher whose every request is bounded by timeout.
func NewHTTPFetcher(resolver Resolver, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:   newGatewayClient(timeout),
		resolver: resolver,
	}
}

func newGatewayClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// FetchMetadata resolves addr, downloads it and decodes the metadata document.
func (f *HTTPFetcher) FetchMetadata(ctx context.Context, addr domain.ContentAddress) (domain.Metadata, error) {
	url := f.resolver.Resolve(string(addr))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: build request for %s: %w", domain.ErrMetadataResolution, addr, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: fetch %s: %w", domain.ErrMetadataResolution, url, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Metadata{}, fmt.Errorf("%w: fetch %s: status %d", domain.ErrMetadataResolution, url, resp.StatusCode)
	}

	var m domain.Metadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentBytes)).Decode(&m); err != nil {
		return domain.Metadata{}, fmt.Errorf("%w: decode %s: %w", domain.ErrMetadataResolution, url, err)
	}
	return m, nil
}
