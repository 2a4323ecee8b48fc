package contentstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

const sampleDocument = `{
  "name": "Day one",
  "description": "Shipped the indexer....",
  "image": "ipfs://bafkimage",
  "external_url": null,
  "attributes": [{"trait_type": "Date", "value": "2024-01-03"}, {"trait_type": "Todo Count", "value": 3}]
}`

func TestHTTPFetcherFetchMetadata(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/bafkgood":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDocument))
		case "/ipfs/bafkbroken":
			_, _ = w.Write([]byte("<html>not json"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	fetcher := NewHTTPFetcher(NewResolver("unused.example"), 2*time.Second)
	ctx := context.Background()

	m, err := fetcher.FetchMetadata(ctx, domain.ContentAddress(ts.URL+"/ipfs/bafkgood"))
	require.NoError(t, err)
	require.Equal(t, "Day one", m.Name)
	require.Nil(t, m.ExternalURL)
	require.Equal(t, "2024-01-03", m.EntryDate())
	require.Equal(t, 3, m.TodoStats().Total)

	_, err = fetcher.FetchMetadata(ctx, domain.ContentAddress(ts.URL+"/ipfs/bafkbroken"))
	require.ErrorIs(t, err, domain.ErrMetadataResolution)

	_, err = fetcher.FetchMetadata(ctx, domain.ContentAddress(ts.URL+"/ipfs/missing"))
	require.ErrorIs(t, err, domain.ErrMetadataResolution)
}

func TestHTTPFetcherRewritesIPFSAddresses(t *testing.T) {
	var gotPath atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer ts.Close()

	fetcher := NewHTTPFetcher(NewResolver("unused.example"), time.Second)
	// Point the resolver at the plain-http test server.
	fetcher.resolver = Resolver{base: ts.URL + "/ipfs/"}

	_, err := fetcher.FetchMetadata(context.Background(), "ipfs://bafkrewritten")
	require.NoError(t, err)
	require.Equal(t, "/ipfs/bafkrewritten", gotPath.Load())
}

type countingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (c *countingFetcher) FetchMetadata(context.Context, domain.ContentAddress) (domain.Metadata, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return domain.Metadata{}, c.err
	}
	return domain.Metadata{Name: "cached"}, nil
}

type mapCache struct {
	mu   sync.Mutex
	docs map[domain.ContentAddress]domain.Metadata
}

func (m *mapCache) GetMetadata(_ context.Context, addr domain.ContentAddress) (*domain.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[addr]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *mapCache) SaveMetadata(_ context.Context, addr domain.ContentAddress, doc domain.Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[addr] = doc
	return nil
}

func TestCachedFetcherCollapsesConcurrentCalls(t *testing.T) {
	inner := &countingFetcher{release: make(chan struct{})}
	fetcher := NewCachedFetcher(inner, nil, logger.New("error", false))

	const callers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			m, err := fetcher.FetchMetadata(context.Background(), "ipfs://bafkshared")
			assert.NoError(t, err)
			assert.Equal(t, "cached", m.Name)
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	require.Less(t, inner.calls.Load(), int32(callers), "concurrent fetches of one address share a call")
}

func TestCachedFetcherUsesCache(t *testing.T) {
	inner := &countingFetcher{}
	cache := &mapCache{docs: map[domain.ContentAddress]domain.Metadata{}}
	fetcher := NewCachedFetcher(inner, cache, logger.New("error", false))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := fetcher.FetchMetadata(ctx, "ipfs://bafkone")
		require.NoError(t, err)
		require.Equal(t, "cached", m.Name)
	}
	require.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedFetcherDoesNotCacheFailures(t *testing.T) {
	inner := &countingFetcher{err: domain.ErrMetadataResolution}
	cache := &mapCache{docs: map[domain.ContentAddress]domain.Metadata{}}
	fetcher := NewCachedFetcher(inner, cache, logger.New("error", false))

	_, err := fetcher.FetchMetadata(context.Background(), "ipfs://bafkbad")
	require.ErrorIs(t, err, domain.ErrMetadataResolution)
	require.Empty(t, cache.docs)
}
