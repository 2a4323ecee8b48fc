package contentstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

// MetadataCache stores decoded documents by address. A miss returns (nil, nil).
type MetadataCache interface {
	GetMetadata(ctx context.Context, addr domain.ContentAddress) (*domain.Metadata, error)
	SaveMetadata(ctx context.Context, addr domain.ContentAddress, m domain.Metadata) error
}

// CachedFetcher collapses concurrent fetches of one address and remembers results.
// Content addresses are immutable, so cached documents never need invalidation.
type CachedFetcher struct {
	next   Fetcher
	cache  MetadataCache // nil disables caching
	group  singleflight.Group
	logger logger.Logger
}

func NewCachedFetcher(next Fetcher, cache MetadataCache, log logger.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		logger: log.With(logger.Component("metadata-cache")),
	}
}

func (f *CachedFetcher) FetchMetadata(ctx context.Context, addr domain.ContentAddress) (domain.Metadata, error) {
	if f.cache != nil {
		m, err := f.cache.GetMetadata(ctx, addr)
		switch {
		case err != nil:
			f.logger.Debug("metadata cache read failed", logger.String("addr", string(addr)), logger.Error(err))
		case m != nil:
			metrics.MetadataFetches.WithLabelValues("cache", "ok").Inc()
			return *m, nil
		}
	}

	// The shared call outlives any single caller; the gateway client bounds it.
	callCtx := context.WithoutCancel(ctx)
	v, err, _ := f.group.Do(string(addr), func() (any, error) {
		m, err := f.next.FetchMetadata(callCtx, addr)
		metrics.MetadataFetches.WithLabelValues("gateway", metrics.Result(err)).Inc()
		if err != nil {
			return domain.Metadata{}, err
		}
		if f.cache != nil {
			if err := f.cache.SaveMetadata(callCtx, addr, m); err != nil {
				f.logger.Warn("failed to cache metadata", logger.String("addr", string(addr)), logger.Error(err))
			}
		}
		return m, nil
	})
	if err != nil {
		return domain.Metadata{}, err
	}
	return v.(domain.Metadata), nil
}
