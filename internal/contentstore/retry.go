package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

// RetryPolicy controls WithRetry. Retries == 0 disables retrying.
type RetryPolicy struct {
	Retries     int           // extra attempts after the first
	InitialWait time.Duration // wait before the first retry, doubled each time
	MaxWait     time.Duration // cap on the wait between retries
}

type retryingStore struct {
	next   Store
	policy RetryPolicy
	logger logger.Logger
}

// WithRetry wraps next so that ErrStoreUnavailable failures are retried with capped
// exponential backoff. Other errors, and context cancellation, return immediately.
func WithRetry(next Store, policy RetryPolicy, log logger.Logger) Store {
	if policy.Retries <= 0 {
		return next
	}
	if policy.InitialWait <= 0 {
		policy.InitialWait = time.Second
	}
	if policy.MaxWait < policy.InitialWait {
		policy.MaxWait = policy.InitialWait
	}
	return &retryingStore{next: next, policy: policy, logger: log.With(logger.Component("store-retry"))}
}

func (r *retryingStore) Store(ctx context.Context, payload []byte) (domain.ContentAddress, error) {
	wait := r.policy.InitialWait
	attempt := 0

	for {
		attempt++
		addr, err := r.next.Store(ctx, payload)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("upload succeeded after retry", logger.Int("attempts", attempt))
			}
			return addr, nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) || attempt > r.policy.Retries {
			return "", err
		}

		r.logger.Warn("upload failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", wait),
			logger.Error(err))
		metrics.StoreRetries.Inc()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, ctx.Err())
		case <-timer.C:
		}

		wait *= 2
		if wait > r.policy.MaxWait {
			wait = r.policy.MaxWait
		}
	}
}
