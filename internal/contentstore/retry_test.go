package contentstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type scriptedStore struct {
	errs  []error
	calls int
}

func (s *scriptedStore) Store(context.Context, []byte) (domain.ContentAddress, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return "", s.errs[s.calls-1]
	}
	return "ipfs://bafkok", nil
}

func unavailable() error { return fmt.Errorf("%w: boom", domain.ErrStoreUnavailable) }

func TestWithRetryDisabledReturnsSameStore(t *testing.T) {
	inner := &scriptedStore{}
	require.Same(t, inner, WithRetry(inner, RetryPolicy{}, logger.New("error", false)))
}

func TestWithRetryRecovers(t *testing.T) {
	inner := &scriptedStore{errs: []error{unavailable(), unavailable()}}
	store := WithRetry(inner, RetryPolicy{Retries: 2, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}, logger.New("error", false))

	addr, err := store.Store(context.Background(), []byte("x"))
	require.NoError(t, err)
	require.Equal(t, domain.ContentAddress("ipfs://bafkok"), addr)
	require.Equal(t, 3, inner.calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	inner := &scriptedStore{errs: []error{unavailable(), unavailable(), unavailable()}}
	store := WithRetry(inner, RetryPolicy{Retries: 1, InitialWait: time.Millisecond}, logger.New("error", false))

	_, err := store.Store(context.Background(), []byte("x"))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.Equal(t, 2, inner.calls)
}

func TestWithRetrySkipsNonTransportErrors(t *testing.T) {
	inner := &scriptedStore{errs: []error{fmt.Errorf("%w: empty payload", domain.ErrValidation)}}
	store := WithRetry(inner, RetryPolicy{Retries: 3, InitialWait: time.Millisecond}, logger.New("error", false))

	_, err := store.Store(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Equal(t, 1, inner.calls)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	inner := &scriptedStore{errs: []error{unavailable(), unavailable()}}
	store := WithRetry(inner, RetryPolicy{Retries: 5, InitialWait: time.Hour}, logger.New("error", false))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := store.Store(ctx, []byte("x"))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 1, inner.calls)
}
