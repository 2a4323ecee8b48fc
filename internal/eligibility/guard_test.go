package eligibility

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Snehagupta1907/monad-journal/internal/chain"
	"github.com/Snehagupta1907/monad-journal/internal/chain/chaintest"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type stubReader struct {
	mu    sync.Mutex
	ok    bool
	err   error
	calls int
}

func (s *stubReader) CanMintToday(context.Context, common.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.ok, s.err
}

func connected(addr string) chain.WalletSession {
	return chain.WalletSession{Address: common.HexToAddress(addr), Connected: true}
}

func TestGuardStates(t *testing.T) {
	tests := []struct {
		name    string
		session chain.WalletSession
		ok      bool
		err     error
		want    State
		acquire error
	}{
		{name: "disconnected", session: chain.Disconnected(), want: Disconnected, acquire: domain.ErrNotConnected},
		{name: "eligible", session: connected("0x01"), ok: true, want: Eligible},
		{name: "already minted today", session: connected("0x01"), ok: false, want: Blocked, acquire: domain.ErrNotEligible},
		{name: "read failure fails closed", session: connected("0x01"), ok: true, err: errors.New("rpc down"), want: Blocked, acquire: domain.ErrNotEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &stubReader{ok: tt.ok, err: tt.err}
			g := New(r, logger.New("error", false))

			got := g.SetSession(context.Background(), tt.session)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want, g.State())

			err := g.TryAcquire()
			if tt.acquire == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.acquire)
			}
		})
	}
}

func TestGuardSnapshotCarriesReadError(t *testing.T) {
	g := New(&stubReader{err: errors.New("rpc down")}, logger.New("error", false))
	g.SetSession(context.Background(), connected("0x01"))

	snap := g.Snapshot()
	require.Equal(t, Blocked, snap.State)
	require.Equal(t, "rpc down", snap.Error)
	require.False(t, snap.CheckedAt.IsZero())
}

func TestGuardSingleInFlightMint(t *testing.T) {
	r := &stubReader{ok: true}
	g := New(r, logger.New("error", false))
	g.SetSession(context.Background(), connected("0x01"))

	require.NoError(t, g.TryAcquire())
	require.ErrorIs(t, g.TryAcquire(), domain.ErrMintBusy)

	// No check is issued while a mint is in flight.
	calls := r.calls
	g.Recheck(context.Background())
	require.Equal(t, calls, r.calls)
	require.True(t, g.Snapshot().Busy)

	g.Release(context.Background(), false)
	require.False(t, g.Snapshot().Busy)
	require.NoError(t, g.TryAcquire())
}

func TestGuardConcurrentAcquire(t *testing.T) {
	g := New(&stubReader{ok: true}, logger.New("error", false))
	g.SetSession(context.Background(), connected("0x01"))

	const callers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

type blockingReader struct {
	started chan struct{}
	release chan struct{}
	ok      bool
}

func (b *blockingReader) CanMintToday(ctx context.Context, _ common.Address) (bool, error) {
	b.started <- struct{}{}
	<-b.release
	return b.ok, nil
}

func TestGuardDiscardsSupersededCheck(t *testing.T) {
	r := &blockingReader{started: make(chan struct{}), release: make(chan struct{})}
	g := New(r, logger.New("error", false))

	done := make(chan State)
	go func() {
		// The first session would be eligible if its result were applied.
		r.ok = true
		done <- g.SetSession(context.Background(), connected("0x01"))
	}()
	<-r.started

	// Identity changes to a disconnected session while the read is in flight.
	require.Equal(t, Disconnected, g.SetSession(context.Background(), chain.Disconnected()))

	close(r.release)
	<-done
	require.Equal(t, Disconnected, g.State())
	require.ErrorIs(t, g.TryAcquire(), domain.ErrNotConnected)
}

func TestGuardSessionChangeWhileBusyRechecksOnRelease(t *testing.T) {
	r := &stubReader{ok: true}
	g := New(r, logger.New("error", false))
	g.SetSession(context.Background(), connected("0x01"))
	require.NoError(t, g.TryAcquire())

	r.mu.Lock()
	r.ok = false
	r.mu.Unlock()
	g.SetSession(context.Background(), connected("0x02"))
	require.Equal(t, Eligible, g.State(), "verdict is frozen while busy")

	require.Equal(t, Blocked, g.Release(context.Background(), false))
}

// After a confirmed mint the guard re-reads the registry on its own.
func TestGuardRoundTripWithRegistry(t *testing.T) {
	chainID := big.NewInt(10143)
	reg, err := chaintest.NewRegistry(chain.RegistryABI(), chainID)
	require.NoError(t, err)
	gw, err := chain.New(chaintest.Address, reg, logger.New("error", false))
	require.NoError(t, err)
	opts, err := chaintest.NewTransactor(chainID)
	require.NoError(t, err)
	session := chain.SessionFromTransactor(opts)

	ctx := context.Background()
	g := New(gw, logger.New("error", false))
	require.Equal(t, Eligible, g.SetSession(ctx, session))

	require.NoError(t, g.TryAcquire())
	_, err = gw.CreateJournalEntry(ctx, session, "ipfs://bafkentry")
	require.NoError(t, err)

	require.Equal(t, Blocked, g.Release(ctx, true))
	require.ErrorIs(t, g.TryAcquire(), domain.ErrNotEligible)

	reg.NewDay()
	require.Equal(t, Eligible, g.Recheck(ctx))
}
