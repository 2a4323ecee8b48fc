// Package eligibility gates minting on the registry's daily limit.
package eligibility

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Snehagupta1907/monad-journal/internal/chain"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

type State string

const (
	Disconnected State = "disconnected"
	Checking     State = "checking"
	Eligible     State = "eligible"
	Blocked      State = "blocked"
)

var allStates = []State{Disconnected, Checking, Eligible, Blocked}

// Reader is the registry read the guard depends on.
type Reader interface {
	CanMintToday(ctx context.Context, user common.Address) (bool, error)
}

// Snapshot is a point-in-time view of the guard.
type Snapshot struct {
	State     State     `json:"state"`
	Address   string    `json:"address,omitempty"`
	Busy      bool      `json:"busy"`
	CheckedAt time.Time `json:"checkedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Guard tracks the eligibility verdict for one wallet session and the in-flight mint flag.
// The busy flag is independent of the verdict: while it is held no check is issued.
type Guard struct {
	mu        sync.Mutex
	reader    Reader
	session   chain.WalletSession
	state     State
	busy      bool
	stale     bool   // session changed while busy
	gen       uint64 // bumped on every check and session change
	checkedAt time.Time
	lastErr   error
	now       func() time.Time
	logger    logger.Logger
}

func New(reader Reader, log logger.Logger) *Guard {
	g := &Guard{
		reader: reader,
		state:  Disconnected,
		now:    time.Now,
		logger: log.With(logger.Component("eligibility")),
	}
	g.publish(Disconnected)
	return g
}

// SetSession switches the active identity and re-evaluates eligibility.
func (g *Guard) SetSession(ctx context.Context, s chain.WalletSession) State {
	g.mu.Lock()
	g.session = s
	g.gen++
	if g.busy {
		g.stale = true
		st := g.state
		g.mu.Unlock()
		return st
	}
	g.mu.Unlock()
	return g.check(ctx)
}

// Recheck issues a fresh canMintToday read for the current session.
func (g *Guard) Recheck(ctx context.Context) State {
	return g.check(ctx)
}

func (g *Guard) check(ctx context.Context) State {
	g.mu.Lock()
	if !g.session.Connected {
		g.setStateLocked(Disconnected)
		g.lastErr = nil
		g.mu.Unlock()
		return Disconnected
	}
	if g.busy {
		st := g.state
		g.mu.Unlock()
		return st
	}
	g.gen++
	gen := g.gen
	addr := g.session.Address
	g.setStateLocked(Checking)
	g.mu.Unlock()

	ok, err := g.reader.CanMintToday(ctx, addr)

	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		g.logger.Debug("discarding superseded eligibility check", logger.String("address", addr.Hex()))
		return g.state
	}

	g.checkedAt = g.now()
	g.lastErr = err
	switch {
	case err != nil:
		g.logger.Warn("eligibility check failed, blocking mint",
			logger.String("address", addr.Hex()),
			logger.Error(err))
		g.setStateLocked(Blocked)
	case ok:
		g.setStateLocked(Eligible)
	default:
		g.setStateLocked(Blocked)
	}
	return g.state
}

// TryAcquire takes the busy flag. It fails unless the session is eligible and no mint is in flight.
func (g *Guard) TryAcquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.busy:
		return domain.ErrMintBusy
	case g.state == Disconnected:
		return domain.ErrNotConnected
	case g.state != Eligible:
		return domain.ErrNotEligible
	}
	g.busy = true
	return nil
}

// Release clears the busy flag. When recheck is true, or the session changed while busy,
// eligibility is read again so the next State reflects the registry.
func (g *Guard) Release(ctx context.Context, recheck bool) State {
	g.mu.Lock()
	g.busy = false
	if g.stale {
		g.stale = false
		recheck = true
	}
	st := g.state
	g.mu.Unlock()

	if !recheck {
		return st
	}
	return g.check(ctx)
}

// State returns the current verdict.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the active session.
func (g *Guard) Session() chain.WalletSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Snapshot returns the state, busy flag and last check details.
func (g *Guard) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		State:     g.state,
		Address:   g.session.Hex(),
		Busy:      g.busy,
		CheckedAt: g.checkedAt,
	}
	if g.lastErr != nil {
		s.Error = g.lastErr.Error()
	}
	return s
}

// CheckedAt returns the time of the last completed check.
func (g *Guard) CheckedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkedAt
}

func (g *Guard) setStateLocked(s State) {
	if g.state != s {
		g.logger.Debug("eligibility state changed",
			logger.String("from", string(g.state)),
			logger.String("to", string(s)))
	}
	g.state = s
	g.publish(s)
}

func (g *Guard) publish(current State) {
	for _, s := range allStates {
		v := 0.0
		if s == current {
			v = 1
		}
		metrics.EligibilityState.WithLabelValues(string(s)).Set(v)
	}
}
