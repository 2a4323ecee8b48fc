package deps

import (
	"context"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/chain"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/index"
	"github.com/Snehagupta1907/monad-journal/internal/journal"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

// Journal is the authoring pipeline behind /api/drafts and /api/mint.
type Journal interface {
	Prepare(ctx context.Context, draft domain.DraftEntry, image []byte) (journal.Prepared, error)
	Mint(ctx context.Context, addr domain.ContentAddress) (domain.MintResult, error)
	Pending() (journal.Prepared, bool)
	Reset()
	Session() chain.WalletSession
}

// Registry is the read surface used by stats and readiness.
type Registry interface {
	TotalEntries(ctx context.Context) (uint64, error)
	HeadBlock(ctx context.Context) (uint64, error)
}

// EntryResolver resolves a single entry straight from the registry.
type EntryResolver interface {
	Entry(ctx context.Context, tokenID uint64) (domain.AggregatedEntry, error)
}

type Eligibility interface {
	Snapshot() eligibility.Snapshot
}

type Refresher interface {
	Trigger() bool
}

// Pinger reports whether an optional backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time   // for testing, defaults to time.Now
	AllowedHosts  []string           // Host headers allowed on write endpoints
	AllowedCIDRS  []string           // IPs allowed to access /metrics, /infra and /readyz
	TrustProxy    bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	WriteBurst    int                // per-IP burst on draft and mint endpoints
	WriteRefill   int                // per-IP refill per minute on draft and mint endpoints
	MaxImageBytes int                // decoded image limit on POST /api/drafts
	Index         *index.MemoryIndex // last applied entry view
	Entries       EntryResolver      // on-demand single entry lookup
	Registry      Registry           // registry reads
	Guard         Eligibility        // mint eligibility for the session wallet
	Journal       Journal            // draft and mint pipeline
	Refresher     Refresher          // manual refresh trigger
	Redis         Pinger             // nil when Redis is disabled
	RegistryAddr  string             // registry contract address
	Gateway       string             // IPFS gateway base URL
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
