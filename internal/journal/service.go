// Package journal runs the authoring session: prepare a draft into stored metadata, then mint it.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Snehagupta1907/monad-journal/internal/chain"
	"github.com/Snehagupta1907/monad-journal/internal/contentstore"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metadata"
)

const DefaultMaxImageBytes = 5 << 20

// Registrar submits a content address to the registry.
type Registrar interface {
	CreateJournalEntry(ctx context.Context, session chain.WalletSession, uri domain.ContentAddress) (domain.MintResult, error)
}

// Guard serialises mints and gates them on eligibility.
type Guard interface {
	Session() chain.WalletSession
	TryAcquire() error
	Release(ctx context.Context, recheck bool) eligibility.State
}

// Refresher is poked after a confirmed mint.
type Refresher interface {
	Trigger() bool
}

// Prepared is a draft whose metadata document has been stored.
type Prepared struct {
	AttemptID    string                `json:"attemptId"`
	Address      domain.ContentAddress `json:"address"`
	ImageAddress domain.ContentAddress `json:"imageAddress,omitempty"`
	Metadata     domain.Metadata       `json:"metadata"`
	PreparedAt   time.Time             `json:"preparedAt"`
}

type Options struct {
	MaxImageBytes       int
	DefaultPortfolioURL string
}

type Service struct {
	store     contentstore.Store
	assembler *metadata.Assembler
	registrar Registrar
	guard     Guard
	refresher Refresher // optional
	opts      Options
	now       func() time.Time
	logger    logger.Logger

	mu      sync.Mutex
	pending *Prepared
}

func NewService(
	store contentstore.Store,
	assembler *metadata.Assembler,
	registrar Registrar,
	guard Guard,
	refresher Refresher,
	opts Options,
	log logger.Logger,
) *Service {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	return &Service{
		store:     store,
		assembler: assembler,
		registrar: registrar,
		guard:     guard,
		refresher: refresher,
		opts:      opts,
		now:       time.Now,
		logger:    log.With(logger.Component("journal")),
	}
}

// Session returns the wallet session minting runs under.
func (s *Service) Session() chain.WalletSession {
	return s.guard.Session()
}

// Pending returns the prepared draft waiting to be minted, if any.
func (s *Service) Pending() (Prepared, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Prepared{}, false
	}
	return *s.pending, true
}

// Reset drops the pending draft.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Prepare validates draft, uploads image when present, then stores the metadata document.
// Nothing is uploaded for an invalid draft; an image upload failure aborts before the document is stored.
func (s *Service) Prepare(ctx context.Context, draft domain.DraftEntry, image []byte) (Prepared, error) {
	attempt := uuid.NewString()
	log := s.logger.With(logger.String("attempt_id", attempt))

	draft = s.withDefaults(draft)
	if err := metadata.Validate(draft); err != nil {
		return Prepared{}, err
	}
	if len(image) > s.opts.MaxImageBytes {
		return Prepared{}, fmt.Errorf("%w: image is %d bytes, limit is %d", domain.ErrValidation, len(image), s.opts.MaxImageBytes)
	}

	var imageAddr domain.ContentAddress
	if len(image) > 0 {
		addr, err := s.store.Store(ctx, image)
		if err != nil {
			log.Warn("image upload failed", logger.Error(err))
			return Prepared{}, fmt.Errorf("upload image: %w", err)
		}
		imageAddr = addr
		log.Debug("image stored", logger.String("address", addr.String()))
	}

	doc, err := s.assembler.Assemble(draft, imageAddr)
	if err != nil {
		return Prepared{}, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return Prepared{}, fmt.Errorf("marshal metadata: %w", err)
	}

	addr, err := s.store.Store(ctx, payload)
	if err != nil {
		log.Warn("metadata upload failed", logger.Error(err))
		return Prepared{}, fmt.Errorf("upload metadata: %w", err)
	}

	p := Prepared{
		AttemptID:    attempt,
		Address:      addr,
		ImageAddress: imageAddr,
		Metadata:     doc,
		PreparedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	s.pending = &p
	s.mu.Unlock()

	log.Info("draft prepared",
		logger.String("address", addr.String()),
		logger.Bool("has_image", imageAddr != ""))
	return p, nil
}

func (s *Service) withDefaults(d domain.DraftEntry) domain.DraftEntry {
	now := s.now()
	if d.Date == "" {
		d.Date = now.UTC().Format(time.DateOnly)
	}
	if d.Timestamp == 0 {
		d.Timestamp = now.UnixMilli()
	}
	if d.Author == "" {
		d.Author = s.guard.Session().Hex()
	}
	if d.PortfolioURL == "" {
		d.PortfolioURL = s.opts.DefaultPortfolioURL
	}
	return d
}

// Mint registers addr, or the pending draft when addr is empty.
// At most one mint runs at a time; a second caller gets domain.ErrMintBusy and nothing is sent.
func (s *Service) Mint(ctx context.Context, addr domain.ContentAddress) (domain.MintResult, error) {
	if addr == "" {
		p, ok := s.Pending()
		if !ok {
			return domain.MintResult{}, fmt.Errorf("%w: nothing prepared to mint", domain.ErrValidation)
		}
		addr = p.Address
	}

	session := s.guard.Session()
	if !session.Connected {
		return domain.MintResult{}, domain.ErrNotConnected
	}

	if err := s.guard.TryAcquire(); err != nil {
		return domain.MintResult{}, err
	}

	// A submitted transaction is awaited even if the caller goes away.
	mintCtx := context.WithoutCancel(ctx)
	log := s.logger.With(logger.String("address", addr.String()), logger.String("from", session.Hex()))

	res, err := s.registrar.CreateJournalEntry(mintCtx, session, addr)

	var me *domain.MintError
	submitted := err == nil || (errors.As(err, &me) && me.Submitted)
	state := s.guard.Release(mintCtx, submitted)

	if err != nil {
		log.Warn("mint failed",
			logger.String("kind", domain.Kind(err)),
			logger.Bool("submitted", submitted),
			logger.Error(err))
		return domain.MintResult{}, err
	}

	s.mu.Lock()
	if s.pending != nil && s.pending.Address == addr {
		s.pending = nil
	}
	s.mu.Unlock()

	if s.refresher != nil && !s.refresher.Trigger() {
		log.Debug("refresh already queued")
	}

	log.Info("entry minted",
		logger.String("tx", res.TxHash),
		logger.Uint64("block", res.BlockNumber),
		logger.String("eligibility", string(state)))
	return res, nil
}
