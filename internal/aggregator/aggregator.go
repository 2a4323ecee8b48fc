// Package aggregator joins registry records with their metadata documents for display.
package aggregator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Snehagupta1907/monad-journal/internal/contentstore"
	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

const DefaultConcurrency = 8

// ErrEntryNotFound is returned by Entry for an unknown token id.
var ErrEntryNotFound = errors.New("entry not found")

// Reader is the subset of the registry the aggregator reads.
type Reader interface {
	AllEntries(ctx context.Context) ([]domain.Record, error)
	TokenURI(ctx context.Context, tokenID uint64) (domain.ContentAddress, error)
}

type Aggregator struct {
	reader      Reader
	fetcher     contentstore.Fetcher
	resolver    contentstore.Resolver
	concurrency int
	now         func() time.Time
	logger      logger.Logger
}

func New(reader Reader, fetcher contentstore.Fetcher, resolver contentstore.Resolver, concurrency int, log logger.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{
		reader:      reader,
		fetcher:     fetcher,
		resolver:    resolver,
		concurrency: concurrency,
		now:         time.Now,
		logger:      log.With(logger.Component("aggregator")),
	}
}

// Aggregate reads every record and resolves its metadata. Only the record listing can fail the pass;
// a record whose metadata cannot be resolved is returned as a fallback entry.
// The result is ordered by date descending, then token id descending.
func (a *Aggregator) Aggregate(ctx context.Context) ([]domain.AggregatedEntry, error) {
	start := a.now()
	defer func() { metrics.AggregationDuration.Observe(time.Since(start).Seconds()) }()

	records, err := a.reader.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	fetchedAt := start.UTC()
	out := make([]domain.AggregatedEntry, len(records))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			out[i] = a.resolve(ctx, rec, fetchedAt)
			return nil
		})
	}
	_ = g.Wait()

	Sort(out)

	resolved := 0
	for _, e := range out {
		if e.Resolved {
			resolved++
		}
	}
	metrics.AggregatedEntries.WithLabelValues("true").Set(float64(resolved))
	metrics.AggregatedEntries.WithLabelValues("false").Set(float64(len(out) - resolved))

	a.logger.Debug("aggregation pass complete",
		logger.Int("entries", len(out)),
		logger.Int("unresolved", len(out)-resolved),
		logger.Duration("took", time.Since(start)))

	return out, nil
}

// Entry resolves a single record by token id.
func (a *Aggregator) Entry(ctx context.Context, tokenID uint64) (domain.AggregatedEntry, error) {
	records, err := a.reader.AllEntries(ctx)
	if err != nil {
		return domain.AggregatedEntry{}, err
	}
	for _, rec := range records {
		if rec.TokenID == tokenID {
			return a.resolve(ctx, rec, a.now().UTC()), nil
		}
	}
	return domain.AggregatedEntry{}, fmt.Errorf("%w: %d", ErrEntryNotFound, tokenID)
}

func (a *Aggregator) resolve(ctx context.Context, rec domain.Record, fetchedAt time.Time) domain.AggregatedEntry {
	uri := rec.TokenURI
	if uri == "" {
		var err error
		uri, err = a.reader.TokenURI(ctx, rec.TokenID)
		if err != nil {
			a.logger.Warn("token uri lookup failed",
				logger.Uint64("token_id", rec.TokenID),
				logger.Error(err))
			return Fallback(rec, fetchedAt)
		}
		rec.TokenURI = uri
	}

	doc, err := a.fetcher.FetchMetadata(ctx, uri)
	if err != nil {
		a.logger.Warn("metadata resolution failed",
			logger.Uint64("token_id", rec.TokenID),
			logger.String("uri", string(uri)),
			logger.Error(err))
		return Fallback(rec, fetchedAt)
	}
	return a.project(rec, doc, fetchedAt)
}

func (a *Aggregator) project(rec domain.Record, doc domain.Metadata, fetchedAt time.Time) domain.AggregatedEntry {
	e := base(rec, fetchedAt)
	e.Resolved = true
	e.Content = doc.Description
	if doc.Name != "" {
		e.Title = doc.Name
	}
	if doc.Image != "" {
		e.Image = a.resolver.Resolve(doc.Image)
		e.HasImage = true
	}
	if doc.ExternalURL != nil && *doc.ExternalURL != "" {
		e.ExternalURL = a.resolver.Resolve(*doc.ExternalURL)
		e.HasExternalLink = true
	}
	if d, ok := domain.ParseEntryDate(doc.EntryDate()); ok {
		e.Date = d
		e.DisplayDate = domain.FormatDate(d)
	}
	e.Todos = doc.TodoStats()
	return e
}

// Fallback is the entry shown when a record's metadata cannot be resolved.
func Fallback(rec domain.Record, fetchedAt time.Time) domain.AggregatedEntry {
	return base(rec, fetchedAt)
}

func base(rec domain.Record, fetchedAt time.Time) domain.AggregatedEntry {
	return domain.AggregatedEntry{
		TokenID:     rec.TokenID,
		Minter:      rec.Minter,
		ShortMinter: domain.ShortAddress(rec.Minter),
		TokenURI:    rec.TokenURI,
		Title:       "Journal Entry #" + strconv.FormatUint(rec.TokenID, 10),
		Date:        fetchedAt,
		DisplayDate: domain.FormatDate(fetchedAt),
	}
}

// Sort orders entries newest first; equal dates put the higher token id first.
func Sort(entries []domain.AggregatedEntry) {
	slices.SortStableFunc(entries, func(x, y domain.AggregatedEntry) int {
		if c := y.Date.Compare(x.Date); c != 0 {
			return c
		}
		return cmp.Compare(y.TokenID, x.TokenID)
	})
}

// FilterByMinter keeps the entries minted by addr, compared case-insensitively.
func FilterByMinter(entries []domain.AggregatedEntry, addr string) []domain.AggregatedEntry {
	out := make([]domain.AggregatedEntry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.Minter, strings.TrimSpace(addr)) {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarises the todo counters over entries.
type Stats struct {
	Entries        int `json:"entries"`
	TotalTodos     int `json:"totalTodos"`
	CompletedTodos int `json:"completedTodos"`
	CompletionRate int `json:"completionRate"` // percent, rounded down
}

func Summarize(entries []domain.AggregatedEntry) Stats {
	s := Stats{Entries: len(entries)}
	for _, e := range entries {
		s.TotalTodos += e.Todos.Total
		s.CompletedTodos += e.Todos.Completed
	}
	if s.TotalTodos > 0 {
		s.CompletionRate = s.CompletedTodos * 100 / s.TotalTodos
	}
	return s
}
