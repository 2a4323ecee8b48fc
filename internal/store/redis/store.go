package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

const (
	// DefaultMetadataTTL bounds how long a resolved document is kept; content addresses never change.
	DefaultMetadataTTL = 7 * 24 * time.Hour
	// DefaultSnapshotTTL is how long a view snapshot stays usable for a warm start
	DefaultSnapshotTTL = 48 * time.Hour
)

// Store handles Redis operations for metadata and view snapshots
type Store struct {
	client redis.Cmdable
}

// NewStore creates a new Redis store
func NewStore(client redis.Cmdable) *Store {
	return &Store{
		client: client,
	}
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveMetadata caches the document resolved from addr
func (s *Store) SaveMetadata(ctx context.Context, addr domain.ContentAddress, doc domain.Metadata) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := s.client.Set(ctx, MetadataKey(addr), data, DefaultMetadataTTL).Err(); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// GetMetadata returns the cached document for addr, or nil on a miss
func (s *Store) GetMetadata(ctx context.Context, addr domain.ContentAddress) (*domain.Metadata, error) {
	data, err := s.client.Get(ctx, MetadataKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var doc domain.Metadata
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &doc, nil
}

// SaveSnapshot stores the aggregated view for the next warm start
func (s *Store) SaveSnapshot(ctx context.Context, entries []domain.AggregatedEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, KeyViewSnapshot, data, DefaultSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the stored view, or nil when there is none
func (s *Store) GetSnapshot(ctx context.Context) ([]domain.AggregatedEntry, error) {
	data, err := s.client.Get(ctx, KeyViewSnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var entries []domain.AggregatedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return entries, nil
}
