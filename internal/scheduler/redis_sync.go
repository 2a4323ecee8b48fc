package scheduler

import (
	"context"

	"github.com/Snehagupta1907/monad-journal/internal/index"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

// RedisSyncer warms the memory index from the last saved snapshot on startup
type RedisSyncer struct {
	store  SnapshotStore
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store SnapshotStore,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log.With(logger.Component("redis-sync")),
	}
}

// Sync loads the snapshot from Redis into an index no refresh has filled yet
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing entry snapshot from redis to memory")

	entries, err := rs.store.GetSnapshot(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		rs.logger.Info("no snapshot found in redis")
		return nil
	}

	if !rs.index.Seed(entries) {
		rs.logger.Debug("index already populated, snapshot ignored")
		return nil
	}

	rs.logger.Info("synced entries from redis",
		logger.Int("count", len(entries)))
	return nil
}
