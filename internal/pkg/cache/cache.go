package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/engageportal/internal/pkg/reqseq"
)

// Cache memoizes upstream reads. Writes never patch entries; callers invalidate
// whole namespaces and the next read re-fetches.
type Cache struct {
	store  Store
	seq    *reqseq.Sequencer
	logger zerolog.Logger

	// held for reading while a fresh result is stored, for writing while a
	// namespace is invalidated
	mu sync.RWMutex
}

// New creates a Cache over store
func New(store Store, logger zerolog.Logger) *Cache {
	return &Cache{
		store:  store,
		seq:    reqseq.New(),
		logger: logger,
	}
}

// Fetch returns the cached value for key or loads, stores and returns it.
// Store failures degrade to a pass-through load. A loaded value is only stored
// when no newer load for the same key and no invalidation of its namespace
// happened in the meantime; the caller still receives it either way.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, loading from upstream")
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug().Str("key", key).Msg("Cache hit")
			return cached, nil
		}
		c.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	ticket := c.seq.Issue(key)
	accepted := false
	defer func() {
		if !accepted {
			c.seq.Release(ticket)
		}
	}()

	value, err := load(ctx)
	if err != nil {
		return zero, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode value for cache")
		return value, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.seq.Accept(ticket) {
		c.logger.Debug().Str("key", key).Uint64("seq", ticket.Seq).Msg("Discarding superseded result")
		return value, nil
	}
	accepted = true
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}

// Invalidate drops every entry of the given namespaces and marks in-flight loads
// for them as stale.
func (c *Cache) Invalidate(ctx context.Context, namespaces ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, ns := range namespaces {
		prefix := ns + ":"
		c.seq.Invalidate(prefix)

		removed, err := c.store.InvalidatePrefix(ctx, prefix)
		if err != nil {
			c.logger.Error().Err(err).Str("namespace", ns).Msg("Failed to invalidate cache namespace")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.logger.Debug().Str("namespace", ns).Int("removed", removed).Int("inFlight", c.seq.Outstanding()).Msg("Cache namespace invalidated")
	}
	return firstErr
}
