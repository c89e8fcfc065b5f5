package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/store"
)

// Action is what cleanup did with one processing list.
type Action string

const (
	ActionDeletedEmpty Action = "deleted_empty"
	ActionRecovered    Action = "recovered"
	ActionActive       Action = "active"
	ActionFailed       Action = "failed"
)

// CleanupEntry records the handling of one processing list.
type CleanupEntry struct {
	Key       string
	Pool      string
	Action    Action
	Items     int64
	TTL       time.Duration
	Recovered int
	Err       error
}

// CleanupResult lists per-key actions and the pools as they stand after
// cleanup.
type CleanupResult struct {
	Entries []CleanupEntry
	After   Report
}

// Count returns how many entries took action a.
func (r CleanupResult) Count(a Action) int {
	n := 0
	for _, e := range r.Entries {
		if e.Action == a {
			n++
		}
	}
	return n
}

type Cleaner struct {
	store  Store
	logger *zap.Logger
}

func NewCleaner(st Store, logger *zap.Logger) *Cleaner {
	return &Cleaner{store: st, logger: logger}
}

// Cleanup walks every processing list under the prefix. Empty lists are
// deleted, lists without an expiry are moved back into their pool, and
// lists with an active expiry are left alone. A failure on one key is
// recorded and the walk continues; only failing to list keys is an error.
func (c *Cleaner) Cleanup(ctx context.Context) (CleanupResult, error) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("cleanup: %w", err)
	}

	var res CleanupResult
	for _, k := range keys {
		if !k.Processing {
			continue
		}
		entry := c.handle(ctx, k)
		if entry.Action == "" {
			continue
		}
		res.Entries = append(res.Entries, entry)
	}

	after, err := Collect(ctx, c.store)
	if err != nil {
		return res, err
	}
	res.After = after
	return res, nil
}

func (c *Cleaner) handle(ctx context.Context, k store.Key) CleanupEntry {
	log := c.logger.With(zap.String("key", k.Raw), zap.String("pool", k.Pool))
	entry := CleanupEntry{Key: k.Raw, Pool: k.Pool}

	fail := func(err error) CleanupEntry {
		log.Warn("cleanup failed for key", zap.Error(err))
		entry.Action, entry.Err = ActionFailed, err
		return entry
	}

	n, err := c.store.Len(ctx, k.Raw)
	if errors.Is(err, domain.ErrNotAList) {
		log.Warn("skipping key that is not a processing list")
		return CleanupEntry{}
	}
	if err != nil {
		return fail(err)
	}
	entry.Items = n

	if n == 0 {
		if err := c.store.Delete(ctx, k.Raw); err != nil {
			return fail(err)
		}
		log.Info("deleted empty processing list")
		entry.Action = ActionDeletedEmpty
		return entry
	}

	ttl, err := c.store.TTL(ctx, k.Raw)
	if err != nil {
		return fail(err)
	}
	entry.TTL = ttl

	switch {
	case ttl == store.NoExpiry:
		moved, err := c.store.Recover(ctx, k)
		entry.Recovered = moved
		if err != nil {
			return fail(err)
		}
		log.Info("recovered stale claims", zap.Int("items", moved))
		entry.Action = ActionRecovered
	case ttl > 0:
		log.Info("active processing list left in place",
			zap.Int64("items", n), zap.Duration("ttl", ttl))
		entry.Action = ActionActive
	default:
		// Expired between the scan and now; nothing left to do.
		log.Debug("processing list vanished during cleanup")
	}
	return entry
}
