// Package maintenance holds the out-of-band tools that operate on the
// store directly, bypassing the hybrid provider: seeding, status
// reporting and stale-claim cleanup.
package maintenance

import (
	"context"
	"time"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/store"
)

// Store is the subset of *store.Store the maintenance tools use.
type Store interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context, pool string) (domain.PoolStats, error)
	Seed(ctx context.Context, pool string, users []domain.TestUser) (int, error)
	Keys(ctx context.Context) ([]store.Key, error)
	Len(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, key string) error
	Recover(ctx context.Context, k store.Key) (int, error)
}

var _ Store = (*store.Store)(nil)
