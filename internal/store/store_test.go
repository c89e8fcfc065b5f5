package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/store"
)

const pool = "users:fresh"

func newStore(t *testing.T, mr *miniredis.Miniredis, worker string) *store.Store {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.New(rdb, store.Options{Prefix: "testdata", ClaimTTL: time.Minute, WorkerID: worker}, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func users(n int) []domain.TestUser {
	out := make([]domain.TestUser, n)
	for i := range out {
		out[i] = domain.TestUser{
			Email:     fmt.Sprintf("user%d@example.com", i),
			Password:  "pw",
			FirstName: "Test",
			LastName:  fmt.Sprintf("User%d", i),
		}
	}
	return out
}

func TestStore_AcquireEmptyPool(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")

	_, ok, err := s.Acquire(context.Background(), pool)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AcquireSetsClaimExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(1))
	require.NoError(t, err)

	u, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user0@example.com", u.Email)
	assert.Equal(t, domain.OriginStore, u.Origin)

	procKey := s.Keyspace().Processing(pool, "w1")
	assert.Equal(t, time.Minute, mr.TTL(procKey))
}

func TestStore_SeedThenConsumeIsFIFO(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()
	seeded := users(3)

	before, err := s.Stats(ctx, pool)
	require.NoError(t, err)

	n, err := s.Seed(ctx, pool, seeded)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	after, err := s.Stats(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, before.Available+3, after.Available)

	for _, want := range seeded {
		got, ok, err := s.Consume(ctx, pool)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want.Email, got.Email)
	}

	_, ok, err := s.Consume(ctx, pool)
	require.NoError(t, err)
	assert.False(t, ok)

	final, err := s.Stats(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, before, final)
}

func TestStore_SeedNothing(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")

	n, err := s.Seed(context.Background(), pool, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_SeedRejectsInvalidItems(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")

	_, err := s.Seed(context.Background(), pool, []domain.TestUser{{Email: "no-password@example.com"}})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)
}

func TestStore_ReleasedItemIsServedNext(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(3))
	require.NoError(t, err)

	claimed, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, pool, claimed))

	again, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, claimed.Same(again))
}

func TestStore_DoubleReleaseDoesNotDuplicate(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()
	alice := domain.TestUser{Email: "alice@example.com", Password: "pw"}

	_, err := s.Seed(ctx, pool, []domain.TestUser{alice})
	require.NoError(t, err)
	u, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, pool, u))
	assert.ErrorIs(t, s.Release(ctx, pool, u), domain.ErrNotClaimed)

	first, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice.Email, first.Email)

	_, ok, err = s.Acquire(ctx, pool)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReleaseOfConsumedItemIsRejected(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(1))
	require.NoError(t, err)
	u, ok, err := s.Consume(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, s.Release(ctx, pool, u), domain.ErrNotClaimed)
	st, err := s.Stats(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, domain.PoolStats{}, st)
}

func TestStore_AcquireReleaseConservesTotal(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(3))
	require.NoError(t, err)

	stats := func() domain.PoolStats {
		st, err := s.Stats(ctx, pool)
		require.NoError(t, err)
		return st
	}
	assert.Equal(t, domain.PoolStats{Available: 3}, stats())

	first, _, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	_, _, err = s.Acquire(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, domain.PoolStats{Available: 1, Processing: 2}, stats())

	require.NoError(t, s.Release(ctx, pool, first))
	assert.Equal(t, domain.PoolStats{Available: 2, Processing: 1}, stats())
	assert.EqualValues(t, 3, stats().Total())
}

func TestStore_ConcurrentAcquireNeverDoubleClaims(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	const items = 40
	const workers = 8
	_, err := newStore(t, mr, "seeder").Seed(ctx, pool, users(items))
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = map[string]string{}
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		s := newStore(t, mr, fmt.Sprintf("w%d", w))
		wg.Add(1)
		go func(worker string) {
			defer wg.Done()
			for {
				u, ok, err := s.Acquire(ctx, pool)
				if err != nil || !ok {
					return
				}
				mu.Lock()
				if prev, dup := seen[u.Email]; dup {
					t.Errorf("%s claimed by %s and %s", u.Email, prev, worker)
				}
				seen[u.Email] = worker
				mu.Unlock()
			}
		}(s.WorkerID())
	}
	wg.Wait()

	assert.Len(t, seen, items)
}

func TestStore_TransferMovesClaimToOtherPool(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()
	const registered = "users:registered"

	_, err := s.Seed(ctx, pool, users(1))
	require.NoError(t, err)
	u, ok, err := s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Transfer(ctx, pool, registered, u))

	from, err := s.Stats(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, domain.PoolStats{}, from)

	to, err := s.Stats(ctx, registered)
	require.NoError(t, err)
	assert.EqualValues(t, 1, to.Available)
}

func TestStore_TransferOfConsumedItem(t *testing.T) {
	s := newStore(t, miniredis.RunT(t), "w1")
	ctx := context.Background()
	const registered = "users:registered"

	_, err := s.Seed(ctx, pool, users(1))
	require.NoError(t, err)
	u, ok, err := s.Consume(ctx, pool)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Transfer(ctx, pool, registered, u))
	to, err := s.Stats(ctx, registered)
	require.NoError(t, err)
	assert.EqualValues(t, 1, to.Available)
}

func TestStore_ExpiredClaimListDisappears(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(1))
	require.NoError(t, err)
	_, _, err = s.Acquire(ctx, pool)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	st, err := s.Stats(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, domain.PoolStats{}, st)
}

func TestStore_Clear(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(2))
	require.NoError(t, err)
	_, _, err = s.Acquire(ctx, pool)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, pool))
	assert.Empty(t, mr.Keys())
}

func TestStore_AvailableReflectsConnectivity(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	assert.True(t, s.Available(ctx))

	mr.Close()
	assert.False(t, s.Available(ctx))
	assert.ErrorIs(t, s.Ping(ctx), domain.ErrStoreUnavailable)
}

func TestStore_KeysAndRecover(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	_, err := s.Seed(ctx, pool, users(3))
	require.NoError(t, err)
	_, _, err = s.Acquire(ctx, pool)
	require.NoError(t, err)
	_, _, err = s.Acquire(ctx, pool)
	require.NoError(t, err)
	require.NoError(t, mr.Set("unrelated", "x"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	var proc store.Key
	for _, k := range keys {
		assert.Equal(t, pool, k.Pool)
		if k.Processing {
			proc = k
		}
	}
	require.True(t, proc.Processing)
	assert.Equal(t, "w1", proc.Worker)

	moved, err := s.Recover(ctx, proc)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	n, err := s.Len(ctx, s.Keyspace().Pool(pool))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.False(t, mr.Exists(proc.Raw))
}

func TestStore_TTLReportsNoExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	ctx := context.Background()

	key := s.Keyspace().Processing(pool, "crashed")
	_, err := mr.Lpush(key, `{"email":"x@example.com","password":"pw"}`)
	require.NoError(t, err)

	ttl, err := s.TTL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, store.NoExpiry, ttl)
}

func TestStore_LenOfNonListKey(t *testing.T) {
	mr := miniredis.RunT(t)
	s := newStore(t, mr, "w1")
	require.NoError(t, mr.Set("testdata:settings", "x"))

	_, err := s.Len(context.Background(), "testdata:settings")
	assert.ErrorIs(t, err, domain.ErrNotAList)
}
