package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/config"
)

// NoExpiry is the TTL Redis reports for a key that exists without an expiry.
const NoExpiry = time.Duration(-1)

// Options configures a Store. WorkerID defaults to NewWorkerID().
type Options struct {
	Prefix   string
	ClaimTTL time.Duration
	WorkerID string
}

// Store is the client for the shared ordered-list store. Every pool is a
// Redis list; claims live in a per-worker processing list per pool.
//
// The only cross-worker coordination is LMOVE in Acquire. Everything else
// is a plain, independent command.
type Store struct {
	rdb      redis.UniversalClient
	keys     Keyspace
	claimTTL time.Duration
	workerID string
	logger   *zap.Logger
}

// NewRedisClient builds the go-redis client from config. Retries, backoff
// and timeouts are owned by the client, not by the pool logic.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr(),
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisDB,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.OperationTimeout,
		WriteTimeout:    cfg.OperationTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
}

// New wraps an existing client.
func New(rdb redis.UniversalClient, opts Options, logger *zap.Logger) *Store {
	if opts.WorkerID == "" {
		opts.WorkerID = NewWorkerID()
	}
	if opts.Prefix == "" {
		opts.Prefix = "testdata"
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = 300 * time.Second
	}
	return &Store{
		rdb:      rdb,
		keys:     Keyspace{Prefix: opts.Prefix},
		claimTTL: opts.ClaimTTL,
		workerID: opts.WorkerID,
		logger:   logger.With(zap.String("worker_id", opts.WorkerID)),
	}
}

// NewFromConfig dials nothing; go-redis connects lazily on first command.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) *Store {
	return New(NewRedisClient(cfg), Options{
		Prefix:   cfg.KeyPrefix,
		ClaimTTL: cfg.ClaimTTL,
	}, logger)
}

func (s *Store) WorkerID() string   { return s.workerID }
func (s *Store) Keyspace() Keyspace { return s.keys }

// Acquire moves one item from the tail of the pool to the head of this
// worker's processing list and (re)arms the processing list's expiry.
// ok is false when the pool is empty.
func (s *Store) Acquire(ctx context.Context, pool string) (domain.TestUser, bool, error) {
	poolKey := s.keys.Pool(pool)
	procKey := s.keys.Processing(pool, s.workerID)

	raw, err := s.rdb.LMove(ctx, poolKey, procKey, "RIGHT", "LEFT").Result()
	if errors.Is(err, redis.Nil) {
		return domain.TestUser{}, false, nil
	}
	if err != nil {
		return domain.TestUser{}, false, fmt.Errorf("claim from %s: %w", poolKey, err)
	}

	if err := s.rdb.Expire(ctx, procKey, s.claimTTL).Err(); err != nil {
		// The claim stands; without a TTL the cleanup tool will hand it back.
		s.logger.Warn("could not set claim expiry",
			zap.String("key", procKey), zap.Error(err))
	}

	u, err := decode(raw)
	if err != nil {
		return domain.TestUser{}, false, err
	}
	return u, true, nil
}

// Release removes u from this worker's processing list and pushes it onto
// the head of the pool, so it is the next item handed out. An item that is
// not in the processing list (already released, consumed, or recovered by
// cleanup) is not pushed again; Release then returns ErrNotClaimed.
func (s *Store) Release(ctx context.Context, pool string, u domain.TestUser) error {
	raw, err := encode(u)
	if err != nil {
		return err
	}
	procKey := s.keys.Processing(pool, s.workerID)

	removed, err := s.rdb.LRem(ctx, procKey, 1, raw).Result()
	if err != nil {
		return fmt.Errorf("drop claim from %s: %w", procKey, err)
	}
	if removed == 0 {
		s.logger.Warn("release of unclaimed item skipped",
			zap.String("key", procKey), zap.String("email", u.Email))
		return fmt.Errorf("release %s to %s: %w", u.Email, pool, domain.ErrNotClaimed)
	}
	return s.push(ctx, pool, raw)
}

// Transfer drops u from this worker's claims on from, if present, and
// pushes it onto to. A consumed item holds no claim and is still pushed.
func (s *Store) Transfer(ctx context.Context, from, to string, u domain.TestUser) error {
	raw, err := encode(u)
	if err != nil {
		return err
	}
	procKey := s.keys.Processing(from, s.workerID)

	if err := s.rdb.LRem(ctx, procKey, 1, raw).Err(); err != nil {
		return fmt.Errorf("drop claim from %s: %w", procKey, err)
	}
	return s.push(ctx, to, raw)
}

func (s *Store) push(ctx context.Context, pool, raw string) error {
	poolKey := s.keys.Pool(pool)
	if err := s.rdb.LPush(ctx, poolKey, raw).Err(); err != nil {
		return fmt.Errorf("return item to %s: %w", poolKey, err)
	}
	return nil
}

// Consume pops from the pool tail with no claim tracking.
func (s *Store) Consume(ctx context.Context, pool string) (domain.TestUser, bool, error) {
	poolKey := s.keys.Pool(pool)
	raw, err := s.rdb.RPop(ctx, poolKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.TestUser{}, false, nil
	}
	if err != nil {
		return domain.TestUser{}, false, fmt.Errorf("consume from %s: %w", poolKey, err)
	}
	u, err := decode(raw)
	if err != nil {
		return domain.TestUser{}, false, err
	}
	return u, true, nil
}

// Seed pushes users onto the head of the pool and returns how many were
// inserted. Seeded items are claimed oldest-first.
func (s *Store) Seed(ctx context.Context, pool string, users []domain.TestUser) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	values := make([]any, 0, len(users))
	for _, u := range users {
		raw, err := encode(u)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", pool, err)
		}
		values = append(values, raw)
	}
	if err := s.rdb.LPush(ctx, s.keys.Pool(pool), values...).Err(); err != nil {
		return 0, fmt.Errorf("seed %s: %w", pool, err)
	}
	return len(values), nil
}

// Stats reports the pool length and this worker's processing length.
func (s *Store) Stats(ctx context.Context, pool string) (domain.PoolStats, error) {
	var available, processing *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		available = p.LLen(ctx, s.keys.Pool(pool))
		processing = p.LLen(ctx, s.keys.Processing(pool, s.workerID))
		return nil
	})
	if err != nil {
		return domain.PoolStats{}, fmt.Errorf("stats for %s: %w", pool, err)
	}
	return domain.PoolStats{Available: available.Val(), Processing: processing.Val()}, nil
}

// Clear deletes the pool and this worker's processing list for it.
func (s *Store) Clear(ctx context.Context, pool string) error {
	if err := s.rdb.Del(ctx, s.keys.Pool(pool), s.keys.Processing(pool, s.workerID)).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", pool, err)
	}
	return nil
}

// Ping returns ErrStoreUnavailable wrapping the transport error.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Available is a connectivity check that never fails.
func (s *Store) Available(ctx context.Context) bool {
	return s.Ping(ctx) == nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// ---- keyspace operations used by the maintenance tools ----

// Keys enumerates every key under the prefix with SCAN.
func (s *Store) Keys(ctx context.Context) ([]Key, error) {
	var keys []Key
	iter := s.rdb.Scan(ctx, 0, s.keys.Pattern(), 200).Iterator()
	for iter.Next(ctx) {
		if k, ok := s.keys.Parse(iter.Val()); ok {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.keys.Pattern(), err)
	}
	return keys, nil
}

// Len returns ErrNotAList for keys of another type.
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.LLen(ctx, key).Result()
	if isWrongType(err) {
		return 0, fmt.Errorf("llen %s: %w", key, domain.ErrNotAList)
	}
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", key, err)
	}
	return n, nil
}

func isWrongType(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr) && strings.HasPrefix(rerr.Error(), "WRONGTYPE")
}

// TTL returns NoExpiry for keys without an expiry.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("ttl %s: %w", key, err)
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Recover moves every item of a processing list back onto its pool, one
// LMOVE at a time, so an item is never in both lists or in neither.
func (s *Store) Recover(ctx context.Context, k Key) (int, error) {
	if !k.Processing {
		return 0, fmt.Errorf("recover %s: not a processing list", k.Raw)
	}
	poolKey := s.keys.Pool(k.Pool)
	moved := 0
	for {
		err := s.rdb.LMove(ctx, k.Raw, poolKey, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover %s: %w", k.Raw, err)
		}
		moved++
	}
}
