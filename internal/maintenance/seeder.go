package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/config"
)

// Provisioner creates one new item for a pool. *fallback.Generator
// satisfies it.
type Provisioner interface {
	Provision(ctx context.Context, p domain.Pool) (domain.TestUser, error)
}

// SeedOptions narrows a seeding run.
type SeedOptions struct {
	// Force fills pools even when they already hold their minimum.
	Force bool
	// Pools restricts the run to these pool names; empty means all targets.
	Pools []string
}

// SeedResult is the outcome for one pool.
type SeedResult struct {
	Pool    string
	Before  int64
	Wanted  int
	Added   int
	Failed  int
	Skipped bool
	After   int64
}

type Seeder struct {
	store       Store
	provisioner Provisioner
	targets     []config.SeedTarget
	concurrency int
	logger      *zap.Logger
}

func NewSeeder(st Store, p Provisioner, targets []config.SeedTarget, concurrency int, logger *zap.Logger) *Seeder {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Seeder{store: st, provisioner: p, targets: targets, concurrency: concurrency, logger: logger}
}

// Run tops up every selected pool. It fails fast with ErrStoreUnavailable
// when the store cannot be reached; individual provisioning failures are
// logged and counted but do not stop the batch.
func (s *Seeder) Run(ctx context.Context, opts SeedOptions) ([]SeedResult, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, err
	}

	targets, err := s.selectTargets(opts.Pools)
	if err != nil {
		return nil, err
	}

	results := make([]SeedResult, 0, len(targets))
	for _, t := range targets {
		res, err := s.seedPool(ctx, t, opts.Force)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Seeder) selectTargets(names []string) ([]config.SeedTarget, error) {
	if len(names) == 0 {
		return s.targets, nil
	}
	var out []config.SeedTarget
	for _, name := range names {
		found := false
		for _, t := range s.targets {
			if t.Pool == name {
				out = append(out, t)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("no seed target configured for pool %q", name)
		}
	}
	return out, nil
}

func (s *Seeder) seedPool(ctx context.Context, t config.SeedTarget, force bool) (SeedResult, error) {
	log := s.logger.With(zap.String("pool", t.Pool))
	res := SeedResult{Pool: t.Pool}

	p, ok := domain.LookupPool(t.Pool)
	if !ok {
		return res, fmt.Errorf("seed %s: %w", t.Pool, domain.ErrUnknownStrategy)
	}

	before, err := s.store.Stats(ctx, p.Name)
	if err != nil {
		return res, err
	}
	res.Before, res.After = before.Available, before.Available

	if !force && before.Available >= int64(t.Min) {
		log.Info("pool above threshold, skipping",
			zap.Int64("available", before.Available), zap.Int("min", t.Min))
		res.Skipped = true
		return res, nil
	}

	res.Wanted = t.Target - int(before.Available)
	if res.Wanted <= 0 {
		res.Wanted = 0
		res.Skipped = true
		return res, nil
	}

	users := s.provision(ctx, p, res.Wanted)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	res.Failed = res.Wanted - len(users)

	added, err := s.store.Seed(ctx, p.Name, users)
	if err != nil {
		return res, err
	}
	res.Added = added

	after, err := s.store.Stats(ctx, p.Name)
	if err != nil {
		return res, err
	}
	res.After = after.Available

	log.Info("pool seeded",
		zap.Int("added", res.Added), zap.Int("failed", res.Failed), zap.Int64("available", res.After))
	return res, nil
}

// provision creates up to n items in parallel and returns the ones that
// succeeded, in creation-slot order.
func (s *Seeder) provision(ctx context.Context, p domain.Pool, n int) []domain.TestUser {
	slots := make([]*domain.TestUser, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range n {
		g.Go(func() error {
			u, err := s.provisioner.Provision(gctx, p)
			if err != nil {
				s.logger.Warn("provisioning failed, continuing",
					zap.String("pool", p.Name), zap.Error(err))
				return nil
			}
			slots[i] = &u
			return nil
		})
	}
	_ = g.Wait()

	users := make([]domain.TestUser, 0, n)
	for _, u := range slots {
		if u != nil {
			users = append(users, *u)
		}
	}
	return users
}
