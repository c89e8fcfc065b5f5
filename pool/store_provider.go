package pool

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/store"
)

// StoreProvider adapts *store.Store to Provider, absorbing store errors.
type StoreProvider struct {
	store  *store.Store
	logger *zap.Logger
	hooks  MetricHooks
}

func NewStoreProvider(s *store.Store, logger *zap.Logger, hooks MetricHooks) *StoreProvider {
	return &StoreProvider{store: s, logger: logger, hooks: hooks.withDefaults()}
}

// Store exposes the underlying client, e.g. for Clear in test setup.
func (p *StoreProvider) Store() *store.Store { return p.store }

func (p *StoreProvider) Acquire(ctx context.Context, pl domain.Pool) (domain.TestUser, bool) {
	u, ok, err := p.store.Acquire(ctx, pl.Name)
	if err != nil {
		p.fail("acquire", pl, err)
		return domain.TestUser{}, false
	}
	return u, ok
}

func (p *StoreProvider) Consume(ctx context.Context, pl domain.Pool) (domain.TestUser, bool) {
	u, ok, err := p.store.Consume(ctx, pl.Name)
	if err != nil {
		p.fail("consume", pl, err)
		return domain.TestUser{}, false
	}
	return u, ok
}

func (p *StoreProvider) Release(ctx context.Context, pl domain.Pool, u domain.TestUser) bool {
	err := p.store.Release(ctx, pl.Name, u)
	switch {
	case errors.Is(err, domain.ErrNotClaimed):
		p.logger.Debug("release skipped, item holds no claim",
			zap.String("pool", pl.Name), zap.String("email", u.Email))
		return false
	case err != nil:
		p.fail("release", pl, err)
		return false
	}
	return true
}

func (p *StoreProvider) Transfer(ctx context.Context, from, to domain.Pool, u domain.TestUser) {
	if err := p.store.Transfer(ctx, from.Name, to.Name, u); err != nil {
		p.fail("transfer", from, err)
	}
}

func (p *StoreProvider) Stats(ctx context.Context, pl domain.Pool) domain.PoolStats {
	st, err := p.store.Stats(ctx, pl.Name)
	if err != nil {
		p.fail("stats", pl, err)
		return domain.PoolStats{}
	}
	return st
}

func (p *StoreProvider) Available(ctx context.Context) bool {
	return p.store.Available(ctx)
}

func (p *StoreProvider) Close() error {
	return p.store.Close()
}

func (p *StoreProvider) fail(op string, pl domain.Pool, err error) {
	p.hooks.OnStoreError(op)
	p.logger.Warn("store operation failed",
		zap.String("op", op), zap.String("pool", pl.Name), zap.Error(err))
}

// compile-time check that StoreProvider implements Provider
var _ Provider = (*StoreProvider)(nil)
