package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/backend"
	"github.com/qa-platform/fixturepool/internal/config"
	"github.com/qa-platform/fixturepool/internal/factory"
	"github.com/qa-platform/fixturepool/internal/fallback"
	"github.com/qa-platform/fixturepool/internal/ratelimiter"
	"github.com/qa-platform/fixturepool/internal/store"
)

// Manager is the process-scoped entry point tests use. It is built once at
// bootstrap and passed to whoever needs fixtures. The provider is created
// on first use; Close discards it so the next call builds a fresh one.
type Manager struct {
	mu       sync.Mutex
	build    func() Provider
	provider Provider

	// AcquirePool and ConsumePool are the defaults for AcquireUser and ConsumeUser.
	AcquirePool domain.Pool
	ConsumePool domain.Pool
}

// NewManager returns a Manager that builds its provider with build.
func NewManager(build func() Provider) *Manager {
	return &Manager{
		build:       build,
		AcquirePool: domain.PoolUsersRegistered,
		ConsumePool: domain.PoolUsersFresh,
	}
}

// NewHybridManager wires the production stack: Redis store first, then the
// fallback generator backed by the identity API.
func NewHybridManager(cfg *config.Config, logger *zap.Logger, hooks MetricHooks) *Manager {
	return NewManager(func() Provider {
		st := NewStoreProvider(store.NewFromConfig(cfg, logger), logger, hooks)
		api := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, ratelimiter.New(cfg.ProvisionRateLimit))
		gen := fallback.New(factory.NewUserFactory(0), api, logger)
		return NewHybrid(st, gen, logger, hooks, WithCheckTimeout(cfg.DialTimeout))
	})
}

// NewManagerFromEnv loads configuration from the environment (and a .env
// file in the working directory) and returns the hybrid Manager. This is
// the entry point for test suites. hooks may be the zero value, or
// PrometheusHooks(reg) to count acquires and releases.
func NewManagerFromEnv(logger *zap.Logger, hooks MetricHooks) (*Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewHybridManager(cfg, logger, hooks), nil
}

// compile-time check that the fallback generator implements Provider
var _ Provider = (*fallback.Generator)(nil)

// Provider returns the current provider, building it if needed.
func (m *Manager) Provider() Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider == nil {
		m.provider = m.build()
	}
	return m.provider
}

func (m *Manager) AcquireUser(ctx context.Context) (domain.TestUser, bool) {
	return m.AcquireUserFrom(ctx, m.AcquirePool)
}

func (m *Manager) AcquireUserFrom(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	return m.Provider().Acquire(ctx, p)
}

func (m *Manager) ConsumeUser(ctx context.Context) (domain.TestUser, bool) {
	return m.ConsumeUserFrom(ctx, m.ConsumePool)
}

func (m *Manager) ConsumeUserFrom(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	return m.Provider().Consume(ctx, p)
}

// ReleaseUser reports whether u went back into p.
func (m *Manager) ReleaseUser(ctx context.Context, p domain.Pool, u domain.TestUser) bool {
	return m.Provider().Release(ctx, p, u)
}

func (m *Manager) TransferUser(ctx context.Context, from, to domain.Pool, u domain.TestUser) {
	m.Provider().Transfer(ctx, from, to, u)
}

func (m *Manager) Stats(ctx context.Context, p domain.Pool) domain.PoolStats {
	return m.Provider().Stats(ctx, p)
}

// Close closes the current provider and forgets it. Safe to call repeatedly.
func (m *Manager) Close() error {
	m.mu.Lock()
	p := m.provider
	m.provider = nil
	m.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Close()
}
