package pool

import (
	"context"
	"sync"

	"github.com/qa-platform/fixturepool/domain"
)

// MockProvider is a hand-written, in-memory Provider used in unit tests.
// Each pool is a slice served from the end; Release appends, so a released
// item is handed out next, like the store.
type MockProvider struct {
	mu         sync.Mutex
	pools      map[string][]domain.TestUser
	processing map[string]int

	// Set in tests to simulate an unreachable store.
	Reachable bool

	AvailabilityChecks int
	Released           []domain.TestUser
	Closed             bool
}

func NewMockProvider(reachable bool) *MockProvider {
	return &MockProvider{
		pools:      make(map[string][]domain.TestUser),
		processing: make(map[string]int),
		Reachable:  reachable,
	}
}

// Put appends items to a pool.
func (m *MockProvider) Put(p domain.Pool, users ...domain.TestUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[p.Name] = append(m.pools[p.Name], users...)
}

func (m *MockProvider) Acquire(_ context.Context, p domain.Pool) (domain.TestUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.pop(p.Name)
	if ok {
		m.processing[p.Name]++
	}
	return u, ok
}

func (m *MockProvider) Consume(_ context.Context, p domain.Pool) (domain.TestUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pop(p.Name)
}

func (m *MockProvider) pop(pool string) (domain.TestUser, bool) {
	if !m.Reachable {
		return domain.TestUser{}, false
	}
	items := m.pools[pool]
	if len(items) == 0 {
		return domain.TestUser{}, false
	}
	u := items[len(items)-1]
	m.pools[pool] = items[:len(items)-1]
	return u, true
}

// Release only accepts items with an outstanding claim on p, like the store.
func (m *MockProvider) Release(ctx context.Context, p domain.Pool, u domain.TestUser) bool {
	m.mu.Lock()
	claimed := m.Reachable && m.processing[p.Name] > 0
	m.mu.Unlock()
	if !claimed {
		return false
	}
	m.Transfer(ctx, p, p, u)
	return true
}

func (m *MockProvider) Transfer(_ context.Context, from, to domain.Pool, u domain.TestUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Reachable {
		return
	}
	if m.processing[from.Name] > 0 {
		m.processing[from.Name]--
	}
	m.pools[to.Name] = append(m.pools[to.Name], u)
	m.Released = append(m.Released, u)
}

func (m *MockProvider) Stats(_ context.Context, p domain.Pool) domain.PoolStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.PoolStats{
		Available:  int64(len(m.pools[p.Name])),
		Processing: int64(m.processing[p.Name]),
	}
}

// Available fails on a done context, as a real connectivity check would.
func (m *MockProvider) Available(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AvailabilityChecks++
	return m.Reachable && ctx.Err() == nil
}

// SetReachable flips reachability mid-test.
func (m *MockProvider) SetReachable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reachable = v
}

func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

var _ Provider = (*MockProvider)(nil)
