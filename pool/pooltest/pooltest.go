// Package pooltest gives test suites scoped fixtures: the item is returned
// to its pool when the test (or subtest) finishes, pass or fail.
package pooltest

import (
	"context"
	"testing"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/pool"
)

// AcquireUser claims a user from the manager's default acquire pool and
// schedules its release. The test is failed if nothing can be acquired.
func AcquireUser(tb testing.TB, m *pool.Manager) domain.TestUser {
	tb.Helper()
	return AcquireUserFrom(tb, m, m.AcquirePool)
}

func AcquireUserFrom(tb testing.TB, m *pool.Manager, p domain.Pool) domain.TestUser {
	tb.Helper()
	u, ok := m.AcquireUserFrom(context.Background(), p)
	if !ok {
		tb.Fatalf("no test user available in pool %s", p)
	}
	tb.Cleanup(func() {
		m.ReleaseUser(context.Background(), p, u)
	})
	return u
}

// ConsumeUser takes a user permanently. Nothing is released afterwards.
func ConsumeUser(tb testing.TB, m *pool.Manager) domain.TestUser {
	tb.Helper()
	u, ok := m.ConsumeUser(context.Background())
	if !ok {
		tb.Fatalf("no test user available in pool %s", m.ConsumePool)
	}
	return u
}
