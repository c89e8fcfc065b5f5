package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/api"
	"github.com/qa-platform/fixturepool/internal/maintenance"
	"github.com/qa-platform/fixturepool/internal/metrics"
	"github.com/qa-platform/fixturepool/internal/store"
)

type fixture struct {
	mr     *miniredis.Miniredis
	st     *store.Store
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	st := store.New(rdb, store.Options{Prefix: "testdata"}, zap.NewNop())
	t.Cleanup(func() { _ = st.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewStatusMetrics(reg)

	srv := httptest.NewServer(api.NewRouter(st, m.ObserveReport, reg, zap.NewNop()))
	t.Cleanup(srv.Close)
	return &fixture{mr: mr, st: st, server: srv}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var b strings.Builder
	_, err = io.Copy(&b, resp.Body)
	require.NoError(t, err)
	return resp, b.String()
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"connected"`)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	f.mr.Close()
	resp, body = f.get(t, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"unreachable"`)
}

func TestPools_ListRefreshesGauges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.st.Seed(ctx, domain.PoolUsersFresh.Name, []domain.TestUser{
		{Email: "a@example.com", Password: "pw"},
		{Email: "b@example.com", Password: "pw"},
	})
	require.NoError(t, err)
	_, _, err = f.st.Acquire(ctx, domain.PoolUsersFresh.Name)
	require.NoError(t, err)

	resp, body := f.get(t, "/api/v1/pools")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report maintenance.Report
	require.NoError(t, jsoniter.UnmarshalFromString(body, &report))
	require.Len(t, report.Pools, 1)
	assert.Equal(t, "users:fresh", report.Pools[0].Pool)
	assert.EqualValues(t, 1, report.Pools[0].Available)
	assert.EqualValues(t, 1, report.Pools[0].Processing)

	_, scrape := f.get(t, "/metrics")
	assert.Contains(t, scrape, `fixture_pool_available{pool="users:fresh"} 1`)
	assert.Contains(t, scrape, `fixture_pool_processing{pool="users:fresh"} 1`)
	assert.NotContains(t, scrape, "fixture_acquired_total")
}

func TestPools_EmptyStoreListsNoPools(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/v1/pools")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"pools":[]`)
}

func TestPools_GetByName(t *testing.T) {
	f := newFixture(t)
	_, err := f.st.Seed(context.Background(), domain.PoolUsersRegistered.Name, []domain.TestUser{
		{Email: "r@example.com", Password: "pw"},
	})
	require.NoError(t, err)

	resp, body := f.get(t, "/api/v1/pools/users:registered")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"available":1`)

	resp, _ = f.get(t, "/api/v1/pools/users:unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPools_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.mr.Close()

	resp, body := f.get(t, "/api/v1/pools")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "docker-compose up -d redis")
}
