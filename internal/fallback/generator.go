// Package fallback creates fixtures on demand when the shared store cannot
// serve them. Items it returns are ephemeral: nothing tracks them and
// releasing them does nothing.
package fallback

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/backend"
	"github.com/qa-platform/fixturepool/internal/factory"
)

// Generator produces one fixture per call according to the pool's
// strategy: synthesized locally, or registered through the backend first.
type Generator struct {
	users  *factory.UserFactory
	api    backend.IdentityAPI
	logger *zap.Logger
}

func New(users *factory.UserFactory, api backend.IdentityAPI, logger *zap.Logger) *Generator {
	return &Generator{users: users, api: api, logger: logger}
}

// Provision creates one item for p. It returns ErrProvisionRejected when
// the backend answers without the created status.
func (g *Generator) Provision(ctx context.Context, p domain.Pool) (domain.TestUser, error) {
	switch p.Strategy {
	case domain.StrategySynthesize:
		return g.users.RandomUser(), nil

	case domain.StrategyRegister:
		profile := g.users.RandomProfile()
		resp, err := g.api.CreateAccount(ctx, backend.NewCreateAccountRequest(profile))
		if err != nil {
			return domain.TestUser{}, fmt.Errorf("register %s: %w", profile.Email, err)
		}
		if !resp.Created() {
			return domain.TestUser{}, fmt.Errorf("register %s: responseCode %d %q: %w",
				profile.Email, resp.ResponseCode, resp.Message, domain.ErrProvisionRejected)
		}
		return profile.TestUser(), nil
	}
	return domain.TestUser{}, fmt.Errorf("pool %q: %w", p.Name, domain.ErrUnknownStrategy)
}

// Acquire never touches the network for synthesized pools. For registered
// pools it reports ok only when the backend created the account.
func (g *Generator) Acquire(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	u, err := g.Provision(ctx, p)
	if err != nil {
		g.logger.Warn("fallback generation failed", zap.String("pool", p.Name), zap.Error(err))
		return domain.TestUser{}, false
	}
	u.Origin = domain.OriginFallback
	return u, true
}

func (g *Generator) Consume(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	return g.Acquire(ctx, p)
}

// Release keeps nothing: generated items are never pooled.
func (g *Generator) Release(context.Context, domain.Pool, domain.TestUser) bool { return false }

func (g *Generator) Transfer(context.Context, domain.Pool, domain.Pool, domain.TestUser) {}

// Stats reports unbounded availability.
func (g *Generator) Stats(context.Context, domain.Pool) domain.PoolStats {
	return domain.UnboundedStats()
}

func (g *Generator) Available(context.Context) bool { return true }

func (g *Generator) Close() error { return nil }
