package factory_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-platform/fixturepool/internal/factory"
)

func TestUserFactory_RandomProfileIsComplete(t *testing.T) {
	f := factory.NewUserFactory(42)
	p := f.RandomProfile()

	assert.NotEmpty(t, p.FirstName)
	assert.NotEmpty(t, p.LastName)
	assert.Len(t, p.Password, 10)
	assert.True(t, strings.HasSuffix(p.Email, "@example.test"))
	assert.NotEmpty(t, p.Address.City)
	require.NoError(t, p.TestUser().Validate())
}

func TestUserFactory_ManyIsUnique(t *testing.T) {
	users := factory.NewUserFactory(0).Many(50)
	require.Len(t, users, 50)

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		assert.False(t, seen[u.Email], "duplicate email %s", u.Email)
		seen[u.Email] = true
	}
}

func TestUserFactory_CustomProfileKeepsCredentials(t *testing.T) {
	p := factory.NewUserFactory(1).CustomProfile("qa@example.com", "hunter22")
	assert.Equal(t, "qa@example.com", p.Email)
	assert.Equal(t, "hunter22", p.Password)
	assert.NotEmpty(t, p.FirstName)
}
