// Package factory generates synthetic account identities.
package factory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/qa-platform/fixturepool/domain"
)

// UserFactory builds random but well-formed profiles. It is safe for
// concurrent use; the underlying faker is not, so calls are serialized.
type UserFactory struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewUserFactory returns a factory. A zero seed draws a random one.
func NewUserFactory(seed uint64) *UserFactory {
	return &UserFactory{faker: gofakeit.New(seed)}
}

// RandomProfile returns a complete identity. The email carries a random
// suffix so identities stay unique across workers and runs.
func (f *UserFactory) RandomProfile() domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := f.faker.FirstName()
	last := f.faker.LastName()
	return domain.Profile{
		Email:     emailFor(first, last),
		Password:  f.faker.Password(true, true, true, false, false, 10),
		FirstName: first,
		LastName:  last,
		Phone:     f.faker.Phone(),
		Address: domain.Address{
			Street:  f.faker.Street(),
			City:    f.faker.City(),
			State:   f.faker.State(),
			ZipCode: f.faker.Zip(),
			Country: f.faker.Country(),
		},
	}
}

// CustomProfile is a random profile with fixed credentials.
func (f *UserFactory) CustomProfile(email, password string) domain.Profile {
	p := f.RandomProfile()
	p.Email = email
	p.Password = password
	return p
}

// RandomUser is the pool item part of RandomProfile.
func (f *UserFactory) RandomUser() domain.TestUser {
	return f.RandomProfile().TestUser()
}

func (f *UserFactory) Many(n int) []domain.TestUser {
	users := make([]domain.TestUser, 0, n)
	for range n {
		users = append(users, f.RandomUser())
	}
	return users
}

func emailFor(first, last string) string {
	local := strings.ToLower(first + "." + last)
	local = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, local)
	return fmt.Sprintf("%s.%s@example.test", local, uuid.NewString()[:8])
}
