package store

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/qa-platform/fixturepool/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encode must be deterministic: Release and Transfer remove claims by value.
func encode(u domain.TestUser) (string, error) {
	if err := u.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode fixture: %w", err)
	}
	return string(b), nil
}

func decode(raw string) (domain.TestUser, error) {
	var u domain.TestUser
	if err := json.UnmarshalFromString(raw, &u); err != nil {
		return domain.TestUser{}, fmt.Errorf("decode fixture %q: %w", raw, domain.ErrInvalidItem)
	}
	if err := u.Validate(); err != nil {
		return domain.TestUser{}, fmt.Errorf("decode fixture %q: %w", raw, err)
	}
	u.Origin = domain.OriginStore
	return u, nil
}
