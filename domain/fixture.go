package domain

import (
	"fmt"
	"math"
)

// Strategy tells the fallback generator how to produce an item for a pool
// when the shared store cannot serve one.
type Strategy string

const (
	// StrategySynthesize builds a never-registered identity locally.
	StrategySynthesize Strategy = "synthesize"
	// StrategyRegister creates the identity through the backend API first.
	StrategyRegister Strategy = "register"
)

func (s Strategy) IsValid() bool {
	switch s {
	case StrategySynthesize, StrategyRegister:
		return true
	}
	return false
}

// Pool identifies a named pool together with its fallback strategy.
type Pool struct {
	Name     string
	Strategy Strategy
}

func (p Pool) String() string { return p.Name }

func (p Pool) Validate() error {
	if p.Name == "" {
		return ErrEmptyPoolName
	}
	if !p.Strategy.IsValid() {
		return fmt.Errorf("pool %q: %w", p.Name, ErrUnknownStrategy)
	}
	return nil
}

var (
	PoolUsersFresh      = Pool{Name: "users:fresh", Strategy: StrategySynthesize}
	PoolUsersRegistered = Pool{Name: "users:registered", Strategy: StrategyRegister}
)

// KnownPools lists every pool the maintenance tools manage by default.
func KnownPools() []Pool {
	return []Pool{PoolUsersFresh, PoolUsersRegistered}
}

// LookupPool finds a known pool by name.
func LookupPool(name string) (Pool, bool) {
	for _, p := range KnownPools() {
		if p.Name == name {
			return p, true
		}
	}
	return Pool{}, false
}

// Origin records where an item in hand came from. It is never serialized.
type Origin uint8

const (
	OriginStore Origin = iota
	OriginFallback
)

// TestUser is the fixture item kept in the pools. Two users are the same
// fixture when their emails match.
type TestUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	Origin Origin `json:"-"`
}

func (u TestUser) Validate() error {
	if u.Email == "" || u.Password == "" {
		return ErrInvalidItem
	}
	return nil
}

// Same reports whether u and other identify the same account.
func (u TestUser) Same(other TestUser) bool {
	return u.Email == other.Email
}

// Address is the postal part of a generated profile.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// Profile is a full synthetic identity; pools only keep its TestUser part.
type Profile struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   Address
}

func (p Profile) TestUser() TestUser {
	return TestUser{
		Email:     p.Email,
		Password:  p.Password,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

// PoolStats is the observed size of a pool. Processing only counts the
// querying worker's claims unless it was aggregated by the status reporter.
type PoolStats struct {
	Available  int64 `json:"available"`
	Processing int64 `json:"processing"`
	Unbounded  bool  `json:"unbounded,omitempty"`
}

// UnboundedStats is reported by providers that generate on demand.
func UnboundedStats() PoolStats {
	return PoolStats{Available: math.MaxInt64, Unbounded: true}
}

func (s PoolStats) Total() int64 {
	if s.Unbounded {
		return math.MaxInt64
	}
	return s.Available + s.Processing
}

// Utilization is processing / (available+processing) as a percentage.
func (s PoolStats) Utilization() float64 {
	total := s.Total()
	if s.Unbounded || total == 0 {
		return 0
	}
	return float64(s.Processing) / float64(total) * 100
}
