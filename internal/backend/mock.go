package backend

import (
	"context"
	"sync"
)

// MockIdentityAPI is a hand-written, in-memory IdentityAPI used in unit
// tests. Accounts are keyed by email; creating a duplicate answers 400 the
// way the real backend does.
type MockIdentityAPI struct {
	mu       sync.Mutex
	accounts map[string]string
	Calls    int

	// Optional overrides: set in tests to simulate failure paths.
	CreateErr      error
	CreateResponse *Response
	Products       []Product
}

func NewMockIdentityAPI() *MockIdentityAPI {
	return &MockIdentityAPI{accounts: make(map[string]string)}
}

func (m *MockIdentityAPI) CreateAccount(_ context.Context, req CreateAccountRequest) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResponse != nil {
		clone := *m.CreateResponse
		return &clone, nil
	}
	if _, exists := m.accounts[req.Email]; exists {
		return &Response{ResponseCode: 400, Message: "Bad request, Email already exists!"}, nil
	}
	m.accounts[req.Email] = req.Password
	return &Response{ResponseCode: StatusCreated, Message: "User created!"}, nil
}

func (m *MockIdentityAPI) DeleteAccount(_ context.Context, email, password string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if pw, ok := m.accounts[email]; !ok || pw != password {
		return &Response{ResponseCode: 404, Message: "Account not found!"}, nil
	}
	delete(m.accounts, email)
	return &Response{ResponseCode: 200, Message: "Account deleted!"}, nil
}

func (m *MockIdentityAPI) VerifyLogin(_ context.Context, email, password string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if pw, ok := m.accounts[email]; !ok || pw != password {
		return &Response{ResponseCode: 404, Message: "User not found!"}, nil
	}
	return &Response{ResponseCode: 200, Message: "User exists!"}, nil
}

func (m *MockIdentityAPI) ListProducts(_ context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Products, nil
}

// Registered reports whether an account exists for email.
func (m *MockIdentityAPI) Registered(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[email]
	return ok
}

var _ IdentityAPI = (*MockIdentityAPI)(nil)
