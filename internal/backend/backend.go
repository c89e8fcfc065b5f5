package backend

import (
	"context"

	"github.com/qa-platform/fixturepool/domain"
)

// StatusCreated is the responseCode the backend reports for a new account.
const StatusCreated = 201

// Response is the envelope every backend endpoint answers with. The HTTP
// status is usually 200; the outcome lives in ResponseCode.
type Response struct {
	ResponseCode int    `json:"responseCode"`
	Message      string `json:"message"`
}

func (r *Response) Created() bool { return r != nil && r.ResponseCode == StatusCreated }
func (r *Response) OK() bool      { return r != nil && r.ResponseCode == 200 }

// Product is one entry of the catalog listing.
type Product struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Brand    string `json:"brand"`
	Category struct {
		UserType struct {
			UserType string `json:"usertype"`
		} `json:"usertype"`
		Category string `json:"category"`
	} `json:"category"`
}

// CreateAccountRequest is the form body of createAccount.
type CreateAccountRequest struct {
	Name         string
	Email        string
	Password     string
	Title        string
	BirthDate    string
	BirthMonth   string
	BirthYear    string
	FirstName    string
	LastName     string
	Company      string
	Address1     string
	Address2     string
	Country      string
	State        string
	City         string
	ZipCode      string
	MobileNumber string
}

// NewCreateAccountRequest fills the fields the backend requires, using
// fixed values where a generated profile has gaps.
func NewCreateAccountRequest(p domain.Profile) CreateAccountRequest {
	return CreateAccountRequest{
		Name:         p.FirstName + " " + p.LastName,
		Email:        p.Email,
		Password:     p.Password,
		Title:        "Mr",
		BirthDate:    "1",
		BirthMonth:   "1",
		BirthYear:    "1990",
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Address1:     orDefault(p.Address.Street, "123 Test St"),
		Country:      "United States",
		State:        orDefault(p.Address.State, "NY"),
		City:         orDefault(p.Address.City, "New York"),
		ZipCode:      orDefault(p.Address.ZipCode, "10001"),
		MobileNumber: orDefault(p.Phone, "1234567890"),
	}
}

// IdentityAPI is the slice of the backend the pool core needs.
// Mocking this interface in tests gives full control over provisioning
// outcomes without making real HTTP calls.
type IdentityAPI interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Response, error)
	DeleteAccount(ctx context.Context, email, password string) (*Response, error)
	VerifyLogin(ctx context.Context, email, password string) (*Response, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
