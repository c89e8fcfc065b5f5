package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/backend"
	"github.com/qa-platform/fixturepool/internal/ratelimiter"
)

func TestClient_CreateAccountPostsForm(t *testing.T) {
	var (
		method, path, contentType string
		form                      url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		form = r.PostForm
		_, _ = w.Write([]byte(`{"responseCode": 201, "message": "User created!"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL+"/", time.Second, ratelimiter.New(100))
	req := backend.NewCreateAccountRequest(domain.Profile{
		Email:     "ann@example.com",
		Password:  "secret",
		FirstName: "Ann",
		LastName:  "Lee",
	})

	resp, err := c.CreateAccount(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Created())

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/createAccount", path)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "Ann Lee", form.Get("name"))
	assert.Equal(t, "ann@example.com", form.Get("email"))
	assert.Equal(t, "123 Test St", form.Get("address1"), "missing address falls back to a fixed street")
	assert.Equal(t, "1990", form.Get("birth_year"))
}

func TestClient_RejectedCreateIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"responseCode": 400, "message": "Bad request, Email already exists!"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second, nil)
	resp, err := c.CreateAccount(context.Background(), backend.CreateAccountRequest{Email: "dup@example.com"})
	require.NoError(t, err)
	assert.False(t, resp.Created())
	assert.Equal(t, "Bad request, Email already exists!", resp.Message)
}

func TestClient_ServerErrorIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second, nil)
	_, err := c.VerifyLogin(context.Background(), "a@example.com", "pw")
	assert.Error(t, err)
}

func TestClient_DeleteAccountUsesDelete(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_, _ = w.Write([]byte(`{"responseCode": 200, "message": "Account deleted!"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second, nil)
	resp, err := c.DeleteAccount(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.MethodDelete, method)
}

func TestClient_ListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/productsList", r.URL.Path)
		_, _ = w.Write([]byte(`{"responseCode": 200, "products": [
			{"id": 1, "name": "Blue Top", "price": "Rs. 500", "brand": "Polo",
			 "category": {"usertype": {"usertype": "Women"}, "category": "Tops"}}]}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, time.Second, nil)
	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Blue Top", products[0].Name)
	assert.Equal(t, "Women", products[0].Category.UserType.UserType)
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := backend.NewClient(srv.URL, time.Second, ratelimiter.New(1))
	_, err := c.VerifyLogin(ctx, "a@example.com", "pw")
	assert.Error(t, err)
}

func TestMockIdentityAPI_Lifecycle(t *testing.T) {
	m := backend.NewMockIdentityAPI()
	ctx := context.Background()

	resp, err := m.CreateAccount(ctx, backend.CreateAccountRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, resp.Created())

	resp, _ = m.CreateAccount(ctx, backend.CreateAccountRequest{Email: "a@example.com", Password: "pw"})
	assert.Equal(t, 400, resp.ResponseCode)

	resp, _ = m.VerifyLogin(ctx, "a@example.com", "pw")
	assert.True(t, resp.OK())

	resp, _ = m.DeleteAccount(ctx, "a@example.com", "pw")
	assert.True(t, resp.OK())
	assert.False(t, m.Registered("a@example.com"))
}
