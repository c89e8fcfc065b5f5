package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/qa-platform/fixturepool/internal/ratelimiter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the backend's form-encoded account endpoints.
// The base URL is injected from config so tests can point to a local server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimiter.Limiter
}

// NewClient builds a Client. limiter may be nil.
func NewClient(baseURL string, timeout time.Duration, limiter *ratelimiter.Limiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

// CreateAccount registers a new account. A successful call still has to
// be checked with Response.Created.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Response, error) {
	form := url.Values{
		"name":          {req.Name},
		"email":         {req.Email},
		"password":      {req.Password},
		"title":         {req.Title},
		"birth_date":    {req.BirthDate},
		"birth_month":   {req.BirthMonth},
		"birth_year":    {req.BirthYear},
		"firstname":     {req.FirstName},
		"lastname":      {req.LastName},
		"company":       {req.Company},
		"address1":      {req.Address1},
		"address2":      {req.Address2},
		"country":       {req.Country},
		"state":         {req.State},
		"city":          {req.City},
		"zipcode":       {req.ZipCode},
		"mobile_number": {req.MobileNumber},
	}
	var resp Response
	if err := c.do(ctx, http.MethodPost, "createAccount", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteAccount(ctx context.Context, email, password string) (*Response, error) {
	var resp Response
	form := url.Values{"email": {email}, "password": {password}}
	if err := c.do(ctx, http.MethodDelete, "deleteAccount", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyLogin(ctx context.Context, email, password string) (*Response, error) {
	var resp Response
	form := url.Values{"email": {email}, "password": {password}}
	if err := c.do(ctx, http.MethodPost, "verifyLogin", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var body struct {
		Response
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "productsList", nil, &body); err != nil {
		return nil, err
	}
	if !body.OK() {
		return nil, fmt.Errorf("list products: responseCode %d: %s", body.ResponseCode, body.Message)
	}
	return body.Products, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait for rate limiter: %w", endpoint, err)
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: unexpected backend status: %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// compile-time check that Client implements IdentityAPI
var _ IdentityAPI = (*Client)(nil)
