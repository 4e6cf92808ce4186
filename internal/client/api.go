// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is the consumer side of the Stockroom API.

It holds the bearer-token session, persists it between runs, and decides
whether a requested view may render or must redirect to login.

Components:

  - APIClient: typed HTTP calls to the server.
  - Session: the single writer of the current token.
  - TokenStore: durable token storage (file or memory).
  - Router and Guard: path resolution and the protected-view decision.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/stockroom/internal/platform/constants"
)

// DefaultTimeout bounds every API call unless overridden.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Identity is the account returned by registration.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Product is a catalog entry as served by the API.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdat"`
	UpdatedAt time.Time `json:"updatedat"`
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// TokenSource supplies the bearer token for authenticated calls.
// [*Session] satisfies it.
type TokenSource interface {
	Token() string
}

// APIClient issues typed requests against the Stockroom API.
type APIClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures an [APIClient].
type Option func(*APIClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *APIClient) { client.http = httpClient }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(client *APIClient) { client.http.Timeout = timeout }
}

// NewAPIClient creates a client for the server at baseURL.
func NewAPIClient(baseURL string, opts ...Option) (*APIClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: invalid API URL %q", baseURL)
	}

	client := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// UseTokens sets where authenticated calls read their bearer token from.
func (client *APIClient) UseTokens(source TokenSource) {
	client.tokens = source
}

// # Auth

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account.
func (client *APIClient) Register(ctx context.Context, username, password string) (*Identity, error) {
	identity := &Identity{}
	if err := client.do(ctx, http.MethodPost, "/auth/register", credentials{username, password}, identity, false); err != nil {
		return nil, err
	}
	return identity, nil
}

// Login exchanges credentials for an access token.
func (client *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	var response struct {
		AccessToken string `json:"access_token"`
		Message     string `json:"message"`
	}
	if err := client.do(ctx, http.MethodPost, "/auth/login", credentials{username, password}, &response, false); err != nil {
		return "", err
	}
	if response.AccessToken == "" {
		// Older servers answer a failed login with 2xx and only a message.
		return "", &APIError{Status: http.StatusUnauthorized, Message: response.Message}
	}
	return response.AccessToken, nil
}

// Profile returns the identity of the current token.
func (client *APIClient) Profile(ctx context.Context) (*Identity, error) {
	identity := &Identity{}
	if err := client.do(ctx, http.MethodGet, "/auth/profile", nil, identity, true); err != nil {
		return nil, err
	}
	return identity, nil
}

// # Products

// ListProducts returns every product.
func (client *APIClient) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if err := client.do(ctx, http.MethodGet, "/products", nil, &products, true); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product.
func (client *APIClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	product := &Product{}
	if err := client.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, product, true); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct adds a product.
func (client *APIClient) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	product := &Product{}
	if err := client.do(ctx, http.MethodPost, "/products", input, product, true); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces a product's name and price.
func (client *APIClient) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	product := &Product{}
	if err := client.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), input, product, true); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product.
func (client *APIClient) DeleteProduct(ctx context.Context, id string) error {
	return client.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, true)
}

// # Transport

func (client *APIClient) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authenticated && client.tokens != nil {
		if token := client.tokens.Token(); token != "" {
			request.Header.Set(constants.HeaderAuthorization, constants.AuthScheme+" "+token)
		}
	}

	response, err := client.http.Do(request)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{Status: response.StatusCode}
		if err := json.NewDecoder(response.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(response.StatusCode)
		}
		return apiErr
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
