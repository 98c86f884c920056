// Package client is a typed HTTP client for the incidents API. It stores
// the issued token pair and transparently retries a request once after
// refreshing an expired access token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrNotAuthenticated is returned when a request needs credentials and the
// store has none, or a refresh attempt failed and credentials were cleared.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx response decoded into the API's error shape.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// TokenStore keeps the current token pair. Implementations must be safe
// for concurrent use.
type TokenStore interface {
	Tokens() (access, refresh string)
	SetTokens(access, refresh string)
	Clear()
}

type MemoryTokenStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (m *MemoryTokenStore) Tokens() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.access, m.refresh
}

func (m *MemoryTokenStore) SetTokens(access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = access
	m.refresh = refresh
}

func (m *MemoryTokenStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = ""
	m.refresh = ""
}

type Client struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore
	rf      *refresher
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.store = store }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   http.DefaultClient,
		store:   &MemoryTokenStore{}, //nolint:exhaustruct
		rf:      &refresher{},        //nolint:exhaustruct
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ----- auth -----

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return AuthResponse{}, err
	}

	c.store.SetTokens(resp.Token, resp.RefreshToken)

	return resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return AuthResponse{}, err
	}

	c.store.SetTokens(resp.Token, resp.RefreshToken)

	return resp, nil
}

// Logout revokes the server-side refresh session and always clears the
// local tokens, even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.store.Tokens()
	defer c.store.Clear()

	if refresh == "" {
		return nil
	}

	body := map[string]string{"refreshToken": refresh}

	if err := c.do(ctx, http.MethodPost, "/auth/logout", body, nil); err != nil {
		return err
	}

	return nil
}

// ----- transport -----

// do performs one API call. A 401 response, when a refresh token is held,
// triggers a single coordinated token refresh (see refresher) and one
// replay with the new token.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	access, refresh := c.store.Tokens()

	err := c.send(ctx, method, path, in, out, access)
	if err == nil || refresh == "" {
		return err
	}

	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}

	token, err := c.rf.do(func() (string, error) { return c.refreshTokens(ctx) })
	if err != nil {
		return err
	}

	return c.send(ctx, method, path, in, out, token)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any, access string) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request error: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request error: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response error: %w", err)
		}
	}

	return nil
}

// refreshTokens exchanges the stored refresh token for a new pair.
// On failure the stored credentials are cleared, forcing re-authentication.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	_, refresh := c.store.Tokens()
	if refresh == "" {
		return "", ErrNotAuthenticated
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return "", fmt.Errorf("marshal refresh request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/refresh-token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.store.Clear()
		decodeAPIError(resp) //nolint:errcheck

		return "", ErrNotAuthenticated
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("decode refresh response error: %w", err)
	}

	c.store.SetTokens(auth.Token, auth.RefreshToken)

	return auth.Token, nil
}

func decodeAPIError(resp *http.Response) error {
	var m struct {
		Message string `json:"message"`
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&m); err != nil || m.Message == "" {
		m.Message = http.StatusText(resp.StatusCode)
	}

	return APIError{Status: resp.StatusCode, Message: m.Message}
}
