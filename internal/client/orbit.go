// Package client provides an HTTP client for the Orbit API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"orbit/internal/aggregate"
	"orbit/internal/ledger"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsStale reports whether err is the server rejecting an out-of-date ledger write.
func IsStale(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Profile is the signed-in user's stored ledger.
type Profile struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	OrbitData ledger.Ledger `json:"orbitData"`
	Version   int64         `json:"version"`
}

// SyncResult is the ledger the server holds after a sync.
type SyncResult struct {
	OrbitData ledger.Ledger `json:"orbitData"`
	Version   int64         `json:"version"`
}

// OrbitClient talks to the Orbit API on behalf of one user. It remembers the
// bearer token and the last ledger version it has seen, so Push can send
// versioned writes.
type OrbitClient struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	version *int64
}

// NewOrbitClient creates a new Orbit API client.
func NewOrbitClient(baseURL string, httpClient *http.Client) *OrbitClient {
	return &OrbitClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer token used on authenticated calls.
func (c *OrbitClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Version returns the last ledger version seen, if any.
func (c *OrbitClient) Version() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == nil {
		return 0, false
	}
	return *c.version, true
}

func (c *OrbitClient) setVersion(v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = &v
}

// Signup registers a new account and keeps its token.
func (c *OrbitClient) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &result); err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Login authenticates and keeps the returned token.
func (c *OrbitClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Me fetches the stored ledger and records its version.
func (c *OrbitClient) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/data/me", nil, &p); err != nil {
		return nil, fmt.Errorf("fetching ledger: %w", err)
	}
	if p.OrbitData == nil {
		p.OrbitData = ledger.Ledger{}
	}
	c.setVersion(p.Version)
	return &p, nil
}

// Sync replaces the stored ledger. With version set the server rejects the
// write if the ledger changed since that version.
func (c *OrbitClient) Sync(ctx context.Context, l ledger.Ledger, version *int64) (*SyncResult, error) {
	body := struct {
		OrbitData ledger.Ledger `json:"orbitData"`
		Version   *int64        `json:"version,omitempty"`
	}{OrbitData: l, Version: version}

	var result SyncResult
	if err := c.do(ctx, http.MethodPost, "/api/data/sync", body, &result); err != nil {
		return nil, fmt.Errorf("syncing ledger: %w", err)
	}
	c.setVersion(result.Version)
	return &result, nil
}

// Push implements syncq.Pusher. It sends the last version seen, so a write
// from another session since then is rejected instead of overwritten.
func (c *OrbitClient) Push(ctx context.Context, l ledger.Ledger) error {
	c.mu.Lock()
	version := c.version
	c.mu.Unlock()
	_, err := c.Sync(ctx, l, version)
	return err
}

// Summary fetches the aggregation bundle for one month.
func (c *OrbitClient) Summary(ctx context.Context, key ledger.MonthKey) (*aggregate.Summary, error) {
	var s aggregate.Summary
	if err := c.do(ctx, http.MethodGet, "/api/data/summary?month="+key.String(), nil, &s); err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	return &s, nil
}

func (c *OrbitClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Code = payload.Error.Code
			apiErr.Message = payload.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
