// ABOUTME: Authenticated request executor for the GoHighLevel REST API
// ABOUTME: Handles proactive token refresh, bearer injection, and the single 401 retry
package ghl

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshBuffer is how long before expiry the access token is refreshed
// proactively rather than risking a mid-request 401.
const refreshBuffer = 5 * time.Minute

// Client talks to the GoHighLevel API using credentials and sync
// configuration held in a SettingStore.
type Client struct {
	store   SettingStore
	http    *http.Client
	baseURL string
	authURL string
	now     func() time.Time

	// Concurrent callers near expiry share one refresh instead of racing
	// the provider's refresh-token rotation.
	refreshGroup singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAuthURL overrides the authorization page URL.
func WithAuthURL(u string) Option {
	return func(c *Client) { c.authURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(store SettingStore, opts ...Option) *Client {
	c := &Client{
		store:   store,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		authURL: DefaultAuthURL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request issues an authenticated call against the API. The endpoint is a
// path like "/contacts/". Caller-supplied headers win over the defaults.
//
// Token handling: if stored credentials are absent the call fails; if the
// access token is within the refresh buffer it is refreshed first; if the
// response is 401 exactly one refresh-and-retry cycle runs, then the final
// response or error is returned as-is.
func (c *Client) Request(ctx context.Context, method, endpoint string, body []byte, header http.Header) (*http.Response, error) {
	creds, err := c.validCredentials(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.issue(ctx, method, endpoint, body, header, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Reactive path: one refresh, one retry, no backoff loop
	_ = resp.Body.Close()

	creds, err = c.refreshedCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("request unauthorized and token refresh failed: %w", err)
	}

	return c.issue(ctx, method, endpoint, body, header, creds.AccessToken)
}

// validCredentials loads stored credentials and refreshes them when inside
// the expiry buffer.
func (c *Client) validCredentials(ctx context.Context) (*Credentials, error) {
	creds, err := LoadCredentials(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("gohighlevel is not connected: no valid token")
	}

	if creds.ExpiresWithin(c.now(), refreshBuffer) {
		return c.refreshedCredentials(ctx)
	}

	return creds, nil
}

// refreshedCredentials runs a single-flight token refresh and re-reads the
// stored credentials afterwards. The refresh itself runs on a context
// detached from the initiating request: the flight is shared, so one
// caller's cancellation must not fail every waiter.
func (c *Client) refreshedCredentials(ctx context.Context) (*Credentials, error) {
	refreshCtx := context.WithoutCancel(ctx)
	v, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		creds, err := LoadCredentials(refreshCtx, c.store)
		if err != nil {
			return false, err
		}
		if creds == nil || creds.RefreshToken == "" {
			return false, fmt.Errorf("gohighlevel is not connected: no refresh token")
		}
		return c.Refresh(refreshCtx, creds.RefreshToken)
	})
	if err != nil {
		return nil, err
	}
	if ok, _ := v.(bool); !ok {
		return nil, fmt.Errorf("gohighlevel token refresh failed")
	}

	creds, err := LoadCredentials(ctx, c.store)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("gohighlevel credentials disappeared after refresh")
	}
	return creds, nil
}

// issue builds and sends one HTTP request with auth and version headers.
func (c *Client) issue(ctx context.Context, method, endpoint string, body []byte, header http.Header, accessToken string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Caller headers override defaults
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.http.Do(req)
}

// Connected reports whether credentials are stored, without issuing any
// network calls.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	creds, err := LoadCredentials(ctx, c.store)
	if err != nil {
		return false, err
	}
	return creds != nil, nil
}

// LocationID returns the stored CRM location, or "" when not connected.
func (c *Client) LocationID(ctx context.Context) (string, error) {
	return c.store.Get(ctx, KeyLocationID)
}
