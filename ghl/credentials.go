// ABOUTME: OAuth credential records and the key-value store they live in
// ABOUTME: Defines the SettingStore interface plus settings-backed and in-memory implementations
package ghl

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Setting keys the client consumes and produces.
const (
	KeyAccessToken    = "ghl_access_token"
	KeyRefreshToken   = "ghl_refresh_token"
	KeyTokenExpiresAt = "ghl_token_expires_at"
	KeyLocationID     = "ghl_location_id"
	KeyClientID       = "ghl_client_id"
	KeyClientSecret   = "ghl_client_secret"
	KeyFieldMappings  = "ghl_field_mappings"
	KeyNotesEnabled   = "ghl_notes_enabled"
	KeyNotesTemplate  = "ghl_notes_template"
)

// SettingStore is the flat key-value persistence the client reads tokens
// and sync configuration from. Get returns "" for absent keys.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Credentials is the stored OAuth session against the CRM.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LocationID   string
}

// ExpiresWithin reports whether the access token is inside the refresh
// buffer at the given instant.
func (c *Credentials) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	return !now.Before(c.ExpiresAt.Add(-buffer))
}

// LoadCredentials reads the stored OAuth session. Returns (nil, nil) when
// no tokens are stored, meaning the CRM was never connected.
func LoadCredentials(ctx context.Context, store SettingStore) (*Credentials, error) {
	accessToken, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, err := store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if accessToken == "" && refreshToken == "" {
		return nil, nil
	}

	expiresAt, err := store.Get(ctx, KeyTokenExpiresAt)
	if err != nil {
		return nil, err
	}
	locationID, err := store.Get(ctx, KeyLocationID)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		LocationID:   locationID,
	}

	// Expiry is stored as epoch milliseconds
	if expiresAt != "" {
		ms, err := strconv.ParseInt(expiresAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse token expiry %q: %w", expiresAt, err)
		}
		creds.ExpiresAt = time.UnixMilli(ms)
	}

	return creds, nil
}

// SaveCredentials persists the OAuth session, one idempotent upsert per key.
func SaveCredentials(ctx context.Context, store SettingStore, creds *Credentials) error {
	if err := store.Set(ctx, KeyAccessToken, creds.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if err := store.Set(ctx, KeyRefreshToken, creds.RefreshToken); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	if err := store.Set(ctx, KeyTokenExpiresAt, strconv.FormatInt(creds.ExpiresAt.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to save token expiry: %w", err)
	}
	if creds.LocationID != "" {
		if err := store.Set(ctx, KeyLocationID, creds.LocationID); err != nil {
			return fmt.Errorf("failed to save location id: %w", err)
		}
	}
	return nil
}

// MemoryStore is an in-memory SettingStore for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	store := &MemoryStore{values: make(map[string]string)}
	for k, v := range values {
		store.values[k] = v
	}
	return store
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
