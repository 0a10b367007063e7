// ABOUTME: Flat key-value settings table operations
// ABOUTME: Holds OAuth tokens, CRM sync configuration, and admin preferences
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// GetSetting returns the value for a key, or empty string if unset.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a setting keyed by name.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting. Deleting an absent key is not an error.
func DeleteSetting(db *sql.DB, key string) error {
	_, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// GetSettingsByPrefix returns all settings whose key starts with prefix.
func GetSettingsByPrefix(db *sql.DB, prefix string) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM settings WHERE key LIKE ? ORDER BY key`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// RedactSecrets masks token and secret values for admin display.
func RedactSecrets(settings map[string]string) map[string]string {
	redacted := make(map[string]string, len(settings))
	for key, value := range settings {
		if value != "" && (strings.Contains(key, "token") || strings.Contains(key, "secret")) {
			redacted[key] = "********"
			continue
		}
		redacted[key] = value
	}
	return redacted
}

// SettingsStore adapts the settings table to the key-value interface the
// CRM client consumes, keeping persistence swappable for tests.
type SettingsStore struct {
	DB *sql.DB
}

func (s *SettingsStore) Get(_ context.Context, key string) (string, error) {
	return GetSetting(s.DB, key)
}

func (s *SettingsStore) Set(_ context.Context, key, value string) error {
	return SetSetting(s.DB, key, value)
}
