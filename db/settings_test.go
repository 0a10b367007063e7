package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, InitSchema(db))

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetSettingAbsent(t *testing.T) {
	db := setupTestDB(t)

	value, err := GetSetting(db, "ghl_access_token")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetSettingUpsert(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SetSetting(db, "ghl_location_id", "loc_1"))

	value, err := GetSetting(db, "ghl_location_id")
	require.NoError(t, err)
	assert.Equal(t, "loc_1", value)

	// Second write replaces, not duplicates
	require.NoError(t, SetSetting(db, "ghl_location_id", "loc_2"))

	value, err = GetSetting(db, "ghl_location_id")
	require.NoError(t, err)
	assert.Equal(t, "loc_2", value)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM settings WHERE key = 'ghl_location_id'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestDeleteSetting(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SetSetting(db, "ghl_notes_enabled", "true"))
	require.NoError(t, DeleteSetting(db, "ghl_notes_enabled"))

	value, err := GetSetting(db, "ghl_notes_enabled")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// Deleting again is a no-op
	require.NoError(t, DeleteSetting(db, "ghl_notes_enabled"))
}

func TestGetSettingsByPrefix(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SetSetting(db, "ghl_client_id", "abc"))
	require.NoError(t, SetSetting(db, "ghl_notes_template", "Hi {{firstName}}"))
	require.NoError(t, SetSetting(db, "app_name", "roical"))

	settings, err := GetSettingsByPrefix(db, "ghl_")
	require.NoError(t, err)
	assert.Len(t, settings, 2)
	assert.Equal(t, "abc", settings["ghl_client_id"])
	_, hasUnrelated := settings["app_name"]
	assert.False(t, hasUnrelated)
}

func TestRedactSecrets(t *testing.T) {
	redacted := RedactSecrets(map[string]string{
		"ghl_access_token":  "tok_live",
		"ghl_client_secret": "shhh",
		"ghl_location_id":   "loc_1",
		"ghl_refresh_token": "",
	})

	assert.Equal(t, "********", redacted["ghl_access_token"])
	assert.Equal(t, "********", redacted["ghl_client_secret"])
	assert.Equal(t, "loc_1", redacted["ghl_location_id"])
	assert.Equal(t, "", redacted["ghl_refresh_token"], "empty secrets stay empty so admins can see what is unset")
}
