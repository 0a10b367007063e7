// ABOUTME: Database operations for sync_state and sync_log tables
// ABOUTME: Tracks CRM sync health and per-lead sync attempts
package db

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/models"
	"github.com/oklog/ulid/v2"
)

// GetSyncState retrieves the sync state for a service.
func GetSyncState(db *sql.DB, service string) (*models.SyncState, error) {
	var state models.SyncState
	var lastSyncTime sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT service, last_sync_time, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE service = ?
	`, service).Scan(
		&state.Service,
		&lastSyncTime,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastSyncTime.Valid {
		state.LastSyncTime = &lastSyncTime.Time
	}
	if errorMessage.Valid {
		state.ErrorMessage = errorMessage.String
	}

	return &state, nil
}

// UpdateSyncStatus updates the sync status for a service.
func UpdateSyncStatus(db *sql.DB, service, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkSyncCompleted records a successful sync pass for a service.
func MarkSyncCompleted(db *sql.DB, service string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service)

	if err != nil {
		return fmt.Errorf("failed to mark sync completed: %w", err)
	}

	return nil
}

// CreateSyncAttempt records a pending sync attempt for a lead and returns
// its ULID so the attempt can be resolved later.
func CreateSyncAttempt(db *sql.DB, leadID uuid.UUID, service string) (string, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()

	_, err := db.Exec(`
		INSERT INTO sync_log (id, lead_id, service, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, id, leadID.String(), service, models.SyncAttemptPending)

	if err != nil {
		return "", fmt.Errorf("failed to create sync attempt: %w", err)
	}

	return id, nil
}

// ResolveSyncAttempt marks an attempt as succeeded or failed.
func ResolveSyncAttempt(db *sql.DB, id, status, contactID string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		UPDATE sync_log
		SET status = ?, contact_id = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, contactID, errorMsgVal, id)

	if err != nil {
		return fmt.Errorf("failed to resolve sync attempt: %w", err)
	}

	return nil
}

// GetSyncAttempts returns recent sync attempts, optionally filtered by status.
func GetSyncAttempts(db *sql.DB, status string, limit int) ([]models.SyncAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.Query(`
			SELECT id, lead_id, service, status, contact_id, error_message, created_at, updated_at
			FROM sync_log
			WHERE status = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, status, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, lead_id, service, status, contact_id, error_message, created_at, updated_at
			FROM sync_log
			ORDER BY created_at DESC
			LIMIT ?
		`, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query sync attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []models.SyncAttempt
	for rows.Next() {
		var a models.SyncAttempt
		var contactID sql.NullString
		var errorMessage sql.NullString

		if err := rows.Scan(&a.ID, &a.LeadID, &a.Service, &a.Status, &contactID, &errorMessage, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync attempt: %w", err)
		}

		if contactID.Valid {
			a.ContactID = contactID.String
		}
		if errorMessage.Valid {
			a.ErrorMessage = errorMessage.String
		}

		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync attempts: %w", err)
	}

	return attempts, nil
}
