// ABOUTME: Lead database operations
// ABOUTME: Persists captured calculator leads with their ROI data bags
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/models"
)

func CreateLead(db *sql.DB, lead *models.Lead) error {
	lead.ID = uuid.New()
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	var brandID *string
	if lead.BrandID != nil {
		s := lead.BrandID.String()
		brandID = &s
	}

	data, err := marshalROIData(lead.Data)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO leads (id, brand_id, email, first_name, last_name, phone, company, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.ID.String(), brandID, lead.Email, lead.FirstName, lead.LastName, lead.Phone, lead.Company, data, lead.CreatedAt, lead.UpdatedAt)

	return err
}

func GetLead(db *sql.DB, id uuid.UUID) (*models.Lead, error) {
	lead := &models.Lead{}
	var brandID sql.NullString
	var data sql.NullString

	err := db.QueryRow(`
		SELECT id, brand_id, email, first_name, last_name, phone, company, data, created_at, updated_at
		FROM leads WHERE id = ?
	`, id.String()).Scan(
		&lead.ID,
		&brandID,
		&lead.Email,
		&lead.FirstName,
		&lead.LastName,
		&lead.Phone,
		&lead.Company,
		&data,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if brandID.Valid {
		bid, err := uuid.Parse(brandID.String)
		if err == nil {
			lead.BrandID = &bid
		}
	}
	if data.Valid && data.String != "" {
		if err := json.Unmarshal([]byte(data.String), &lead.Data); err != nil {
			return nil, fmt.Errorf("failed to decode lead data: %w", err)
		}
	}

	return lead, nil
}

func FindLeads(db *sql.DB, query string, brandID *uuid.UUID, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error

	if brandID != nil {
		rows, err = db.Query(`
			SELECT id, brand_id, email, first_name, last_name, phone, company, data, created_at, updated_at
			FROM leads
			WHERE brand_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, brandID.String(), limit)
	} else if query != "" {
		searchPattern := "%" + strings.ToLower(query) + "%"
		rows, err = db.Query(`
			SELECT id, brand_id, email, first_name, last_name, phone, company, data, created_at, updated_at
			FROM leads
			WHERE LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company) LIKE ?
			ORDER BY created_at DESC
			LIMIT ?
		`, searchPattern, searchPattern, searchPattern, searchPattern, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, brand_id, email, first_name, last_name, phone, company, data, created_at, updated_at
			FROM leads
			ORDER BY created_at DESC
			LIMIT ?
		`, limit)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var lead models.Lead
		var brandID sql.NullString
		var data sql.NullString

		if err := rows.Scan(&lead.ID, &brandID, &lead.Email, &lead.FirstName, &lead.LastName, &lead.Phone, &lead.Company, &data, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, err
		}

		if brandID.Valid {
			bid, err := uuid.Parse(brandID.String)
			if err == nil {
				lead.BrandID = &bid
			}
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &lead.Data); err != nil {
				return nil, fmt.Errorf("failed to decode lead data: %w", err)
			}
		}

		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func DeleteLead(db *sql.DB, id uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	_, err = tx.Exec(`DELETE FROM sync_log WHERE lead_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete sync log entries: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM leads WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	return tx.Commit()
}

func marshalROIData(data models.ROIData) (*string, error) {
	if data == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lead data: %w", err)
	}
	s := string(encoded)
	return &s, nil
}
