// ABOUTME: Brand database operations
// ABOUTME: CRUD for white-label brand records looked up by slug
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/models"
)

func CreateBrand(db *sql.DB, brand *models.Brand) error {
	brand.ID = uuid.New()
	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO brands (id, name, slug, primary_color, logo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, brand.ID.String(), brand.Name, brand.Slug, brand.PrimaryColor, brand.LogoURL, brand.CreatedAt, brand.UpdatedAt)

	return err
}

func GetBrandBySlug(db *sql.DB, slug string) (*models.Brand, error) {
	brand := &models.Brand{}

	err := db.QueryRow(`
		SELECT id, name, slug, primary_color, logo_url, created_at, updated_at
		FROM brands WHERE slug = ?
	`, slug).Scan(
		&brand.ID,
		&brand.Name,
		&brand.Slug,
		&brand.PrimaryColor,
		&brand.LogoURL,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return brand, nil
}

func GetBrand(db *sql.DB, id uuid.UUID) (*models.Brand, error) {
	brand := &models.Brand{}

	err := db.QueryRow(`
		SELECT id, name, slug, primary_color, logo_url, created_at, updated_at
		FROM brands WHERE id = ?
	`, id.String()).Scan(
		&brand.ID,
		&brand.Name,
		&brand.Slug,
		&brand.PrimaryColor,
		&brand.LogoURL,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return brand, nil
}

func ListBrands(db *sql.DB) ([]models.Brand, error) {
	rows, err := db.Query(`
		SELECT id, name, slug, primary_color, logo_url, created_at, updated_at
		FROM brands
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.PrimaryColor, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}

	return brands, rows.Err()
}

func UpdateBrand(db *sql.DB, id uuid.UUID, updates *models.Brand) error {
	updates.UpdatedAt = time.Now()

	_, err := db.Exec(`
		UPDATE brands
		SET name = ?, slug = ?, primary_color = ?, logo_url = ?, updated_at = ?
		WHERE id = ?
	`, updates.Name, updates.Slug, updates.PrimaryColor, updates.LogoURL, updates.UpdatedAt, id.String())

	return err
}

func DeleteBrand(db *sql.DB, id uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	// Leads keep their history but lose the brand association
	_, err = tx.Exec(`UPDATE leads SET brand_id = NULL WHERE brand_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to detach leads: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM brands WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	return tx.Commit()
}
