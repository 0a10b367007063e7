// ABOUTME: Migration utility for importing legacy calculator submissions into the leads schema.
// ABOUTME: Provides dry-run and backup capabilities for safe migration.

package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/models"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	dbPath := flag.String("db", "", "Path to database file (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before migration")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Error: -db flag is required")
	}

	if err := migrate(*dbPath, *dryRun, *backup); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}

func migrate(dbPath string, dryRun, createBackup bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		log.Printf("Creating backup: %s", backupPath)

		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}

		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		log.Printf("Backup created successfully")
	}

	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()
	database.SetMaxOpenConns(1)

	tables, err := getCurrentTables(database)
	if err != nil {
		return fmt.Errorf("failed to get current tables: %w", err)
	}
	log.Printf("Current tables: %v", tables)

	hasLegacy := false
	hasLeads := false
	for _, table := range tables {
		switch table {
		case "submissions":
			hasLegacy = true
		case "leads":
			hasLeads = true
		}
	}

	if !hasLegacy {
		log.Printf("No legacy submissions table found, nothing to import")
	}

	if dryRun {
		log.Printf("[DRY RUN] Would perform the following actions:")
		if !hasLeads {
			log.Printf("[DRY RUN] - Create leads, brands, settings, and sync tables")
		}
		if hasLegacy {
			count, err := countSubmissions(database)
			if err != nil {
				return err
			}
			log.Printf("[DRY RUN] - Import %d legacy submissions into leads", count)
			log.Printf("[DRY RUN] - Drop legacy submissions table")
		}
		return nil
	}

	if !hasLeads {
		log.Printf("Creating schema...")
		if err := db.InitSchema(database); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	if hasLegacy {
		imported, err := importSubmissions(database)
		if err != nil {
			return fmt.Errorf("failed to import submissions: %w", err)
		}
		log.Printf("Imported %d legacy submissions", imported)

		if _, err := database.Exec("DROP TABLE submissions"); err != nil {
			return fmt.Errorf("failed to drop legacy table: %w", err)
		}
		log.Printf("Dropped legacy submissions table")
	}

	return nil
}

// importSubmissions copies rows from the legacy submissions table, which
// stored the calculator payload as a JSON blob alongside the email.
func importSubmissions(database *sql.DB) (int, error) {
	rows, err := database.Query(`
		SELECT email, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(phone, ''), COALESCE(company, ''), COALESCE(payload, '{}')
		FROM submissions ORDER BY rowid`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	type submission struct {
		lead    models.Lead
		payload string
	}
	var submissions []submission
	for rows.Next() {
		var s submission
		if err := rows.Scan(&s.lead.Email, &s.lead.FirstName, &s.lead.LastName,
			&s.lead.Phone, &s.lead.Company, &s.payload); err != nil {
			return 0, err
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	imported := 0
	for _, s := range submissions {
		if s.lead.Email == "" {
			log.Printf("Skipping submission with no email")
			continue
		}
		data, err := parsePayload(s.payload)
		if err != nil {
			log.Printf("Skipping submission %s: bad payload: %v", s.lead.Email, err)
			continue
		}
		s.lead.Data = data
		if err := db.CreateLead(database, &s.lead); err != nil {
			return imported, fmt.Errorf("failed to create lead for %s: %w", s.lead.Email, err)
		}
		imported++
	}

	return imported, nil
}

func parsePayload(payload string) (models.ROIData, error) {
	var data models.ROIData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func getCurrentTables(database *sql.DB) ([]string, error) {
	rows, err := database.Query("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func countSubmissions(database *sql.DB) (int, error) {
	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&count)
	return count, err
}
