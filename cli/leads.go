// ABOUTME: Lead and brand CLI commands
// ABOUTME: Human-friendly commands for inspecting captured calculator leads
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/models"
)

// ListLeadsCommand lists captured leads.
func ListLeadsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-leads", flag.ExitOnError)
	query := fs.String("query", "", "Search by email, name, or company")
	brand := fs.String("brand", "", "Filter by brand slug")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	var brandIDPtr *uuid.UUID
	if *brand != "" {
		existingBrand, err := db.GetBrandBySlug(database, *brand)
		if err != nil {
			return fmt.Errorf("failed to lookup brand: %w", err)
		}
		if existingBrand == nil {
			return fmt.Errorf("brand not found: %s", *brand)
		}
		brandIDPtr = &existingBrand.ID
	}

	leads, err := db.FindLeads(database, *query, brandIDPtr, *limit)
	if err != nil {
		return fmt.Errorf("failed to find leads: %w", err)
	}

	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tCOMPANY\tCAPTURED")
	for _, lead := range leads {
		name := lead.FirstName
		if lead.LastName != "" {
			name += " " + lead.LastName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			lead.ID, lead.Email, name, lead.Company,
			lead.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// DeleteLeadCommand removes a lead and its sync history.
func DeleteLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-lead", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("lead id is required")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid lead id: %w", err)
	}

	if err := db.DeleteLead(database, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	fmt.Printf("Deleted lead %s\n", id)
	return nil
}

// AddBrandCommand registers a white-label brand.
func AddBrandCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-brand", flag.ExitOnError)
	name := fs.String("name", "", "Brand name (required)")
	slug := fs.String("slug", "", "URL slug (required)")
	logoURL := fs.String("logo-url", "", "Logo URL")
	primaryColor := fs.String("color", "", "Primary color hex")
	_ = fs.Parse(args)

	if *name == "" || *slug == "" {
		return fmt.Errorf("--name and --slug are required")
	}

	brand := &models.Brand{
		Name:         *name,
		Slug:         *slug,
		LogoURL:      *logoURL,
		PrimaryColor: *primaryColor,
	}
	if err := db.CreateBrand(database, brand); err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	fmt.Printf("Created brand %s (%s)\n", brand.Name, brand.ID)
	return nil
}

// ListBrandsCommand lists registered brands.
func ListBrandsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-brands", flag.ExitOnError)
	_ = fs.Parse(args)

	brands, err := db.ListBrands(database)
	if err != nil {
		return fmt.Errorf("failed to list brands: %w", err)
	}

	if len(brands) == 0 {
		fmt.Println("No brands found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG")
	for _, brand := range brands {
		fmt.Fprintf(w, "%s\t%s\t%s\n", brand.ID, brand.Name, brand.Slug)
	}
	return w.Flush()
}
