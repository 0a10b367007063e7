// ABOUTME: Sync orchestrator pushing lead and ROI data into the CRM
// ABOUTME: Finds or creates the contact, projects custom fields, attaches a best-effort note
package ghl

import (
	"context"
	"fmt"
	"log"

	"github.com/leadfoundry/roical/models"
	"golang.org/x/sync/errgroup"
)

// LeadData is the per-event sync input: contact identity plus the ROI bag.
// Email is required; everything else is optional.
type LeadData struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Data      models.ROIData
}

// SyncROIData finds or creates the CRM contact for the lead, writes the
// mapped custom fields, and attaches a formatted note when notes are
// enabled. The contact write is the primary effect; note attachment is
// best-effort and its failure is logged, not returned.
func (c *Client) SyncROIData(ctx context.Context, locationID string, lead LeadData) (*ContactResult, error) {
	if lead.Email == "" {
		return nil, fmt.Errorf("lead email is required for sync")
	}

	var mapping map[string]string
	var notes NotesConfig

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mapping, err = FieldMappings(gctx, c.store)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = LoadNotesConfig(gctx, c.store)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load sync configuration: %w", err)
	}

	existing, err := c.SearchContactByEmail(ctx, locationID, lead.Email)
	if err != nil {
		return nil, err
	}

	req := ContactRequest{
		FirstName:    lead.FirstName,
		LastName:     lead.LastName,
		Email:        lead.Email,
		Phone:        lead.Phone,
		CompanyName:  lead.Company,
		CustomFields: ProjectCustomFields(lead.Data, mapping),
	}

	var result *ContactResult
	if existing != nil {
		result, err = c.UpdateContact(ctx, existing.ID, req)
	} else {
		result, err = c.CreateContact(ctx, locationID, req)
	}
	if err != nil {
		return nil, err
	}

	if notes.Enabled && notes.Template != "" && result.Contact.ID != "" {
		body := FormatNote(notes.Template, lead, c.now())
		if _, err := c.AddNote(ctx, result.Contact.ID, body); err != nil {
			log.Printf("gohighlevel sync: failed to add note to contact %s: %v", result.Contact.ID, err)
		}
	}

	return result, nil
}
