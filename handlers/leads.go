// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements capture_lead, find_leads, and get_sync_status tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/models"
	"github.com/leadfoundry/roical/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type LeadHandlers struct {
	db     *sql.DB
	syncer *sync.Syncer
}

// NewLeadHandlers wires lead tools; syncer may be nil when the CRM is not
// configured, in which case captured leads stay local.
func NewLeadHandlers(database *sql.DB, syncer *sync.Syncer) *LeadHandlers {
	return &LeadHandlers{db: database, syncer: syncer}
}

type CaptureLeadInput struct {
	Email     string         `json:"email" jsonschema:"Lead email address (required)"`
	FirstName string         `json:"first_name,omitempty" jsonschema:"Lead first name"`
	LastName  string         `json:"last_name,omitempty" jsonschema:"Lead last name"`
	Phone     string         `json:"phone,omitempty" jsonschema:"Lead phone number"`
	Company   string         `json:"company,omitempty" jsonschema:"Lead company name"`
	BrandSlug string         `json:"brand_slug,omitempty" jsonschema:"Brand the lead came through"`
	Data      map[string]any `json:"data,omitempty" jsonschema:"ROI calculator field values keyed by field name"`
}

type CaptureLeadOutput struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	SyncState string `json:"sync_state"`
}

func (h *LeadHandlers) CaptureLead(_ context.Context, request *mcp.CallToolRequest, input CaptureLeadInput) (*mcp.CallToolResult, CaptureLeadOutput, error) {
	if input.Email == "" {
		return nil, CaptureLeadOutput{}, fmt.Errorf("email is required")
	}

	lead := &models.Lead{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Company:   input.Company,
		Data:      models.ROIData(input.Data),
	}

	if input.BrandSlug != "" {
		brand, err := db.GetBrandBySlug(h.db, input.BrandSlug)
		if err != nil {
			return nil, CaptureLeadOutput{}, fmt.Errorf("failed to lookup brand: %w", err)
		}
		if brand == nil {
			return nil, CaptureLeadOutput{}, fmt.Errorf("brand not found: %s", input.BrandSlug)
		}
		lead.BrandID = &brand.ID
	}

	if err := db.CreateLead(h.db, lead); err != nil {
		return nil, CaptureLeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}

	syncState := "skipped"
	if h.syncer != nil {
		h.syncer.QueueLead(lead)
		syncState = "queued"
	}

	return nil, CaptureLeadOutput{
		ID:        lead.ID.String(),
		Email:     lead.Email,
		SyncState: syncState,
	}, nil
}

type FindLeadsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (matches email, name, and company)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type LeadOutput struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Company   string         `json:"company,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt string         `json:"created_at"`
}

type FindLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
}

func (h *LeadHandlers) FindLeads(_ context.Context, request *mcp.CallToolRequest, input FindLeadsInput) (*mcp.CallToolResult, FindLeadsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	leads, err := db.FindLeads(h.db, input.Query, nil, limit)
	if err != nil {
		return nil, FindLeadsOutput{}, fmt.Errorf("failed to find leads: %w", err)
	}

	result := make([]LeadOutput, len(leads))
	for i, lead := range leads {
		result[i] = LeadOutput{
			ID:        lead.ID.String(),
			Email:     lead.Email,
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Phone:     lead.Phone,
			Company:   lead.Company,
			Data:      lead.Data,
			CreatedAt: lead.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return nil, FindLeadsOutput{Leads: result}, nil
}

type GetSyncStatusInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter attempts by status (pending, success, error)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of attempts (default 20)"`
}

type SyncAttemptOutput struct {
	ID        string `json:"id"`
	LeadID    string `json:"lead_id"`
	Status    string `json:"status"`
	ContactID string `json:"contact_id,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

type GetSyncStatusOutput struct {
	ServiceStatus string              `json:"service_status"`
	LastSyncTime  string              `json:"last_sync_time,omitempty"`
	Attempts      []SyncAttemptOutput `json:"attempts"`
}

func (h *LeadHandlers) GetSyncStatus(_ context.Context, request *mcp.CallToolRequest, input GetSyncStatusInput) (*mcp.CallToolResult, GetSyncStatusOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	output := GetSyncStatusOutput{ServiceStatus: models.SyncStatusIdle}

	state, err := db.GetSyncState(h.db, sync.ServiceName)
	if err != nil {
		return nil, GetSyncStatusOutput{}, fmt.Errorf("failed to get sync state: %w", err)
	}
	if state != nil {
		output.ServiceStatus = state.Status
		if state.LastSyncTime != nil {
			output.LastSyncTime = state.LastSyncTime.Format("2006-01-02 15:04:05")
		}
	}

	attempts, err := db.GetSyncAttempts(h.db, input.Status, limit)
	if err != nil {
		return nil, GetSyncStatusOutput{}, fmt.Errorf("failed to get sync attempts: %w", err)
	}

	output.Attempts = make([]SyncAttemptOutput, len(attempts))
	for i, a := range attempts {
		output.Attempts[i] = SyncAttemptOutput{
			ID:        a.ID,
			LeadID:    a.LeadID.String(),
			Status:    a.Status,
			ContactID: a.ContactID,
			Error:     a.ErrorMessage,
			CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return nil, output, nil
}
