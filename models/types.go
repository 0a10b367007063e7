// ABOUTME: Data models for leads, brands, and ROI metric bags
// ABOUTME: Defines the field vocabulary shared by the calculator and CRM sync
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ROIData is the loose bag of calculator outputs attached to a captured
// lead. Keys come from ROIFields; absent keys mean the visitor never
// reached that part of the calculator, and are omitted from CRM sync.
type ROIData map[string]any

// ROIFields is the full vocabulary of syncable calculator fields.
var ROIFields = []string{
	"currentLeads",
	"currentSales",
	"currentAdSpend",
	"currentRevenue",
	"currentCR",
	"currentCPL",
	"currentCPA",
	"scenarioName",
	"targetCR",
	"newSales",
	"newRevenue",
	"salesIncrease",
	"revenueIncrease",
	"cpaImprovement",
}

type Lead struct {
	ID        uuid.UUID  `json:"id"`
	BrandID   *uuid.UUID `json:"brand_id,omitempty"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	Data      ROIData    `json:"data,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Brand struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	PrimaryColor string    `json:"primary_color,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// Per-attempt sync log status constants.
const (
	SyncAttemptPending = "pending"
	SyncAttemptSuccess = "success"
	SyncAttemptError   = "error"
)

type SyncState struct {
	Service      string     `json:"service"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type SyncAttempt struct {
	ID           string    `json:"id"`
	LeadID       uuid.UUID `json:"lead_id"`
	Service      string    `json:"service"`
	Status       string    `json:"status"`
	ContactID    string    `json:"contact_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Number returns the named ROI field as a float64 when it is present and
// numeric. JSON decoding hands us float64; values set in Go code may be
// ints, so both are accepted.
func (d ROIData) Number(name string) (float64, bool) {
	v, ok := d[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String returns the named ROI field as a string when present.
func (d ROIData) String(name string) (string, bool) {
	v, ok := d[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
