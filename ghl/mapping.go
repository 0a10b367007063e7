// ABOUTME: Admin-configured field mappings and notes configuration
// ABOUTME: Projects calculator fields onto CRM custom-field keys, with sensible defaults
package ghl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leadfoundry/roical/models"
)

// DefaultFieldMappings maps every calculator field to a roi_-prefixed
// custom-field key, so sync behaves sensibly with zero admin configuration.
func DefaultFieldMappings() map[string]string {
	return map[string]string{
		"currentLeads":    "roi_current_leads",
		"currentSales":    "roi_current_sales",
		"currentAdSpend":  "roi_current_ad_spend",
		"currentRevenue":  "roi_current_revenue",
		"currentCR":       "roi_current_cr",
		"currentCPL":      "roi_current_cpl",
		"currentCPA":      "roi_current_cpa",
		"scenarioName":    "roi_scenario_name",
		"targetCR":        "roi_target_cr",
		"newSales":        "roi_new_sales",
		"newRevenue":      "roi_new_revenue",
		"salesIncrease":   "roi_sales_increase",
		"revenueIncrease": "roi_revenue_increase",
		"cpaImprovement":  "roi_cpa_improvement",
	}
}

// FieldMappings returns the admin-configured mapping from calculator field
// names to CRM custom-field keys, or the defaults when unset. Fields
// missing from the mapping are omitted from sync.
func FieldMappings(ctx context.Context, store SettingStore) (map[string]string, error) {
	raw, err := store.Get(ctx, KeyFieldMappings)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return DefaultFieldMappings(), nil
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse field mappings: %w", err)
	}
	return mapping, nil
}

// SaveFieldMappings persists an admin-edited mapping.
func SaveFieldMappings(ctx context.Context, store SettingStore, mapping map[string]string) error {
	encoded, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to encode field mappings: %w", err)
	}
	return store.Set(ctx, KeyFieldMappings, string(encoded))
}

// NotesConfig controls whether a formatted note is attached after sync.
type NotesConfig struct {
	Enabled  bool
	Template string
}

// LoadNotesConfig reads the notes settings. Enabled is the literal string
// "true"; the template defaults to empty.
func LoadNotesConfig(ctx context.Context, store SettingStore) (NotesConfig, error) {
	enabled, err := store.Get(ctx, KeyNotesEnabled)
	if err != nil {
		return NotesConfig{}, err
	}
	template, err := store.Get(ctx, KeyNotesTemplate)
	if err != nil {
		return NotesConfig{}, err
	}

	return NotesConfig{
		Enabled:  enabled == "true",
		Template: template,
	}, nil
}

// ProjectCustomFields builds the custom-fields payload by passing the ROI
// data bag through the mapping. Unmapped or absent fields are dropped.
func ProjectCustomFields(data models.ROIData, mapping map[string]string) map[string]any {
	custom := make(map[string]any)
	for _, field := range models.ROIFields {
		value, ok := data[field]
		if !ok {
			continue
		}
		key, ok := mapping[field]
		if !ok || key == "" {
			continue
		}
		custom[key] = value
	}
	return custom
}
