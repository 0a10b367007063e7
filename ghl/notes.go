// ABOUTME: Note template rendering for synced contacts
// ABOUTME: Replaces {{placeholder}} tokens with formatted lead and ROI values
package ghl

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leadfoundry/roical/models"
)

// currencyFields get a $ prefix and thousands separators.
var currencyFields = map[string]bool{
	"currentAdSpend":  true,
	"currentRevenue":  true,
	"currentCPL":      true,
	"currentCPA":      true,
	"newRevenue":      true,
	"revenueIncrease": true,
	"cpaImprovement":  true,
}

// percentFields get a trailing %.
var percentFields = map[string]bool{
	"currentCR": true,
	"targetCR":  true,
}

// FormatNote renders a note body from a {{placeholder}} template. Every
// placeholder in the fixed vocabulary (contact identity, ROI fields, date)
// is replaced everywhere it occurs; placeholders with no data resolve to
// empty string; tokens outside the vocabulary are left untouched. The
// {{date}} token renders the given instant, which comes from the client's
// clock.
func FormatNote(template string, lead LeadData, now time.Time) string {
	replacements := map[string]string{
		"firstName": lead.FirstName,
		"lastName":  lead.LastName,
		"email":     lead.Email,
		"phone":     lead.Phone,
		"company":   lead.Company,
		"date":      now.Format("January 2, 2006"),
	}

	for _, field := range models.ROIFields {
		replacements[field] = formatFieldValue(field, lead.Data)
	}

	result := template
	for name, value := range replacements {
		result = strings.ReplaceAll(result, "{{"+name+"}}", value)
	}
	return result
}

func formatFieldValue(field string, data models.ROIData) string {
	if s, ok := data.String(field); ok {
		return s
	}
	n, ok := data.Number(field)
	if !ok {
		return ""
	}

	formatted := humanize.Commaf(n)
	switch {
	case currencyFields[field]:
		return "$" + formatted
	case percentFields[field]:
		return formatted + "%"
	default:
		return formatted
	}
}
