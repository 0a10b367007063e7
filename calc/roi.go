// ABOUTME: Dual-timeframe ROI arithmetic for the marketing calculator
// ABOUTME: Derives conversion rate, CPL, CPA, and scenario projections from raw inputs
package calc

import (
	"fmt"

	"github.com/leadfoundry/roical/models"
)

// Timeframe selects whether inputs are interpreted as monthly or annual
// figures. Rates are timeframe-independent; volumes and spend scale by 12.
type Timeframe string

const (
	Monthly Timeframe = "monthly"
	Annual  Timeframe = "annual"
)

// Inputs are the visitor-entered current marketing metrics.
type Inputs struct {
	Leads   float64
	Sales   float64
	AdSpend float64
	Revenue float64
}

// Metrics are the derived current-state numbers.
type Metrics struct {
	ConversionRate     float64 // percent
	CostPerLead        float64
	CostPerAcquisition float64
	RevenuePerSale     float64
}

// Scenario is a prospective what-if against the current inputs.
type Scenario struct {
	Name     string
	TargetCR float64 // percent
}

// Projection is the modeled outcome of applying a scenario.
type Projection struct {
	NewSales        float64
	NewRevenue      float64
	SalesIncrease   float64
	RevenueIncrease float64
	NewCPA          float64
	CPAImprovement  float64
}

// Derive computes the current-state metrics. Division by zero yields zero
// rather than NaN so partially-filled forms still render.
func Derive(in Inputs) Metrics {
	return Metrics{
		ConversionRate:     ratio(in.Sales, in.Leads) * 100,
		CostPerLead:        ratio(in.AdSpend, in.Leads),
		CostPerAcquisition: ratio(in.AdSpend, in.Sales),
		RevenuePerSale:     ratio(in.Revenue, in.Sales),
	}
}

// Project models a scenario: same leads and spend, new conversion rate.
func Project(in Inputs, sc Scenario) (Projection, error) {
	if sc.TargetCR < 0 || sc.TargetCR > 100 {
		return Projection{}, fmt.Errorf("target conversion rate must be between 0 and 100, got %.2f", sc.TargetCR)
	}

	m := Derive(in)
	newSales := in.Leads * sc.TargetCR / 100
	newRevenue := newSales * m.RevenuePerSale
	newCPA := ratio(in.AdSpend, newSales)

	return Projection{
		NewSales:        newSales,
		NewRevenue:      newRevenue,
		SalesIncrease:   newSales - in.Sales,
		RevenueIncrease: newRevenue - in.Revenue,
		NewCPA:          newCPA,
		CPAImprovement:  m.CostPerAcquisition - newCPA,
	}, nil
}

// Scale converts inputs between timeframes. Monthly inputs viewed annually
// multiply volumes by 12; rates derived afterwards are unchanged.
func Scale(in Inputs, from, to Timeframe) Inputs {
	if from == to {
		return in
	}
	factor := 12.0
	if from == Annual {
		factor = 1.0 / 12.0
	}
	return Inputs{
		Leads:   in.Leads * factor,
		Sales:   in.Sales * factor,
		AdSpend: in.AdSpend * factor,
		Revenue: in.Revenue * factor,
	}
}

// Snapshot flattens inputs, derived metrics, and an optional projection
// into the ROI data bag synced to the CRM. Only fields the visitor
// actually produced are present.
func Snapshot(in Inputs, sc *Scenario) (models.ROIData, error) {
	m := Derive(in)
	data := models.ROIData{
		"currentLeads":   in.Leads,
		"currentSales":   in.Sales,
		"currentAdSpend": in.AdSpend,
		"currentRevenue": in.Revenue,
		"currentCR":      m.ConversionRate,
		"currentCPL":     m.CostPerLead,
		"currentCPA":     m.CostPerAcquisition,
	}

	if sc != nil {
		p, err := Project(in, *sc)
		if err != nil {
			return nil, err
		}
		data["scenarioName"] = sc.Name
		data["targetCR"] = sc.TargetCR
		data["newSales"] = p.NewSales
		data["newRevenue"] = p.NewRevenue
		data["salesIncrease"] = p.SalesIncrease
		data["revenueIncrease"] = p.RevenueIncrease
		data["cpaImprovement"] = p.CPAImprovement
	}

	return data, nil
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
