// ABOUTME: ROI calculator MCP tool handlers
// ABOUTME: Implements calculate_roi and model_scenario tools
package handlers

import (
	"context"
	"fmt"

	"github.com/leadfoundry/roical/calc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ROIHandlers struct{}

func NewROIHandlers() *ROIHandlers {
	return &ROIHandlers{}
}

type CalculateROIInput struct {
	Leads     float64 `json:"leads" jsonschema:"Current lead volume (required)"`
	Sales     float64 `json:"sales" jsonschema:"Current closed sales"`
	AdSpend   float64 `json:"ad_spend" jsonschema:"Current ad spend in dollars"`
	Revenue   float64 `json:"revenue" jsonschema:"Current revenue in dollars"`
	Timeframe string  `json:"timeframe,omitempty" jsonschema:"monthly or annual (default monthly)"`
}

type CalculateROIOutput struct {
	ConversionRate     float64 `json:"conversion_rate"`
	CostPerLead        float64 `json:"cost_per_lead"`
	CostPerAcquisition float64 `json:"cost_per_acquisition"`
	RevenuePerSale     float64 `json:"revenue_per_sale"`
	AnnualRevenue      float64 `json:"annual_revenue"`
	AnnualAdSpend      float64 `json:"annual_ad_spend"`
}

func (h *ROIHandlers) CalculateROI(_ context.Context, request *mcp.CallToolRequest, input CalculateROIInput) (*mcp.CallToolResult, CalculateROIOutput, error) {
	inputs, err := parseInputs(input)
	if err != nil {
		return nil, CalculateROIOutput{}, err
	}

	m := calc.Derive(inputs)
	annual := calc.Scale(inputs, calc.Monthly, calc.Annual)

	return nil, CalculateROIOutput{
		ConversionRate:     m.ConversionRate,
		CostPerLead:        m.CostPerLead,
		CostPerAcquisition: m.CostPerAcquisition,
		RevenuePerSale:     m.RevenuePerSale,
		AnnualRevenue:      annual.Revenue,
		AnnualAdSpend:      annual.AdSpend,
	}, nil
}

type ModelScenarioInput struct {
	Leads        float64 `json:"leads" jsonschema:"Current lead volume (required)"`
	Sales        float64 `json:"sales" jsonschema:"Current closed sales"`
	AdSpend      float64 `json:"ad_spend" jsonschema:"Current ad spend in dollars"`
	Revenue      float64 `json:"revenue" jsonschema:"Current revenue in dollars"`
	Timeframe    string  `json:"timeframe,omitempty" jsonschema:"monthly or annual (default monthly)"`
	ScenarioName string  `json:"scenario_name,omitempty" jsonschema:"Label for the scenario"`
	TargetCR     float64 `json:"target_cr" jsonschema:"Target conversion rate percentage (required)"`
}

type ModelScenarioOutput struct {
	NewSales        float64 `json:"new_sales"`
	NewRevenue      float64 `json:"new_revenue"`
	SalesIncrease   float64 `json:"sales_increase"`
	RevenueIncrease float64 `json:"revenue_increase"`
	NewCPA          float64 `json:"new_cpa"`
	CPAImprovement  float64 `json:"cpa_improvement"`
}

func (h *ROIHandlers) ModelScenario(_ context.Context, request *mcp.CallToolRequest, input ModelScenarioInput) (*mcp.CallToolResult, ModelScenarioOutput, error) {
	inputs, err := parseInputs(CalculateROIInput{
		Leads:     input.Leads,
		Sales:     input.Sales,
		AdSpend:   input.AdSpend,
		Revenue:   input.Revenue,
		Timeframe: input.Timeframe,
	})
	if err != nil {
		return nil, ModelScenarioOutput{}, err
	}

	p, err := calc.Project(inputs, calc.Scenario{Name: input.ScenarioName, TargetCR: input.TargetCR})
	if err != nil {
		return nil, ModelScenarioOutput{}, err
	}

	return nil, ModelScenarioOutput{
		NewSales:        p.NewSales,
		NewRevenue:      p.NewRevenue,
		SalesIncrease:   p.SalesIncrease,
		RevenueIncrease: p.RevenueIncrease,
		NewCPA:          p.NewCPA,
		CPAImprovement:  p.CPAImprovement,
	}, nil
}

func parseInputs(input CalculateROIInput) (calc.Inputs, error) {
	if input.Leads <= 0 {
		return calc.Inputs{}, fmt.Errorf("leads must be greater than zero")
	}

	inputs := calc.Inputs{
		Leads:   input.Leads,
		Sales:   input.Sales,
		AdSpend: input.AdSpend,
		Revenue: input.Revenue,
	}

	switch input.Timeframe {
	case "", string(calc.Monthly):
		// monthly is the working timeframe
	case string(calc.Annual):
		inputs = calc.Scale(inputs, calc.Annual, calc.Monthly)
	default:
		return calc.Inputs{}, fmt.Errorf("timeframe must be monthly or annual, got %q", input.Timeframe)
	}

	return inputs, nil
}
