// ABOUTME: MCP server subcommand
// ABOUTME: Exposes the ROI calculator and lead tools over stdio
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/handlers"
	"github.com/leadfoundry/roical/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(database *sql.DB) error {
	log.Println("Starting ROI Calculator MCP Server...")

	ctx := context.Background()

	// Lead capture syncs to the CRM only when credentials are stored
	client := ghl.NewClient(&db.SettingsStore{DB: database})
	var syncer *sync.Syncer
	connected, err := client.Connected(ctx)
	if err != nil {
		log.Printf("warning: could not check CRM connection: %v", err)
	}
	if connected {
		syncer = sync.New(database, client)
	}

	roiHandlers := handlers.NewROIHandlers()
	leadHandlers := handlers.NewLeadHandlers(database, syncer)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "roical",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "calculate_roi",
		Description: "Calculate conversion rate, cost per lead, and cost per acquisition from current marketing metrics",
	}, roiHandlers.CalculateROI)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "model_scenario",
		Description: "Model a what-if scenario with a target conversion rate against current metrics",
	}, roiHandlers.ModelScenario)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "capture_lead",
		Description: "Save a calculator lead and queue a background CRM sync",
	}, leadHandlers.CaptureLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_leads",
		Description: "Search captured leads by email, name, or company",
	}, leadHandlers.FindLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sync_status",
		Description: "Show CRM sync state and recent sync attempts",
	}, leadHandlers.GetSyncStatus)

	// Run server on stdio transport
	return server.Run(ctx, &mcp.StdioTransport{})
}
