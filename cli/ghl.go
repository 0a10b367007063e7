// ABOUTME: GoHighLevel CLI commands
// ABOUTME: Connection status, manual lead replay, and field mapping inspection
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/models"
	"github.com/leadfoundry/roical/sync"
)

// GHLStatusCommand shows CRM connection and sync state.
func GHLStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("ghl-status", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Recent sync attempts to show")
	_ = fs.Parse(args)

	ctx := context.Background()
	store := &db.SettingsStore{DB: database}
	client := ghl.NewClient(store)

	connected, err := client.Connected(ctx)
	if err != nil {
		return fmt.Errorf("failed to check connection: %w", err)
	}

	if !connected {
		fmt.Println("GoHighLevel: not connected")
		fmt.Println("Run the serve command and visit /oauth/ghl/connect to authorize.")
		return nil
	}

	locationID, err := client.LocationID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read location: %w", err)
	}
	fmt.Printf("GoHighLevel: connected (location %s)\n", locationID)

	state, err := db.GetSyncState(database, sync.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to read sync state: %w", err)
	}
	if state != nil {
		fmt.Printf("Sync status: %s\n", state.Status)
		if state.LastSyncTime != nil {
			fmt.Printf("Last sync: %s\n", state.LastSyncTime.Format("2006-01-02 15:04:05"))
		}
		if state.ErrorMessage != "" {
			fmt.Printf("Last error: %s\n", state.ErrorMessage)
		}
	}

	attempts, err := db.GetSyncAttempts(database, "", *limit)
	if err != nil {
		return fmt.Errorf("failed to read sync attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEAD\tSTATUS\tCONTACT\tERROR\tWHEN")
	for _, a := range attempts {
		errMsg := a.ErrorMessage
		if len(errMsg) > 40 {
			errMsg = errMsg[:40] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.LeadID, a.Status, a.ContactID, errMsg,
			a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// GHLSyncLeadCommand replays the CRM sync for one lead.
func GHLSyncLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("ghl-sync", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("lead id is required")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid lead id: %w", err)
	}

	lead, err := db.GetLead(database, id)
	if err != nil {
		return fmt.Errorf("failed to load lead: %w", err)
	}
	if lead == nil {
		return fmt.Errorf("lead not found: %s", id)
	}

	client := ghl.NewClient(&db.SettingsStore{DB: database})
	syncer := sync.New(database, client)

	if err := syncer.SyncLead(context.Background(), lead); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Synced lead %s\n", lead.Email)
	return nil
}

// GHLMappingsCommand shows or replaces the ROI field mappings.
func GHLMappingsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("ghl-mappings", flag.ExitOnError)
	set := fs.String("set", "", "JSON object of field name to custom field key")
	_ = fs.Parse(args)

	ctx := context.Background()
	store := &db.SettingsStore{DB: database}

	if *set != "" {
		var mapping map[string]string
		if err := json.Unmarshal([]byte(*set), &mapping); err != nil {
			return fmt.Errorf("invalid mapping JSON: %w", err)
		}
		if err := ghl.SaveFieldMappings(ctx, store, mapping); err != nil {
			return fmt.Errorf("failed to save mappings: %w", err)
		}
		fmt.Println("Field mappings saved")
		return nil
	}

	mapping, err := ghl.FieldMappings(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tCUSTOM FIELD KEY")
	for _, field := range models.ROIFields {
		if key, ok := mapping[field]; ok {
			fmt.Fprintf(w, "%s\t%s\n", field, key)
		}
	}
	return w.Flush()
}
