// ABOUTME: API server subcommand
// ABOUTME: Starts the JSON API for the calculator frontend and admin panel
package cli

import (
	"database/sql"
	"flag"

	"github.com/leadfoundry/roical/db"
	"github.com/leadfoundry/roical/ghl"
	"github.com/leadfoundry/roical/sync"
	"github.com/leadfoundry/roical/web"
)

// ServeCommand starts the HTTP API server.
func ServeCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	_ = fs.Parse(args)

	client := ghl.NewClient(&db.SettingsStore{DB: database})
	syncer := sync.New(database, client)

	server := web.NewServer(database, client, syncer)
	return server.Start(*port)
}
