// ABOUTME: Entry point for the ROI calculator server and CLI
// ABOUTME: Routes to the API server, MCP server, or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/leadfoundry/roical/cli"
	"github.com/leadfoundry/roical/db"
)

const version = "0.1.0"

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/roical/roical.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("roical version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if *initOnly {
		log.Println("Database initialized successfully")
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		if err := cli.ServeCommand(database, commandArgs); err != nil {
			log.Fatalf("API server failed: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(database); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "leads":
		if len(commandArgs) == 0 {
			fmt.Println("Error: leads requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		leadsCommand := commandArgs[0]
		leadsArgs := commandArgs[1:]

		switch leadsCommand {
		case "list":
			if err := cli.ListLeadsCommand(database, leadsArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete":
			if err := cli.DeleteLeadCommand(database, leadsArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown leads command: %s\n\n", leadsCommand)
			printUsage()
			os.Exit(1)
		}

	case "brands":
		if len(commandArgs) == 0 {
			fmt.Println("Error: brands requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		brandsCommand := commandArgs[0]
		brandsArgs := commandArgs[1:]

		switch brandsCommand {
		case "add":
			if err := cli.AddBrandCommand(database, brandsArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list":
			if err := cli.ListBrandsCommand(database, brandsArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown brands command: %s\n\n", brandsCommand)
			printUsage()
			os.Exit(1)
		}

	case "ghl":
		if len(commandArgs) == 0 {
			fmt.Println("Error: ghl requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		ghlCommand := commandArgs[0]
		ghlArgs := commandArgs[1:]

		switch ghlCommand {
		case "status":
			if err := cli.GHLStatusCommand(database, ghlArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "sync":
			if err := cli.GHLSyncLeadCommand(database, ghlArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "mappings":
			if err := cli.GHLMappingsCommand(database, ghlArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown ghl command: %s\n\n", ghlCommand)
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`roical v%s - Marketing ROI calculator with CRM sync

USAGE:
  roical [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/roical/roical.db)
  --init                 Initialize database and exit

COMMANDS:
  serve                  Start the JSON API server
    --port <n>              Port to listen on (default: 8080)

  mcp                    Start MCP server (stdio)

  leads list             List captured leads
    --query <text>          Search by email, name, or company
    --brand <slug>          Filter by brand
    --limit <n>             Max results (default: 50)
  leads delete <id>      Delete a lead and its sync history

  brands add             Register a white-label brand
    --name <name>           Brand name (required)
    --slug <slug>           URL slug (required)
    --logo-url <url>        Logo URL
    --color <hex>           Primary color
  brands list            List brands

  ghl status             Show CRM connection and recent sync attempts
  ghl sync <lead-id>     Replay CRM sync for one lead
  ghl mappings           Show ROI field mappings
    --set <json>            Replace mappings with a JSON object
`, version)
}
