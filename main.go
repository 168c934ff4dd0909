package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"insurecalc/cmd"
	"insurecalc/config"
	"insurecalc/database"
)

const usage = `usage: insurecalc [command]

commands:
  (none)                      serve the HTTP API
  migrate up|down [n]|status  manage the database schema
  import cities|salaries FILE replace a dataset from an .xlsx workbook
  compute CITY YEAR           calculate contributions and replace the results
  cities                      list selectable city/year pairs
  results                     list stored results
  stats                       show dataset counts`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := dispatch(ctx, os.Args[1:]); err != nil {
		log.WithError(err).Error("insurecalc failed")
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return cmd.Run(ctx)
	}

	switch args[0] {
	case "migrate":
		return handleMigrationCommand(args[1:])
	case "import":
		if len(args) != 3 {
			return fmt.Errorf("usage: insurecalc import cities|salaries FILE")
		}
		return cmd.Import(ctx, args[1], args[2])
	case "compute":
		if len(args) != 3 {
			return fmt.Errorf("usage: insurecalc compute CITY YEAR")
		}
		return cmd.Compute(ctx, args[1], args[2])
	case "cities":
		return cmd.ListCities(ctx)
	case "results":
		return cmd.ListResults(ctx)
	case "stats":
		return cmd.Stats(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: insurecalc migrate [up|down|status] [args...]")
	}

	cfg := config.Get()
	cmd.SetupLogging(cfg)
	databaseURL := cfg.GetDatabaseURL()

	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
