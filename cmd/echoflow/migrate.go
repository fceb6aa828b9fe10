package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/banshee-data/echoflow/internal/db"
)

const migrateUsage = "usage: echoflow migrate up|down|version -db path"

func runMigrate(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return errors.New(migrateUsage)
	}
	action := args[0]
	fs := flag.NewFlagSet("migrate "+action, flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite run store")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("-db is required")
	}

	// Open without migrating so the schema is left to the action.
	database, err := db.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	migrations := db.MigrationsFS()

	switch action {
	case "up":
		log.Printf("Running migrations...")
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
	case "down":
		log.Printf("Rolling back one migration...")
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q\n%s", action, migrateUsage)
	}

	version, dirty, err := database.MigrateVersion(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}
