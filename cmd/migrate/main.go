package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/migrations"
)

func main() {
	status := flag.Bool("status", false, "list pending migrations without applying them")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", cfg.Database.Driver)

	ctx := context.Background()

	pending, err := postgres.PendingMigrations(ctx, db, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read migration status: %v\n", err)
		os.Exit(1)
	}

	if len(pending) == 0 {
		fmt.Println("No pending migrations")
		return
	}

	for _, name := range pending {
		fmt.Printf("Pending: %s\n", name)
	}
	if *status {
		return
	}

	applied, err := postgres.RunMigrations(ctx, db, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nApplied %d migration(s) successfully\n", applied)
}
