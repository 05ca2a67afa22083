package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/playperu/eventmap/internal/database"
	"github.com/playperu/eventmap/internal/migrations"
	"github.com/playperu/eventmap/internal/store"
)

const defaultDBPath = "data/eventmap.db"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventmapctl",
		Short:         "Manage event maps, quiz questions and admin access",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DB_PATH env var)")

	root.AddCommand(
		newMigrateCmd(),
		newMapsCmd(),
		newActivateCmd(),
		newSeedQuizCmd(),
		newHashSecretCmd(),
		newWalkCmd(),
	)
	return root
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then DB_PATH env var, then the default.
func resolveDBPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	return defaultDBPath
}

// openStore opens the database with the schema applied. The returned func
// closes it.
func openStore(ctx context.Context, cmd *cobra.Command) (*store.DocStore, func(), error) {
	path := resolveDBPath(cmd)
	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return store.New(db), func() { db.Close() }, nil
}
