package cmd

import (
	"fmt"

	"github.com/saurab2057/Filetool/internal/config"
	"github.com/saurab2057/Filetool/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back SQL schema migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, true)
		},
	})
	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, false)
		},
	})
	return migrate
}

func runMigrate(cmd *cobra.Command, up bool) error {
	cfg := config.LoadDatabase()
	if !db.IsSQL(cfg.DBDriver) {
		return fmt.Errorf("migrations only apply to SQL databases, DB_DRIVER is %q", cfg.DBDriver)
	}

	ctx := cmd.Context()
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	if up {
		return db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	}
	return db.MigrateDown(ctx, database.DB, cfg.DBDriver)
}
