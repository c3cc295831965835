package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations",
	}
	migrateRollback bool
	migrateList     bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateList, "list", "l", false, "to list the embedded migration files")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	if migrateList {
		files, err := database.MigrationFiles()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	}

	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if migrateRollback {
		if err := db.Rollback(ctx); err != nil {
			return err
		}
		lg.Info("rolled back latest migration")
		return nil
	}

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	lg.Info("migrations applied", "driver", db.Driver)
	return nil
}
