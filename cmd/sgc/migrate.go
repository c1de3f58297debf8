package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/sgc-hq/sgc/modules/competency/infrastructure/persistence"
	"github.com/sgc-hq/sgc/pkg/configuration"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return persistence.Migrate(db)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return persistence.MigrateDown(db)
		},
	})

	return cmd
}

func openDB() (*sql.DB, error) {
	return sql.Open("pgx", configuration.Use().Database.Opts)
}
