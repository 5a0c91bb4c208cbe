package main

import (
	"github.com/spf13/cobra"

	"github.com/khoahotran/portfolio-builder/adapters/persistence"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := persistence.NewMigrator(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger)
		if err != nil {
			return err
		}
		defer m.Close()
		return m.Up()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step by default, all with --steps 0)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := persistence.NewMigrator(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger)
		if err != nil {
			return err
		}
		defer m.Close()
		return m.Down(migrateSteps)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back; 0 rolls back all")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
