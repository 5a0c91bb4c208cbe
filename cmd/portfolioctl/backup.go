package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khoahotran/portfolio-builder/adapters/media_storage"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	backupUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a YAML snapshot of the stored portfolio to Cloudinary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			return err
		}

		dbPool, err := persistence.NewPostgresPool(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		uc := backupUC.NewBackupUseCase(persistence.NewPostgresPortfolioRepo(dbPool, appLogger), uploader, appLogger)
		out, err := uc.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backup uploaded: %s\n", out.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
