package main

import (
	"fmt"

	"github.com/spf13/cobra"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the default portfolio when none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := openWriteStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		out, err := stack.portfolioUseCase.ExecuteSeedPortfolio(cmd.Context(), portfolioUC.SeedPortfolioInput{Force: seedForce})
		if err != nil {
			return err
		}
		if !out.Seeded {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio already exists (version %d); use --force to overwrite\n", out.Portfolio.Version)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded portfolio %s (version %d)\n", out.Portfolio.ID, out.Portfolio.Version)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Overwrite an existing portfolio with the default record")
	rootCmd.AddCommand(seedCmd)
}
