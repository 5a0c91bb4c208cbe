package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the portfolio (stored record or default) to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := openWriteStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		out, err := stack.portfolioUseCase.ExecuteGetPortfolio(cmd.Context())
		if err != nil {
			return err
		}
		if out.IsDefault {
			appLogger.Warn("No portfolio stored, exporting the default record")
		}
		appLogger.Debug("Exporting portfolio", zap.String("format", exportFormat))
		return encodePortfolio(cmd.OutOrStdout(), out.Portfolio, exportFormat)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", formatYAML, "Output format: yaml or json")
	rootCmd.AddCommand(exportCmd)
}
