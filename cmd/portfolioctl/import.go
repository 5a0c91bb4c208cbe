package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply a YAML or JSON document as a portfolio update",
	Long: `import reads a YAML or JSON document and applies it exactly like a
PUT /api/portfolio request: present fields are merged into the stored record,
lists are replaced wholesale and the result is validated before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		payload, err := payloadFromDocument(data)
		if err != nil {
			return err
		}
		input, err := portfolioUC.ParseUpdateInput(payload)
		if err != nil {
			return describeAppError(err)
		}

		stack, err := openWriteStack(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		out, err := stack.portfolioUseCase.ExecuteUpdatePortfolio(cmd.Context(), input)
		if err != nil {
			return describeAppError(err)
		}
		appLogger.Info("Portfolio imported", zap.Strings("fields", input.Patch.Keys()), zap.Bool("created", out.Created))
		fmt.Fprintf(cmd.OutOrStdout(), "imported portfolio %s (version %d)\n", out.Portfolio.ID, out.Portfolio.Version)
		return nil
	},
}

// describeAppError flattens validation messages into the returned error so
// they reach the terminal.
func describeAppError(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || len(appErr.Violations) == 0 {
		return err
	}
	msg := appErr.Message + ":"
	for _, v := range appErr.Violations {
		msg += "\n  - " + v
	}
	return fmt.Errorf("%s", msg)
}

func init() {
	rootCmd.AddCommand(importCmd)
}
