package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karthik/placementhub/internal/catalog"
)

var catalogCommand = &cobra.Command{
	Use:   "catalog",
	Short: "Static opportunity catalog tools",
}

var catalogValidateCommand = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a catalog file against the opportunity schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidateCmd,
}

func init() {
	catalogCommand.AddCommand(catalogValidateCommand)
	rootCmd.AddCommand(catalogCommand)
}

func runCatalogValidateCmd(cmd *cobra.Command, args []string) error {
	opps, err := catalog.Load(args[0])
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not a valid catalog:\n", args[0])
			for _, f := range verr.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.Field, f.Message)
			}
			return fmt.Errorf("%d schema violations", len(verr.Errors))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d opportunities\n", args[0], len(opps))
	return nil
}
