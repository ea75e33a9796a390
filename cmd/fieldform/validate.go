package main

import (
	"fmt"
	"io"

	"github.com/aretw0/fieldform/internal/cli"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema]",
	Short: "Check the metamodel for consistency",
	Long: `Loads the metamodel and reports every problem found: duplicate ids,
entities without children, code fields without codes and key attributes
that are not plain children.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.Schema
		}
		return runValidate(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	model, err := cli.LoadSchema(cmd.Context(), path)
	if err != nil {
		printValidationErrors(cmd.ErrOrStderr(), err)
		return fmt.Errorf("validation failed: %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema is valid! ✅ %q has %d definitions\n", model.Root().Name, model.Len())
	return nil
}

func printValidationErrors(w io.Writer, err error) {
	errs := schema.ValidationErrors(err)
	if len(errs) == 0 {
		errs = []error{err}
	}
	for _, e := range errs {
		fmt.Fprintf(w, "  - %v\n", e)
	}
}
