package app

import (
	"github.com/spf13/cobra"
)

func NewValidateCmd(mgr Manager) *cobra.Command {
	var strict bool
	var showPass bool
	var showChecks bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate data files against their schemas",
		Args:  cobra.NoArgs,
		Example: `
VALIDATE EVERY DATA FILE
  schema-enforcer validate

STRICT MODE (undeclared properties are failures)
  schema-enforcer validate --strict

SHOW WHICH SCHEMAS APPLY TO WHICH FILES
  schema-enforcer validate --show-checks

RERUN ON EVERY CHANGE
  schema-enforcer validate --watch`,
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on properties not declared by the schema")
	cmd.Flags().BoolVar(&showPass, "show-pass", false, "Show passing checks as well as failures")
	cmd.Flags().BoolVar(&showChecks, "show-checks", false, "Show which schemas each file will be checked against, then exit")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for changes and revalidate")
	outputVal := formatValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		noColour, _ := cmd.Flags().GetBool("nocolour")
		opts := ValidateOptions{
			Strict:     strict,
			ShowPass:   showPass,
			ShowChecks: showChecks,
			Format:     string(outputVal),
			UseColour:  !noColour,
		}

		if watch {
			return mgr.WatchValidation(cmd.Context(), opts, nil)
		}
		return mgr.ValidateData(cmd.Context(), opts)
	}

	return cmd
}
