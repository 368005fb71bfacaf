package app

import (
	"github.com/spf13/cobra"
)

func NewHostsCmd(mgr Manager) *cobra.Command {
	var inventoryDir string
	var host string
	var showPass bool
	var showChecks bool

	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"ansible"},
		Short:   "Validate host variables from an inventory directory",
		Args:    cobra.NoArgs,
		Example: `
VALIDATE EVERY HOST
  schema-enforcer hosts --inventory ./inventory

LIMIT TO ONE HOST
  schema-enforcer hosts --inventory ./inventory --host spine1`,
	}

	cmd.Flags().StringVarP(&inventoryDir, "inventory", "i", "", "Inventory directory (overrides the settings file)")
	cmd.Flags().StringVar(&host, "host", "", "Validate a single host by name")
	cmd.Flags().BoolVar(&showPass, "show-pass", false, "Show passing checks as well as failures")
	cmd.Flags().BoolVar(&showChecks, "show-checks", false, "Show which schemas each host will be checked against, then exit")
	outputVal := formatValue("text")
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		noColour, _ := cmd.Flags().GetBool("nocolour")
		return mgr.ValidateHosts(cmd.Context(), HostOptions{
			Inventory:  inventoryDir,
			Host:       host,
			ShowPass:   showPass,
			ShowChecks: showChecks,
			Format:     string(outputVal),
			UseColour:  !noColour,
		})
	}

	return cmd
}
