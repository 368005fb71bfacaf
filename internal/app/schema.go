package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/networktocode/schema-enforcer/internal/schema"
)

func NewSchemaCmd(mgr Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and test the loaded schemas",
	}

	cmd.AddCommand(newSchemaListCmd(mgr))
	cmd.AddCommand(newSchemaDumpCmd(mgr))
	cmd.AddCommand(newSchemaCheckCmd(mgr))
	cmd.AddCommand(newSchemaGenerateInvalidCmd(mgr))

	return cmd
}

func newSchemaListCmd(mgr Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every loaded schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.ListSchemas(cmd.OutOrStdout())
		},
	}
}

func newSchemaDumpCmd(mgr Manager) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print schema documents with references resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.DumpSchemas(cmd.OutOrStdout(), id)
		},
	}
	cmd.Flags().StringVar(&id, "schema-id", "", "Dump a single schema by id (default: all)")
	return cmd
}

func newSchemaCheckCmd(mgr Manager) *cobra.Command {
	var strict bool
	var showPass bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every schema against its test fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColour, _ := cmd.Flags().GetBool("nocolour")
			outputVal, _ := cmd.Flags().GetString("output")
			return mgr.CheckSchemas(cmd.Context(), CheckOptions{
				Strict:    strict,
				ShowPass:  showPass,
				Format:    outputVal,
				UseColour: !noColour,
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Run valid fixtures in strict mode")
	cmd.Flags().BoolVar(&showPass, "show-pass", false, "Show passing checks as well as failures")
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	return cmd
}

func newSchemaGenerateInvalidCmd(mgr Manager) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "generate-invalid",
		Short: "Record the expected failures of the invalid fixtures",
		Long: `Runs each invalid fixture through its schema and writes the produced
failures next to the fixture as the expected results. A fixture that passes
is an error: an invalid fixture must fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.GenerateInvalid(cmd.Context(), id)
		},
	}
	cmd.Flags().StringVar(&id, "schema-id", "", "Generate for a single schema by id (default: all)")
	return cmd
}

// writeSchemaList renders the schema registry as a table.
func writeSchemaList(w io.Writer, schemas *schema.Manager) error {
	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)
	fmt.Fprintln(tw, "Schema ID\tKind\tSource")
	fmt.Fprintln(tw, "---------\t----\t------")
	for _, id := range schemas.IDs() {
		v, _ := schemas.Get(id)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID(), v.Kind(), v.Source())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d schemas loaded\n", schemas.Len())
	return err
}
