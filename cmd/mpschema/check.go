package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/mpschema/model"
)

var checkInput string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile the schema packages and print a summary",
	Long: `Compile the schema packages without running any plugin.

Examples:
  mpschema check
  mpschema check -i schemas/orders.mpack`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "schema file or directory (defaults to the project input)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	pkgs, err := compile(cmd.Context(), cfg, checkInput, log)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, p := range pkgs {
		fmt.Fprintf(w, "%s (version %d, id %s)\n", p.Path(), p.Version, p.ID)
		if len(p.Imports) > 0 {
			fmt.Fprintf(w, "  imports: %v\n", p.Imports)
		}
		for _, t := range p.Types {
			fmt.Fprintf(w, "  %s\n", summarize(t))
		}
	}
	fmt.Fprintf(w, "%d package(s) OK\n", len(pkgs))
	return nil
}

func summarize(t *model.Type) string {
	kind := t.Modifier.String()
	if kind == "" {
		kind = "struct"
	}
	return fmt.Sprintf("%s %s: %d field(s)", kind, t.FullName(), len(t.Fields))
}
