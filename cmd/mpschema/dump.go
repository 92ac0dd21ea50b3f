package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/mpschema/wire"
)

var (
	dumpInput    string
	dumpEncoding string
	dumpOutput   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the encoded schema a plugin would receive",
	Long: `Compile the schema packages and write the buffer sent to plugins.

Examples:
  mpschema dump -i schemas
  mpschema dump -e messagepack -o schema.bin`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpInput, "input", "i", "", "schema file or directory (defaults to the project input)")
	dumpCmd.Flags().StringVarP(&dumpEncoding, "encoding", "e", "json", "encoding: json or messagepack")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output file (defaults to stdout)")
}

func runDump(cmd *cobra.Command, args []string) error {
	enc, err := wire.ParseEncoding(dumpEncoding)
	if err != nil {
		return err
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	pkgs, err := compile(cmd.Context(), cfg, dumpInput, log)
	if err != nil {
		return err
	}
	b, err := wire.EncodeSchema(enc, pkgs)
	if err != nil {
		return err
	}
	if dumpOutput == "" {
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	if err := os.WriteFile(dumpOutput, b, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", dumpOutput).Int("bytes", len(b)).Msg("schema written")
	return nil
}
