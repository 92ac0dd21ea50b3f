package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/mpschema/config"
	"github.com/reoring/mpschema/model"
	"github.com/reoring/mpschema/plugin"
	"github.com/reoring/mpschema/wire"
)

var (
	genInput    string
	genPlugin   string
	genEncoding string
	genOutput   string
	genArgs     []string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compile the schema packages and run code generator plugins",
	Long: `Compile the schema packages and hand the result to plugins.

With -p a single plugin is run and its files are written to -o. Without
-p every plugin listed in the project file is run.

Examples:
  mpschema generate
  mpschema generate -i schemas -p ./bin/gen-go -e messagepack -o gen/go`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genInput, "input", "i", "", "schema file or directory (defaults to the project input)")
	generateCmd.Flags().StringVarP(&genPlugin, "plugin", "p", "", "plugin executable (defaults to the project plugins)")
	generateCmd.Flags().StringVarP(&genEncoding, "encoding", "e", "json", "encoding used with -p: json or messagepack")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".", "output directory used with -p")
	generateCmd.Flags().StringArrayVar(&genArgs, "plugin-arg", nil, "argument passed to the -p plugin (repeatable)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	plugins, err := selectPlugins(cfg)
	if err != nil {
		return err
	}
	pkgs, err := compile(cmd.Context(), cfg, genInput, log)
	if err != nil {
		return err
	}
	return generate(cmd.Context(), cfg, pkgs, plugins, log)
}

// selectPlugins returns the -p plugin when given, else the configured ones.
func selectPlugins(cfg *config.Config) ([]config.Plugin, error) {
	if genPlugin == "" {
		if len(cfg.Plugins) == 0 {
			return nil, errors.New("no plugin given: pass -p or list plugins in the project file")
		}
		return cfg.Plugins, nil
	}
	if _, err := wire.ParseEncoding(genEncoding); err != nil {
		return nil, err
	}
	// Flag paths are relative to the working directory, not the project file.
	return []config.Plugin{{Name: genPlugin, Path: flagPath(genPlugin), Args: genArgs, Encoding: genEncoding, Output: absPath(genOutput)}}, nil
}

// generate runs every plugin concurrently; each writes to its own output
// directory.
func generate(ctx context.Context, cfg *config.Config, pkgs []*model.Package, plugins []config.Plugin, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range plugins {
		g.Go(func() error {
			enc, err := wire.ParseEncoding(p.Encoding)
			if err != nil {
				return err
			}
			r := plugin.Runner{
				Path:     pluginPath(cfg, p.Path),
				Args:     p.Args,
				Encoding: enc,
				WorkDir:  cfg.Resolve(p.WorkDir),
				Logger:   log.With().Str("plugin", p.Name).Logger(),
			}
			res, err := r.Run(ctx, pkgs)
			if err != nil {
				return err
			}
			out := cfg.Resolve(p.Output)
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name, err)
			}
			written, err := plugin.WriteFiles(out, res.Files)
			if err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name, err)
			}
			log.Info().Str("plugin", res.Name).Str("output", out).Int("files", len(written)).Msg("files generated")
			return nil
		})
	}
	return g.Wait()
}

// pluginPath resolves a plugin path against the project directory. Bare
// command names are left for PATH lookup.
func pluginPath(cfg *config.Config, p string) string {
	if !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return cfg.Resolve(p)
}

// flagPath makes a command line path absolute unless it is a bare command
// name.
func flagPath(p string) string {
	if !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return absPath(p)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
