package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/mpschema"
	"github.com/reoring/mpschema/config"
	"github.com/reoring/mpschema/i18n"
	"github.com/reoring/mpschema/model"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	lang      string
)

var rootCmd = &cobra.Command{
	Use:   "mpschema",
	Short: "Compile schema packages and run code generator plugins",
	Long: `mpschema compiles versioned schema packages into a resolved model and
hands it to external code generator plugins.

Examples:
  mpschema check -i schemas
  mpschema generate -i schemas -p ./bin/gen-go -o gen/go
  mpschema dump -i schemas -e messagepack -o schema.bin
  mpschema watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "path to the project file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json (overrides the project file)")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "en", "language of diagnostic messages: en or ja")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// setup loads the project file and builds the logger every subcommand uses.
func setup() (*config.Config, zerolog.Logger, error) {
	i18n.SetLanguage(lang)
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, newLogger(cfg.Log), nil
}

func newLogger(l config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if l.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// compile runs the compiler over input, or the configured input when empty.
func compile(ctx context.Context, cfg *config.Config, input string, log zerolog.Logger) ([]*model.Package, error) {
	if input == "" {
		input = cfg.Resolve(cfg.Input)
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, mpschema.WithLogger(log))
	return mpschema.Compile(ctx, input, opts...)
}

func printError(err error) {
	if iss, ok := mpschema.AsIssues(err); ok {
		for _, is := range iss {
			fmt.Fprintf(os.Stderr, "error: %v\n", is)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
