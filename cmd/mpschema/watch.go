package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/mpschema/config"
)

var (
	watchInput    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompile and regenerate whenever a schema file changes",
	Long: `Run generate once, then again every time a schema file under the input
changes. Compile errors are reported and watching continues.

Examples:
  mpschema watch
  mpschema watch -i schemas`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchInput, "input", "i", "", "schema directory (defaults to the project input)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "quiet period before recompiling")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if len(cfg.Plugins) == 0 {
		log.Warn().Msg("no plugins configured, changes are only compiled")
	}
	input := watchInput
	if input == "" {
		input = cfg.Resolve(cfg.Input)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := addWatches(watcher, input, cfg.Recursive); err != nil {
		return err
	}
	log.Info().Str("path", input).Msg("watching schema files for changes")

	ctx := cmd.Context()
	rebuild(ctx, cfg, input, log)
	return watchLoop(ctx, watcher, cfg, input, log)
}

// addWatches watches input, or the directory holding it when input is a
// file. Editors that save atomically replace files, so directories are
// watched rather than files.
func addWatches(w *fsnotify.Watcher, input string, recursive bool) error {
	fi, err := os.Stat(input)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return w.Add(filepath.Dir(input))
	}
	if !recursive {
		return w.Add(input)
	}
	return filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, cfg *config.Config, input string, log zerolog.Logger) error {
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, cfg.Extension) {
				continue
			}
			log.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("schema file changed")
			if event.Op&fsnotify.Create != 0 && cfg.Recursive {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = addWatches(w, event.Name, true)
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			rebuild(ctx, cfg, input, log)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// relevant keeps schema file changes and newly created directories.
func relevant(event fsnotify.Event, ext string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.EqualFold(filepath.Ext(event.Name), ext) {
		return true
	}
	return event.Op&fsnotify.Create != 0 && filepath.Ext(event.Name) == ""
}

func rebuild(ctx context.Context, cfg *config.Config, input string, log zerolog.Logger) {
	start := time.Now()
	pkgs, err := compile(ctx, cfg, input, log)
	if err != nil {
		printError(err)
		return
	}
	if len(cfg.Plugins) > 0 {
		if err := generate(ctx, cfg, pkgs, cfg.Plugins, log); err != nil {
			printError(err)
			return
		}
	}
	log.Info().Int("packages", len(pkgs)).Dur("took", time.Since(start)).Msg("rebuilt")
}
