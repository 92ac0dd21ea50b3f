// Package plugin runs external code generators. A plugin receives the
// encoded schema on its standard input and answers on standard output with
// log events, an optional name sentinel and one final payload listing the
// generated files.
package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/reoring/mpschema/model"
	"github.com/reoring/mpschema/wire"
)

// Runner executes one plugin binary.
type Runner struct {
	Path     string
	Args     []string
	Encoding wire.Encoding
	WorkDir  string
	Env      []string // appended to the current environment
	Logger   zerolog.Logger
}

// Result is the decoded reply of a plugin run.
type Result struct {
	Name   string
	Events []Event
	wire.Output
}

// Run encodes pkgs, feeds them to the plugin and waits until it has sent
// its payload and exited.
func (r Runner) Run(ctx context.Context, pkgs []*model.Package) (Result, error) {
	enc := r.Encoding
	if enc == "" {
		enc = wire.JSON
	}
	input, err := wire.EncodeSchema(enc, pkgs)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Dir = r.WorkDir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdin = bytes.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("plugin %s: %w", r.Path, err)
	}

	log := r.Logger.With().Str("path", r.Path).Str("encoding", enc.String()).Logger()
	log.Debug().Int("bytes", len(input)).Msg("starting plugin")
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("plugin %s: start: %w", r.Path, err)
	}

	so, readErr := ReadStdout(stdout, log)
	waitErr := cmd.Wait()
	switch {
	case waitErr != nil:
		return Result{}, fmt.Errorf("plugin %s: %w: %s", r.Path, waitErr, tail(stderr.Bytes(), 2048))
	case errors.Is(readErr, ErrNoPayload):
		return Result{}, fmt.Errorf("plugin %s: %w: %s", r.Path, readErr, tail(stderr.Bytes(), 2048))
	case readErr != nil:
		return Result{}, fmt.Errorf("plugin %s: %w", r.Path, readErr)
	}

	out, err := wire.DecodeOutput(enc, so.Payload)
	if err != nil {
		return Result{}, fmt.Errorf("plugin %s: %w", r.Path, err)
	}
	name := so.Name
	if name == "" {
		name = filepath.Base(r.Path)
	}
	log.Info().Str("plugin", name).Int("files", len(out.Files)).Msg("plugin finished")
	return Result{Name: name, Events: so.Events, Output: out}, nil
}

// WriteFiles writes generated files below dir, which must already exist.
// File paths must be relative and stay inside dir. It returns the written
// paths.
func WriteFiles(dir string, files []wire.File) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("plugin: output directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("plugin: output path %s is not a directory", dir)
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		if f.Path == "" || filepath.IsAbs(f.Path) || !filepath.IsLocal(f.Path) {
			return written, fmt.Errorf("plugin: refusing to write %q outside %s", f.Path, dir)
		}
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, fmt.Errorf("plugin: %w", err)
		}
		if err := os.WriteFile(dst, f.Buffer, 0o644); err != nil {
			return written, fmt.Errorf("plugin: %w", err)
		}
		written = append(written, dst)
	}
	return written, nil
}
