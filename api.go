package mpschema

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/compiler"
	"github.com/reoring/mpschema/internal/grammar"
	"github.com/reoring/mpschema/model"
)

// Compile compiles the schema file or directory at path and returns the
// resolved packages in registration order.
func Compile(ctx context.Context, path string, opts ...Option) ([]*model.Package, error) {
	srcs, err := Discover(path, opts...)
	if err != nil {
		return nil, err
	}
	return CompileSources(ctx, srcs, opts...)
}

// CompileSources compiles the given sources. Files are read concurrently and
// parsed one at a time in package name order; the first failure aborts.
func CompileSources(ctx context.Context, srcs []Source, opts ...Option) ([]*model.Package, error) {
	o := newOptions(opts)
	if len(srcs) == 0 {
		return nil, ErrNoSources
	}
	loaded, err := load(ctx, srcs)
	if err != nil {
		return nil, diag.Wrap(model.Location{}, diag.CodeSourceRead, err, "%v", err)
	}
	sortSources(loaded)

	c := compiler.New(o.compiler())
	for _, src := range loaded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := grammar.Parse(c, bytes.NewReader(src.Data), src.Name, src.File); err != nil {
			return nil, err
		}
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	pkgs := c.GetCompiledAndClear()
	o.logger.Info().Int("packages", len(pkgs)).Int("sources", len(loaded)).Msg("schema compiled")
	return pkgs, nil
}

// Result is the outcome of one root compiled by CompileAll.
type Result struct {
	Path     string
	Packages []*model.Package
}

// CompileAll compiles independent roots concurrently, each in its own
// context. Failures are aggregated into Issues; results of the roots that
// compiled are returned alongside, in the order of paths.
func CompileAll(ctx context.Context, paths []string, opts ...Option) ([]Result, error) {
	results := make([]*Result, len(paths))
	var (
		mu     sync.Mutex
		issues Issues
		g      errgroup.Group
	)
	for i, p := range paths {
		g.Go(func() error {
			pkgs, err := Compile(ctx, p, opts...)
			if err != nil {
				mu.Lock()
				issues = diag.AppendIssues(issues, fmt.Errorf("%s: %w", p, err))
				mu.Unlock()
				return nil
			}
			results[i] = &Result{Path: p, Packages: pkgs}
			return nil
		})
	}
	_ = g.Wait()

	var out []Result
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(issues) > 0 {
		return out, issues
	}
	return out, nil
}
