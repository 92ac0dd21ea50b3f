package mpschema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// ErrNoSources is returned when discovery finds no schema file.
var ErrNoSources = errors.New("mpschema: no schema sources found")

// Source is one schema input.
type Source struct {
	// Name is the package source name: the base name without extension,
	// prefixed by "dir/" for packages in a sub-directory.
	Name string
	// File is the path reported in locations. It is read when Data is nil.
	File string
	Data []byte
}

// Bytes returns an in-memory source for the package name.
func Bytes(name string, data []byte) Source {
	return Source{Name: name, File: name, Data: data}
}

// Discover lists the schema files under path. A file path yields a single
// source; a directory is scanned for files with the configured extension.
func Discover(path string, opts ...Option) ([]Source, error) {
	o := newOptions(opts)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("mpschema: %w", err)
	}
	if !info.IsDir() {
		return []Source{fileSource("", path, o.extension)}, nil
	}

	var srcs []Source
	if !o.recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("mpschema: %w", err)
		}
		files := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
			return !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), o.extension)
		})
		srcs = lo.Map(files, func(e os.DirEntry, _ int) Source {
			return fileSource("", filepath.Join(path, e.Name()), o.extension)
		})
	} else {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(p), o.extension) {
				return nil
			}
			rel, err := filepath.Rel(path, filepath.Dir(p))
			if err != nil {
				return err
			}
			if rel == "." {
				rel = ""
			}
			srcs = append(srcs, fileSource(filepath.ToSlash(rel), p, o.extension))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("mpschema: %w", err)
		}
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, path)
	}
	sortSources(srcs)
	return srcs, nil
}

func fileSource(dir, path, ext string) Source {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ext) {
		base = base[:len(base)-len(ext)]
	}
	name := base
	if dir != "" {
		name = dir + "/" + base
	}
	return Source{Name: name, File: path}
}

func sortSources(srcs []Source) {
	sort.SliceStable(srcs, func(i, j int) bool { return srcs[i].Name < srcs[j].Name })
}

// load reads the file of every source without in-memory data concurrently.
func load(ctx context.Context, srcs []Source) ([]Source, error) {
	out := make([]Source, len(srcs))
	copy(out, srcs)
	errs, ctx := errgroup.WithContext(ctx)
	for i := range out {
		if out[i].Data != nil {
			continue
		}
		errs.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(out[i].File)
			if err != nil {
				return fmt.Errorf("mpschema: reading %s: %w", out[i].File, err)
			}
			out[i].Data = b
			return nil
		})
	}
	if err := errs.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
