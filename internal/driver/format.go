// Package driver formats files on disk.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/padfmt/internal/config"
	"github.com/r9s-ai/padfmt/internal/format"
)

// FormatOptions controls FormatPaths.
type FormatOptions struct {
	Settings *config.Settings
	// Language forces a language for every file instead of detecting it.
	Language format.Language
	// Check reports files that would change without writing them.
	Check bool
	// Write rewrites changed files in place. Without Write or Check the
	// formatted bytes are returned in FormatResult.Formatted.
	Write bool
	// Jobs bounds concurrent files; non-positive means GOMAXPROCS.
	Jobs int
}

// FormatResult describes one formatted file.
type FormatResult struct {
	Path      string
	Language  format.Language
	Formatted []byte
	Changed   bool
	Err       error
}

// FormatPaths formats every file named in paths. Directories are walked for
// files with a recognized extension. Results keep the discovery order; a
// failure on one file is recorded in its result and does not stop others.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Settings == nil {
		opts.Settings = config.Default()
	}

	files, err := collectSourceFiles(ctx, paths, opts.Settings)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no source files found")
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatPath(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func formatPath(path string, opts FormatOptions) FormatResult {
	lang := opts.Language
	if lang == "" {
		lang = opts.Settings.Language(path)
	}
	res := FormatResult{Path: path, Language: lang}

	formatted, changed, err := FormatFile(path, lang, opts.Settings.Profile())
	if err != nil {
		res.Err = err
		return res
	}
	res.Changed = changed
	switch {
	case opts.Check:
	case opts.Write:
		if changed {
			res.Err = WriteFile(path, formatted)
		}
	default:
		res.Formatted = formatted
	}
	return res
}

// FormatFile reads path and formats it as lang.
func FormatFile(path string, lang format.Language, profile format.Profile) (formatted []byte, changed bool, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file %q: %w", path, err)
	}
	out := format.FormatFor(lang, string(src), profile)
	return []byte(out), out != string(src), nil
}

// WriteFile replaces path with data, keeping its permissions.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, statErr := os.Stat(path); statErr == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}

func collectSourceFiles(ctx context.Context, paths []string, settings *config.Settings) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", p, err)
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && SkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if settings.Handles(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			addFile(f)
		}
	}
	return files, nil
}

// SkipDir reports whether a directory is never descended into.
func SkipDir(name string) bool {
	switch name {
	case "node_modules", "vendor":
		return true
	}
	return strings.HasPrefix(name, ".") && name != "."
}
