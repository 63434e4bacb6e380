package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/infogrep/infogrep/internal/ignore"
)

// DiscoverOptions selects which files under an input path are scanned.
type DiscoverOptions struct {
	Recursive bool
	Include   []string
	Exclude   []string
	// DefaultExcludes skips VCS and dependency directories while recursing.
	DefaultExcludes bool
	SkipBinary      bool
	// Ignore is consulted with paths relative to the input directory. When
	// nil, the .infogrepignore file in the input directory is loaded.
	Ignore *ignore.Matcher
}

// Discover expands input into the list of files to scan. A regular file is
// returned as is. A directory is listed non-recursively unless Recursive is
// set. An input that does not exist is an error.
func Discover(ctx context.Context, input string, opts DiscoverOptions) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	ign := opts.Ignore
	if ign == nil {
		m, err := ignore.Load(filepath.Join(input, ignore.FileName))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ignore.FileName, err)
		}
		ign = &m
	}

	var out []string
	consider := func(p string, d fs.DirEntry) {
		rel, err := filepath.Rel(input, p)
		if err != nil {
			rel = d.Name()
		}
		rel = filepath.ToSlash(rel)
		if rel == ignore.FileName {
			return
		}
		if !allowedByGlobs(rel, opts.Include, opts.Exclude) || ign.Match(rel) {
			return
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return
		}
		// Symlinks to directories are skipped; dangling ones are kept so the
		// scan reports them as unreadable.
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				return
			}
		}
		if opts.SkipBinary && sniffBinary(p) {
			return
		}
		out = append(out, p)
	}

	if !opts.Recursive {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", input, err)
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if e.IsDir() {
				continue
			}
			consider(filepath.Join(input, e.Name()), e)
		}
		return out, nil
	}

	err = filepath.WalkDir(input, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != input {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p == input {
				return nil
			}
			if opts.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		consider(p, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
