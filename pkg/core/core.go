package core

import (
	"context"
	"errors"
	"sort"

	"github.com/infogrep/infogrep/internal/engine"
	"github.com/infogrep/infogrep/internal/patterns"
	"github.com/infogrep/infogrep/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config            = engine.Config
	Result            = engine.Result
	Record            = types.MatchRecord
	PatternDefinition = types.PatternDefinition
	Confidence        = types.Confidence
)

// DefaultPatternFile is the embedded set used when Options names none.
const DefaultPatternFile = "rules-stable.yml"

// Options describes one programmatic scan.
type Options struct {
	// Input is a file or directory.
	Input string
	// Patterns is used as is when set. Otherwise PatternFile is loaded, and
	// when that is empty too, the embedded secrets set.
	Patterns    []PatternDefinition
	PatternFile string
	// Confidence optionally keeps only patterns with this label.
	Confidence string

	Recursive  bool
	Include    []string
	Exclude    []string
	SkipBinary bool

	// Config tunes the engine. A zero Truncate keeps previews whole, as
	// the CLI does for --truncate 0.
	Config Config
}

// Scan discovers the files under opts.Input, scans them and returns every
// record sorted by path and offset. Per-file failures are reported in
// Result.Failures, not as an error.
func Scan(ctx context.Context, opts Options) ([]Record, Result, error) {
	defs, err := definitions(opts)
	if err != nil {
		return nil, Result{}, err
	}
	defs, err = patterns.Select(defs, opts.Confidence)
	if err != nil {
		return nil, Result{}, err
	}
	compiled, err := patterns.Compile(defs)
	if err != nil {
		return nil, Result{}, err
	}
	cfg := opts.Config
	if cfg.Truncate == 0 {
		cfg.Truncate = -1
	}
	sc, err := engine.New(cfg, compiled)
	if err != nil {
		return nil, Result{}, err
	}
	paths, err := engine.Discover(ctx, opts.Input, engine.DiscoverOptions{
		Recursive:       opts.Recursive,
		Include:         opts.Include,
		Exclude:         opts.Exclude,
		DefaultExcludes: true,
		SkipBinary:      opts.SkipBinary,
	})
	if err != nil {
		return nil, Result{}, err
	}

	emit, collected := engine.Collect()
	res, err := sc.ScanAll(ctx, paths, emit)
	recs := collected()
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Path != recs[j].Path {
			return recs[i].Path < recs[j].Path
		}
		return recs[i].Offset < recs[j].Offset
	})
	return recs, res, err
}

func definitions(opts Options) ([]PatternDefinition, error) {
	if len(opts.Patterns) > 0 {
		return opts.Patterns, nil
	}
	if opts.PatternFile != "" {
		set, err := patterns.Load(opts.PatternFile)
		if err != nil {
			return nil, err
		}
		return set.Patterns, nil
	}
	data, ok := patterns.Defaults()[DefaultPatternFile]
	if !ok {
		return nil, errors.New("embedded default patterns missing")
	}
	set, err := patterns.Parse(data)
	if err != nil {
		return nil, err
	}
	return set.Patterns, nil
}
