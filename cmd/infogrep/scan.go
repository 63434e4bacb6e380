package infogrep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/infogrep/infogrep/internal/config"
	"github.com/infogrep/infogrep/internal/engine"
	"github.com/infogrep/infogrep/internal/logger"
	"github.com/infogrep/infogrep/internal/patterns"
	"github.com/infogrep/infogrep/internal/report"
	"github.com/infogrep/infogrep/internal/types"
)

var (
	flagInput           string
	flagPattern         string
	flagPatternFile     string
	flagTruncate        int
	flagWorkers         int
	flagConfidence      string
	flagRecursive       bool
	flagInclude         string
	flagExclude         string
	flagDefaultExcludes bool
	flagSkipBinary      bool
	flagChunkSize       int
	flagExactLines      bool
	flagFormat          string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a file or directory for pattern matches",
		Example: `  infogrep scan -i ./src --recursive
  infogrep scan -i dump.sql -p pii -c high
  infogrep scan -i . --recursive --format sarif > infogrep.sarif`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagInput, "input", "i", "", "file or directory to scan")
	cmd.Flags().StringVarP(&flagPattern, "pattern", "p", config.DefaultSelector, "pattern selector from the registry")
	cmd.Flags().StringVar(&flagPatternFile, "pattern-file", "", "explicit pattern file (overrides --pattern)")
	cmd.Flags().IntVarP(&flagTruncate, "truncate", "t", 400, "preview length in characters (0 disables truncation)")
	cmd.Flags().IntVarP(&flagWorkers, "workers", "w", 2, "files scanned concurrently")
	cmd.Flags().StringVarP(&flagConfidence, "confidence", "c", "", "only use patterns with this confidence: low|medium|high")
	cmd.Flags().BoolVar(&flagRecursive, "recursive", false, "descend into subdirectories")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated globs to include")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated globs to exclude")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip VCS and dependency directories when recursing")
	cmd.Flags().BoolVar(&flagSkipBinary, "skip-binary", false, "skip files that look binary")
	cmd.Flags().IntVar(&flagChunkSize, "chunk-size", engine.DefaultChunkSize, "read window in bytes")
	cmd.Flags().BoolVar(&flagExactLines, "exact-lines", false, "count newlines for exact line numbers")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text|json|sarif")
	_ = cmd.MarkFlagRequired("input")
}

// resolveSettings merges flags with the local and global config files.
func resolveSettings(cmd *cobra.Command, local, global config.FileConfig) config.Settings {
	return config.Settings{
		Input:           flagInput,
		Pattern:         flagString(cmd, "pattern", flagPattern, local.Pattern, global.Pattern),
		PatternFile:     pickString(flagPatternFile, local.PatternFile, global.PatternFile),
		Confidence:      pickString(flagConfidence, local.Confidence, global.Confidence),
		Truncate:        flagInt(cmd, "truncate", flagTruncate, local.Truncate, global.Truncate),
		Workers:         flagInt(cmd, "workers", flagWorkers, local.Workers, global.Workers),
		ChunkSize:       flagInt(cmd, "chunk-size", flagChunkSize, local.ChunkSize, global.ChunkSize),
		Recursive:       pickBool(flagRecursive, local.Recursive, global.Recursive),
		Include:         pickString(flagInclude, local.Include, global.Include),
		Exclude:         pickString(flagExclude, local.Exclude, global.Exclude),
		DefaultExcludes: flagBool(cmd, "default-excludes", flagDefaultExcludes, local.DefaultExcludes, global.DefaultExcludes),
		SkipBinary:      pickBool(flagSkipBinary, local.SkipBinary, global.SkipBinary),
		ExactLines:      pickBool(flagExactLines, local.ExactLines, global.ExactLines),
		Format:          flagString(cmd, "format", flagFormat, local.Format, global.Format),
		NoColor:         pickBool(flagNoColor, local.NoColor, global.NoColor),
		LogLevel:        pickString(flagLogLevel, local.LogLevel, global.LogLevel),
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	gcfg, _ := config.LoadGlobalIn(dir)
	cwd, _ := os.Getwd()
	lcfg, _ := config.LoadLocal(cwd)
	log := newLogger(lcfg, gcfg)

	s := resolveSettings(cmd, lcfg, gcfg)
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Truncate == 0 {
		s.Truncate = -1
	}
	colors := !s.NoColor && isTerminal(os.Stdout)

	if !flagQuiet && s.Format == "text" {
		printBanner(cmd.ErrOrStderr(), !s.NoColor && isTerminal(os.Stderr))
	}

	defs, err := loadDefinitions(dir, s, log)
	if err != nil {
		return err
	}
	selected, err := patterns.Select(defs, s.Confidence)
	if err != nil {
		var nap *patterns.NoApplicablePatternsError
		if errors.As(err, &nap) && nap.Filter != "" {
			return fmt.Errorf("%w (the selected set has %d patterns)", err, len(defs))
		}
		return err
	}
	compiled, err := patterns.Compile(selected)
	if err != nil {
		return err
	}
	log.Infof("Compiled %d patterns", len(compiled))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	paths, err := engine.Discover(ctx, s.Input, engine.DiscoverOptions{
		Recursive:       s.Recursive,
		Include:         engine.ParseGlobs(s.Include),
		Exclude:         engine.ParseGlobs(s.Exclude),
		DefaultExcludes: s.DefaultExcludes,
		SkipBinary:      s.SkipBinary,
	})
	if err != nil {
		return err
	}
	log.Debugf("Discovered %d files under %s", len(paths), s.Input)

	sink, err := report.New(s.Format, cmd.OutOrStdout(), report.Options{
		NoColor: !colors,
		RunID:   uuid.NewString(),
		Version: version,
	})
	if err != nil {
		return err
	}

	sc, err := engine.New(engine.Config{
		ChunkSize:  s.ChunkSize,
		Workers:    s.Workers,
		Truncate:   s.Truncate,
		ExactLines: s.ExactLines,
		OnFileError: func(err error) {
			log.Errorf("%v", err)
		},
	}, compiled)
	if err != nil {
		return err
	}

	var once sync.Once
	res, scanErr := sc.ScanAll(ctx, paths, func(rec types.MatchRecord) {
		if err := sink.Write(rec); err != nil {
			once.Do(func() { log.Errorf("write output: %v", err) })
		}
	})
	if err := sink.Close(report.Summary{
		FilesScanned: res.FilesScanned,
		Failures:     len(res.Failures),
		Patterns:     len(compiled),
	}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if scanErr != nil {
		if errors.Is(scanErr, context.Canceled) {
			log.Warnf("Interrupted after %d of %d files", res.FilesScanned, len(paths))
		}
		return fmt.Errorf("scan: %w", scanErr)
	}

	log.Infof("Scanned %d files, %d matches, %d failed", res.FilesScanned, res.Matches, len(res.Failures))
	log.Infof("Time taken: %s", res.Duration.Round(time.Millisecond))
	return nil
}

// loadDefinitions reads the pattern file named by --pattern-file, or the one
// the registry maps the selector to. The registry and default pattern files
// are created on first use.
func loadDefinitions(dir string, s config.Settings, log *logger.ConsoleLogger) ([]types.PatternDefinition, error) {
	path := s.PatternFile
	if path == "" {
		reg, err := config.EnsureDefaults(dir)
		if err != nil {
			return nil, err
		}
		if path, err = reg.Resolve(s.Pattern); err != nil {
			return nil, err
		}
	}
	log.Debugf("Loading patterns from %s", path)
	set, err := patterns.Load(path)
	if err != nil {
		return nil, err
	}
	return set.Patterns, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
