package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/infogrep/infogrep/internal/patterns"
	"github.com/infogrep/infogrep/internal/types"
)

// Config controls how files are read and how matches are reported.
type Config struct {
	// ChunkSize is the read window in bytes. Zero selects DefaultChunkSize.
	ChunkSize int
	// Workers bounds the number of files scanned at once. Zero or negative
	// selects GOMAXPROCS; one scans files strictly in list order.
	Workers int
	// Truncate is the preview length in runes. Negative disables truncation.
	Truncate int
	// ExactLines counts newlines instead of estimating line positions.
	ExactLines bool
	// OnFileError, when set, is called as soon as a file fails.
	OnFileError func(error)
}

// Emit receives match records. It may be called from several goroutines at
// once and must write each record atomically.
type Emit func(types.MatchRecord)

// FileAccessError reports a file that could not be opened or read. It is
// contained to that file; the rest of the scan continues.
type FileAccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// Scanner runs a compiled pattern set over files. It holds no per-file state
// and can be shared by any number of goroutines.
type Scanner struct {
	cfg      Config
	patterns []*patterns.CompiledPattern
}

// New returns a Scanner for the given patterns.
func New(cfg Config, pats []*patterns.CompiledPattern) (*Scanner, error) {
	if len(pats) == 0 {
		return nil, &patterns.NoApplicablePatternsError{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkSize < MinChunkSize {
		cfg.ChunkSize = MinChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{cfg: cfg, patterns: pats}, nil
}

// Config returns the effective configuration.
func (s *Scanner) Config() Config { return s.cfg }

// ScanFile scans one file and returns the number of records emitted. Open
// and read failures are returned as *FileAccessError. Cancellation is
// checked between chunks.
func (s *Scanner) ScanFile(ctx context.Context, path string, emit Emit) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, &FileAccessError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, &FileAccessError{Path: path, Op: "open", Err: err}
	}
	if info.IsDir() {
		return 0, &FileAccessError{Path: path, Op: "read", Err: errors.New("is a directory")}
	}

	cr := NewChunkReader(f, info.Size(), s.cfg.ChunkSize)
	m := newMatcher(path, s.patterns, s.cfg.Truncate, s.cfg.ExactLines)
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		ch, ok, err := cr.Next()
		if err != nil {
			return total, &FileAccessError{Path: path, Op: "read", Err: err}
		}
		if !ok {
			return total, nil
		}
		total += m.scan(ch, emit)
	}
}
