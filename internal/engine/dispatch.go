package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/infogrep/infogrep/internal/types"
)

// Result summarises a multi-file scan.
type Result struct {
	FilesScanned int
	Matches      int
	Failures     []error
	Duration     time.Duration
}

// ScanAll scans paths with at most Workers files in flight. Per-file
// failures are collected in Result.Failures and never stop the scan. The
// returned error is non-nil only when ctx was cancelled.
func (s *Scanner) ScanAll(ctx context.Context, paths []string, emit Emit) (Result, error) {
	started := time.Now()
	var (
		res     Result
		mu      sync.Mutex
		scanned atomic.Int64
		matches atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		res.Failures = append(res.Failures, err)
		mu.Unlock()
		if s.cfg.OnFileError != nil {
			s.cfg.OnFileError(err)
		}
	}
	one := func(path string) {
		n, err := s.ScanFile(ctx, path, emit)
		matches.Add(int64(n))
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return
			}
			fail(err)
			return
		}
		scanned.Add(1)
	}

	if s.cfg.Workers == 1 {
		for _, p := range paths {
			if ctx.Err() != nil {
				break
			}
			one(p)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.cfg.Workers)
		for _, p := range paths {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				one(p)
				return nil
			})
		}
		_ = g.Wait()
	}

	res.FilesScanned = int(scanned.Load())
	res.Matches = int(matches.Load())
	res.Duration = time.Since(started)
	return res, ctx.Err()
}

// Collect returns an Emit that appends to a slice, and a function returning
// the collected records. Safe for concurrent use.
func Collect() (Emit, func() []types.MatchRecord) {
	var (
		mu  sync.Mutex
		out []types.MatchRecord
	)
	emit := func(r types.MatchRecord) {
		mu.Lock()
		out = append(out, r)
		mu.Unlock()
	}
	return emit, func() []types.MatchRecord {
		mu.Lock()
		defer mu.Unlock()
		return append([]types.MatchRecord(nil), out...)
	}
}
