// Package update refreshes the bundled default pattern files from a remote
// base URL. A local file is replaced only when the remote copy declares a
// newer semantic version.
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/cenkalti/backoff"

	"github.com/infogrep/infogrep/internal/config"
	"github.com/infogrep/infogrep/internal/patterns"
)

// DefaultBaseURL hosts the upstream default pattern files.
const DefaultBaseURL = "https://raw.githubusercontent.com/Giardi77/InfoGrep/refs/heads/Version-3-Rust/default-patterns"

// DefaultFiles are the pattern files refreshed by Update.
var DefaultFiles = []string{"rules-stable.yml", "pii-stable.yml", config.GitleaksFile}

// maxPatternFile bounds the size of a downloaded pattern file.
const maxPatternFile = 16 << 20

// Updater downloads pattern files.
type Updater struct {
	BaseURL string
	Client  *http.Client
	// MaxElapsed bounds the total retry time per file.
	MaxElapsed time.Duration
}

// Outcome describes what happened to one file.
type Outcome struct {
	File    string
	Local   string
	Remote  string
	Updated bool
	Err     error
}

// New returns an Updater for baseURL, or DefaultBaseURL when empty.
func New(baseURL string) *Updater {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Updater{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Client:     &http.Client{Timeout: 15 * time.Second},
		MaxElapsed: 30 * time.Second,
	}
}

// Update refreshes each file in files under dir/default-patterns. Failures
// are reported per file in Outcome.Err; the returned error is non-nil only
// when every file failed.
func (u *Updater) Update(ctx context.Context, dir string, files []string) ([]Outcome, error) {
	defDir := filepath.Join(dir, patterns.DefaultDir)
	out := make([]Outcome, 0, len(files))
	failed := 0
	for _, name := range files {
		o := u.updateOne(ctx, filepath.Join(defDir, name), name)
		if o.Err != nil {
			failed++
		}
		out = append(out, o)
	}
	if len(files) > 0 && failed == len(files) {
		return out, fmt.Errorf("update failed for all %d pattern files: %w", failed, out[0].Err)
	}
	return out, nil
}

func (u *Updater) updateOne(ctx context.Context, dest, name string) Outcome {
	o := Outcome{File: name}
	if local, err := patterns.Load(dest); err == nil {
		o.Local = local.Version
	}

	body, err := u.fetch(ctx, u.BaseURL+"/"+name)
	if err != nil {
		o.Err = err
		return o
	}
	remote, err := patterns.Parse(body)
	if err != nil {
		o.Err = fmt.Errorf("parse remote %s: %w", name, err)
		return o
	}
	o.Remote = remote.Version

	_, statErr := os.Stat(dest)
	missing := errors.Is(statErr, os.ErrNotExist)
	if !missing && !Newer(remote.Version, o.Local) {
		return o
	}
	if err := config.LockAndWrite(dest, body); err != nil {
		o.Err = err
		return o
	}
	o.Updated = true
	return o
}

func (u *Updater) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "infogrep-updater")
		resp, err := u.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("GET %s: %s", url, resp.Status))
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxPatternFile))
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = u.MaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return body, nil
}

// Newer reports whether remote is a strictly newer version than local. An
// unparsable remote is never newer; an unparsable or empty local is older
// than any valid remote.
func Newer(remote, local string) bool {
	rv, err := semver.ParseTolerant(strings.TrimSpace(remote))
	if err != nil {
		return false
	}
	lv, err := semver.ParseTolerant(strings.TrimSpace(local))
	if err != nil {
		return true
	}
	return rv.GT(lv)
}
