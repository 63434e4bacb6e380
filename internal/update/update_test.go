package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infogrep/infogrep/internal/patterns"
)

func patternDoc(version string) string {
	return "version: " + version + "\npatterns:\n  - pattern:\n      name: tok\n      regex: tok_[a-z]{8}\n      confidence: high\n"
}

func newTestUpdater(url string) *Updater {
	u := New(url)
	u.MaxElapsed = 2 * time.Second
	return u
}

func writeLocal(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, patterns.DefaultDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestNewer(t *testing.T) {
	cases := []struct {
		remote, local string
		want          bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v1.2.0", "1.2.0", false},
		{"1.2.0", "1.3.0", false},
		{"1.0.0", "", true},
		{"", "1.0.0", false},
		{"garbage", "", false},
		{"2", "1.9.9", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Newer(c.remote, c.local), "Newer(%q, %q)", c.remote, c.local)
	}
}

func TestUpdate_ReplacesOnlyWhenNewer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/newer.yml":
			_, _ = w.Write([]byte(patternDoc("1.5.0")))
		case "/older.yml":
			_, _ = w.Write([]byte(patternDoc("0.9.0")))
		case "/fresh.yml":
			_, _ = w.Write([]byte(patternDoc("1.0.0")))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	newer := writeLocal(t, dir, "newer.yml", patternDoc("1.0.0"))
	older := writeLocal(t, dir, "older.yml", patternDoc("1.0.0"))

	outs, err := newTestUpdater(srv.URL).Update(context.Background(), dir, []string{"newer.yml", "older.yml", "fresh.yml", "gone.yml"})
	require.NoError(t, err)
	require.Len(t, outs, 4)

	assert.True(t, outs[0].Updated)
	assert.Equal(t, "1.0.0", outs[0].Local)
	assert.Equal(t, "1.5.0", outs[0].Remote)
	set, err := patterns.Load(newer)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", set.Version)

	assert.False(t, outs[1].Updated)
	set, err = patterns.Load(older)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", set.Version)

	assert.True(t, outs[2].Updated, "missing local files are always written")
	_, err = os.Stat(filepath.Join(dir, patterns.DefaultDir, "fresh.yml"))
	assert.NoError(t, err)

	assert.Error(t, outs[3].Err, "404 is reported per file")
}

func TestUpdate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(patternDoc("2.0.0")))
	}))
	defer srv.Close()

	outs, err := newTestUpdater(srv.URL).Update(context.Background(), t.TempDir(), []string{"rules-stable.yml"})
	require.NoError(t, err)
	require.NoError(t, outs[0].Err)
	assert.True(t, outs[0].Updated)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUpdate_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestUpdater(srv.URL).Update(context.Background(), t.TempDir(), []string{"a.yml"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdate_RejectsInvalidRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("patterns:\n  - name: no-regex\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	local := writeLocal(t, dir, "rules-stable.yml", patternDoc("1.0.0"))
	outs, err := newTestUpdater(srv.URL).Update(context.Background(), dir, []string{"rules-stable.yml"})
	require.Error(t, err)
	require.Error(t, outs[0].Err)
	set, err := patterns.Load(local)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", set.Version)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL)
	assert.Equal(t, "http://x/y", New("http://x/y/").BaseURL)
}
