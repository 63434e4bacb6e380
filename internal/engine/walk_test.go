package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func fixtureTree(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "b.go", "package main\n")
	writeFile(t, dir, "c.md", "doc")
	writeFile(t, dir, "sub/d.go", "package sub\n")
	writeFile(t, dir, "sub/deep/e.txt", "deep")
	writeFile(t, dir, ".git/config", "[core]")
	writeFile(t, dir, "node_modules/pkg/index.js", "x")
	return dir
}

func TestDiscover_NonRecursiveByDefault(t *testing.T) {
	dir := fixtureTree(t)
	got, err := Discover(context.Background(), dir, DiscoverOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.go", "c.md"}, relPaths(t, dir, got))
}

func TestDiscover_Recursive(t *testing.T) {
	dir := fixtureTree(t)
	got, err := Discover(context.Background(), dir, DiscoverOptions{Recursive: true, DefaultExcludes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.go", "c.md", "sub/d.go", "sub/deep/e.txt"}, relPaths(t, dir, got))

	all, err := Discover(context.Background(), dir, DiscoverOptions{Recursive: true})
	require.NoError(t, err)
	assert.Contains(t, relPaths(t, dir, all), ".git/config")
}

func TestDiscover_SymlinkTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "real.txt", "x")
	writeFile(t, dir, "sub/inner.txt", "y")
	require.NoError(t, os.Symlink(filepath.Join(dir, "sub"), filepath.Join(dir, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "filelink")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling")))

	for _, recursive := range []bool{false, true} {
		got, err := Discover(context.Background(), dir, DiscoverOptions{Recursive: recursive})
		require.NoError(t, err)
		rel := relPaths(t, dir, got)
		assert.NotContains(t, rel, "dirlink", "recursive=%v", recursive)
		assert.Contains(t, rel, "filelink")
		assert.Contains(t, rel, "dangling", "dangling links are reported by the scan")
	}
}

func TestDiscover_IncludeExcludeGlobs(t *testing.T) {
	dir := fixtureTree(t)
	got, err := Discover(context.Background(), dir, DiscoverOptions{
		Recursive:       true,
		DefaultExcludes: true,
		Include:         ParseGlobs("**/*.go"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go", "sub/d.go"}, relPaths(t, dir, got))

	got, err = Discover(context.Background(), dir, DiscoverOptions{
		Recursive:       true,
		DefaultExcludes: true,
		Exclude:         ParseGlobs("**/*.md, sub/deep/**"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.go", "sub/d.go"}, relPaths(t, dir, got))
}

func TestDiscover_IgnoreFile(t *testing.T) {
	dir := fixtureTree(t)
	writeFile(t, dir, ".infogrepignore", "*.md\nsub/\n")
	got, err := Discover(context.Background(), dir, DiscoverOptions{Recursive: true, DefaultExcludes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.go"}, relPaths(t, dir, got))
}

func TestDiscover_SkipBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "text.txt", "plain text")
	writeFile(t, dir, "image.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	writeFile(t, dir, "blob.dat", "abc\x00def")
	got, err := Discover(context.Background(), dir, DiscoverOptions{SkipBinary: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"text.txt"}, relPaths(t, dir, got))

	got, err = Discover(context.Background(), dir, DiscoverOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDiscover_SingleFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "only.log", "x")
	got, err := Discover(context.Background(), p, DiscoverOptions{Include: []string{"*.txt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{p}, got)
}

func TestDiscover_MissingInput(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), DiscoverOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseGlobs(t *testing.T) {
	assert.Equal(t, []string{"*.go", "docs/**", "x"}, ParseGlobs(" *.go ,docs/**", "", "x,"))
	assert.Nil(t, ParseGlobs(""))
}
