package patterns

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:embed defaults/*.yml
var defaultFS embed.FS

// DefaultDir is the directory, relative to the config dir, that bootstrapped
// pattern files are written to.
const DefaultDir = "default-patterns"

// Defaults returns the bundled pattern files keyed by file name.
func Defaults() map[string][]byte {
	out := map[string][]byte{}
	entries, err := fs.ReadDir(defaultFS, "defaults")
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := defaultFS.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			continue
		}
		out[e.Name()] = b
	}
	return out
}

// DefaultNames lists the bundled pattern file names in sorted order.
func DefaultNames() []string {
	m := Defaults()
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
