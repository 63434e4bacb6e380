package engine

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/h2non/filetype"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
}

// sniffLen is how much of a file is inspected to decide whether it is binary.
const sniffLen = 8192

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

// looksBinary reports whether the head of a file is a known binary format or
// contains a NUL byte.
func looksBinary(head []byte) bool {
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return true
	}
	n := len(head)
	if n > 800 {
		n = 800
	}
	for i := 0; i < n; i++ {
		if head[i] == 0 {
			return true
		}
	}
	return false
}

// sniffBinary opens p and inspects its head. Unreadable files are reported
// as text so the scan itself surfaces the failure.
func sniffBinary(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	return looksBinary(buf[:n])
}

// allowedByGlobs applies include globs as a positive filter and exclude
// globs last. Globs use forward slashes and are tried against both the
// relative path and its base name.
func allowedByGlobs(relPath string, include, exclude []string) bool {
	rp := filepath.ToSlash(relPath)
	if len(include) > 0 && !matchAnyGlob(rp, include) {
		return false
	}
	if len(exclude) > 0 && matchAnyGlob(rp, exclude) {
		return false
	}
	return true
}

// ParseGlobs splits a comma separated glob list, dropping empty items.
func ParseGlobs(list ...string) []string {
	var out []string
	for _, s := range list {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func matchAnyGlob(p string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
		if ok, _ := doublestar.Match(trimGlobPrefix(g), p); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, path.Base(p)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
