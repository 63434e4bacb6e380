// Package ignore implements gitignore-style path exclusion for
// .infogrepignore files.
package ignore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up in the scan root.
const FileName = ".infogrepignore"

type rule struct {
	globs  []string
	negate bool
}

// Matcher decides whether a slash-separated relative path is ignored. The
// zero value ignores nothing.
type Matcher struct {
	rules []rule
}

// Load reads an ignore file. A missing file yields an empty Matcher.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads ignore rules, one per line. Blank lines and lines starting with
// '#' are skipped, '!' re-includes, a trailing '/' matches a directory and
// everything below it, and a leading '/' anchors the rule to the root.
func Parse(r io.Reader) (Matcher, error) {
	var m Matcher
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rl rule
		if strings.HasPrefix(line, "!") {
			rl.negate = true
			line = line[1:]
		}
		dir := strings.HasSuffix(line, "/")
		line = strings.TrimSuffix(line, "/")
		anchored := strings.HasPrefix(line, "/") || strings.Contains(line, "/")
		line = strings.TrimPrefix(line, "/")
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		base := []string{line}
		if !anchored {
			base = append(base, "**/"+line)
		}
		for _, g := range base {
			if !dir {
				rl.globs = append(rl.globs, g)
			}
			rl.globs = append(rl.globs, g+"/**")
		}
		m.rules = append(m.rules, rl)
	}
	return m, sc.Err()
}

// Match reports whether rel is ignored. The last matching rule wins.
func (m Matcher) Match(rel string) bool {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	ignored := false
	for _, rl := range m.rules {
		for _, g := range rl.globs {
			if ok, _ := doublestar.Match(g, rel); ok {
				ignored = !rl.negate
				break
			}
		}
	}
	return ignored
}
