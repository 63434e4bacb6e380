package engine

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/infogrep/infogrep/internal/patterns"
	"github.com/infogrep/infogrep/internal/types"
)

// approxLineWidth is the assumed average line length used for approximate
// positions.
const approxLineWidth = 80

const truncationMarker = "..."

// Truncate shortens s to at most n runes and appends "..." when anything was
// cut. A negative n disables truncation. Truncating an already truncated
// string with the same n returns it unchanged.
func Truncate(s string, n int) (string, bool) {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i, runes := 0, 0
	for runes < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		runes++
	}
	return s[:i] + truncationMarker, true
}

func approxLine(offset int64) int64 {
	return offset/approxLineWidth + 1
}

// matcher applies the compiled pattern set to the chunks of one file. It
// keeps a resume offset per pattern; the next chunk searches from there, so
// a match that ran into a chunk's carry region is neither reported again nor
// allowed to shift the matches after it.
type matcher struct {
	path     string
	patterns []*patterns.CompiledPattern
	resume   []int64
	truncate int
	exact    bool
	dec      *encoding.Decoder
}

func newMatcher(path string, pats []*patterns.CompiledPattern, truncate int, exact bool) *matcher {
	return &matcher{
		path:     path,
		patterns: pats,
		resume:   make([]int64, len(pats)),
		truncate: truncate,
		exact:    exact,
		dec:      unicode.UTF8.NewDecoder(),
	}
}

// scan reports every match starting in the owned region of ch, pattern by
// pattern, and returns how many records were emitted.
func (m *matcher) scan(ch Chunk, emit func(types.MatchRecord)) int {
	count := 0
	for i, p := range m.patterns {
		lineAt, lines := 0, ch.LineBase
		// Resume where the previous chunk's last match ended so matching
		// stays aligned with a single pass over the whole file.
		base := 0
		if r := m.resume[i] - ch.Start; r > 0 {
			base = int(min(r, int64(len(ch.Content))))
		}
		for _, span := range p.FindAll(ch.Content[base:]) {
			start, end := base+span[0], base+span[1]
			if start >= ch.Limit {
				break
			}
			abs := ch.Start + int64(start)
			if end > start {
				m.resume[i] = ch.Start + int64(end)
			} else {
				m.resume[i] = abs + 1
			}

			rec := types.MatchRecord{
				Path:       m.path,
				Pattern:    p.Name,
				Confidence: p.Confidence,
				Offset:     abs,
				Match:      ch.Content[start:end],
			}
			if m.exact {
				lines += int64(strings.Count(ch.Content[lineAt:start], "\n"))
				lineAt = start
				rec.Line = lines + 1
				rec.LineExact = true
			} else {
				rec.Line = approxLine(abs)
			}
			rec.Preview, rec.Truncated = Truncate(m.decode(rec.Match), m.truncate)
			emit(rec)
			count++
		}
	}
	return count
}

func (m *matcher) decode(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := m.dec.String(s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return out
}
