package patterns

import (
	regexp "github.com/wasilibs/go-re2"

	"github.com/infogrep/infogrep/internal/types"
)

// CompiledPattern is a ready-to-match pattern. It is never mutated after
// Compile returns and is safe for concurrent use by scan workers.
type CompiledPattern struct {
	Name       string
	Confidence types.Confidence
	re         *regexp.Regexp
}

// FindAll returns the byte spans of all non-overlapping, leftmost-first
// matches in s.
func (p *CompiledPattern) FindAll(s string) [][]int {
	return p.re.FindAllStringIndex(s, -1)
}

// Source returns the regular expression the pattern was compiled from.
func (p *CompiledPattern) Source() string {
	return p.re.String()
}

// Compile turns definitions into compiled patterns, preserving order. The
// first invalid expression aborts the whole batch.
func Compile(defs []types.PatternDefinition) ([]*CompiledPattern, error) {
	if len(defs) == 0 {
		return nil, &NoApplicablePatternsError{}
	}
	out := make([]*CompiledPattern, 0, len(defs))
	for _, d := range defs {
		re, err := regexp.Compile(d.Regex)
		if err != nil {
			return nil, &PatternCompileError{Name: d.Name, Regex: d.Regex, Err: err}
		}
		conf := d.Confidence
		if conf == "" {
			conf = types.ConfUnknown
		}
		out = append(out, &CompiledPattern{Name: d.Name, Confidence: conf, re: re})
	}
	return out, nil
}
