package patterns

import (
	"errors"
	"fmt"
)

// ErrNoApplicablePatterns is matched by NoApplicablePatternsError via errors.Is.
var ErrNoApplicablePatterns = errors.New("no applicable patterns")

// PatternCompileError reports a pattern whose regular expression failed to
// compile.
type PatternCompileError struct {
	Name  string
	Regex string
	Err   error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("compile pattern %q: %v", e.Name, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }

// NoApplicablePatternsError is returned when no pattern survives the
// confidence filter, or the pattern file holds no patterns at all.
type NoApplicablePatternsError struct {
	Filter string
}

func (e *NoApplicablePatternsError) Error() string {
	if e.Filter == "" {
		return "no patterns available"
	}
	return fmt.Sprintf("no patterns found with confidence level %q", e.Filter)
}

func (e *NoApplicablePatternsError) Is(target error) bool {
	return target == ErrNoApplicablePatterns
}
