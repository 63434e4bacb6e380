package patterns

import (
	"strings"

	"github.com/infogrep/infogrep/internal/types"
)

// Select applies an optional confidence filter. An empty filter keeps every
// definition. Otherwise only definitions whose label equals the filter
// (case-insensitively, one of low|medium|high) are kept, in input order.
// An empty result is reported as *NoApplicablePatternsError.
func Select(defs []types.PatternDefinition, filter string) ([]types.PatternDefinition, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		if len(defs) == 0 {
			return nil, &NoApplicablePatternsError{}
		}
		return defs, nil
	}
	want := types.ParseConfidence(filter)
	var out []types.PatternDefinition
	if want != types.ConfUnknown {
		for _, d := range defs {
			if d.Confidence == want {
				out = append(out, d)
			}
		}
	}
	if len(out) == 0 {
		return nil, &NoApplicablePatternsError{Filter: filter}
	}
	return out, nil
}
