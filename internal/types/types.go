package types

import "strings"

// Confidence is a coarse-grained estimate of how likely a pattern match is a
// true positive.
type Confidence string

const (
	ConfLow     Confidence = "low"
	ConfMedium  Confidence = "medium"
	ConfHigh    Confidence = "high"
	ConfUnknown Confidence = "unknown"
)

// ParseConfidence maps a label to a Confidence, case-insensitively. Labels
// other than low, medium and high map to ConfUnknown.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfLow:
		return ConfLow
	case ConfMedium:
		return ConfMedium
	case ConfHigh:
		return ConfHigh
	default:
		return ConfUnknown
	}
}

// PatternDefinition is a named regular expression with a confidence label, as
// loaded from a pattern file.
type PatternDefinition struct {
	Name       string     `json:"name" yaml:"name"`
	Regex      string     `json:"regex" yaml:"regex"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// MatchRecord describes one pattern match in a file. Line is an estimate
// derived from the byte offset unless LineExact is set.
type MatchRecord struct {
	Path       string     `json:"path"`
	Pattern    string     `json:"pattern"`
	Confidence Confidence `json:"confidence"`
	Offset     int64      `json:"offset"`
	Line       int64      `json:"line"`
	LineExact  bool       `json:"line_exact,omitempty"`
	Match      string     `json:"-"`
	Preview    string     `json:"preview"`
	Truncated  bool       `json:"truncated,omitempty"`
}
