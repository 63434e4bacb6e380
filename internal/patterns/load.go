package patterns

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/infogrep/infogrep/internal/types"
)

// Set is a parsed pattern file.
type Set struct {
	Version  string
	Patterns []types.PatternDefinition
}

// Entry is one item of the patterns list. Entries are normally wrapped in a
// "pattern" key; flat entries are accepted as well.
type Entry struct {
	Pattern *Body `yaml:"pattern,omitempty"`
	Body    `yaml:",inline"`
}

// Body carries the fields of a pattern entry.
type Body struct {
	Name       string `yaml:"name,omitempty" validate:"required"`
	Regex      string `yaml:"regex,omitempty" validate:"required"`
	Confidence string `yaml:"confidence,omitempty"`
}

type document struct {
	Version  string  `yaml:"version,omitempty"`
	Patterns []Entry `yaml:"patterns"`
}

var validate = validator.New()

// Load reads and parses the pattern file at path.
func Load(path string) (Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read pattern file %s: %w", path, err)
	}
	set, err := Parse(b)
	if err != nil {
		return Set{}, fmt.Errorf("parse pattern file %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a pattern document. Every entry needs a name and a regex;
// confidence labels outside low|medium|high become unknown.
func Parse(data []byte) (Set, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return Set{}, err
	}
	set := Set{Version: doc.Version, Patterns: make([]types.PatternDefinition, 0, len(doc.Patterns))}
	for i, e := range doc.Patterns {
		body := e.Body
		if e.Pattern != nil {
			body = *e.Pattern
		}
		if err := validate.Struct(body); err != nil {
			return Set{}, fmt.Errorf("pattern %d: %w", i+1, err)
		}
		set.Patterns = append(set.Patterns, types.PatternDefinition{
			Name:       body.Name,
			Regex:      body.Regex,
			Confidence: types.ParseConfidence(body.Confidence),
		})
	}
	return set, nil
}

// Encode writes set in the wrapped "pattern:" layout.
func Encode(w io.Writer, set Set) error {
	doc := document{Version: set.Version, Patterns: make([]Entry, 0, len(set.Patterns))}
	for _, p := range set.Patterns {
		doc.Patterns = append(doc.Patterns, Entry{Pattern: &Body{
			Name:       p.Name,
			Regex:      p.Regex,
			Confidence: string(p.Confidence),
		}})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
