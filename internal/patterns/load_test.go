package patterns

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infogrep/infogrep/internal/types"
)

func TestParse_WrappedAndFlatEntries(t *testing.T) {
	doc := `
version: 1.2.0
patterns:
  - pattern:
      name: AWS Access Key
      regex: AKIA[0-9A-Z]{16}
      confidence: HIGH
  - name: Slack Token
    regex: xox[abprs]-[A-Za-z0-9-]{10,48}
    confidence: medium
  - pattern:
      name: Odd
      regex: odd
      confidence: critical
`
	set, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", set.Version)
	require.Len(t, set.Patterns, 3)
	assert.Equal(t, types.PatternDefinition{Name: "AWS Access Key", Regex: "AKIA[0-9A-Z]{16}", Confidence: types.ConfHigh}, set.Patterns[0])
	assert.Equal(t, "Slack Token", set.Patterns[1].Name)
	assert.Equal(t, types.ConfMedium, set.Patterns[1].Confidence)
	assert.Equal(t, types.ConfUnknown, set.Patterns[2].Confidence)
}

func TestParse_MissingFields(t *testing.T) {
	_, err := Parse([]byte("patterns:\n  - pattern:\n      name: no regex\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern 1")

	_, err = Parse([]byte("patterns:\n  - regex: abc\n"))
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	set, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, set.Patterns)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("patterns: [\n"))
	assert.Error(t, err)
}

func TestEncode_WrappedLayout(t *testing.T) {
	set := Set{Version: "1.0.0", Patterns: []types.PatternDefinition{
		{Name: "tok", Regex: `tok_[a-z]+`, Confidence: types.ConfLow},
	}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, set))
	assert.Contains(t, buf.String(), "- pattern:\n")
	back, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, set, back)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pattern file")
}
