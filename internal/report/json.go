package report

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/infogrep/infogrep/internal/types"
)

// jsonRecord is the JSON lines shape of a match record. The raw match is
// never written; only its fingerprint and the preview are.
type jsonRecord struct {
	RunID       string           `json:"run_id,omitempty"`
	Path        string           `json:"path"`
	Pattern     string           `json:"pattern"`
	Confidence  types.Confidence `json:"confidence"`
	Offset      int64            `json:"offset"`
	Line        int64            `json:"line"`
	LineExact   bool             `json:"line_exact"`
	Preview     string           `json:"preview"`
	Truncated   bool             `json:"truncated,omitempty"`
	Fingerprint string           `json:"fingerprint"`
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	mu    sync.Mutex
	enc   *json.Encoder
	runID string
}

func NewJSON(w io.Writer, runID string) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONWriter{enc: enc, runID: runID}
}

func (j *JSONWriter) Write(rec types.MatchRecord) error {
	out := jsonRecord{
		RunID:       j.runID,
		Path:        rec.Path,
		Pattern:     rec.Pattern,
		Confidence:  rec.Confidence,
		Offset:      rec.Offset,
		Line:        rec.Line,
		LineExact:   rec.LineExact,
		Preview:     rec.Preview,
		Truncated:   rec.Truncated,
		Fingerprint: Fingerprint(rec),
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(out)
}

func (j *JSONWriter) Close(Summary) error { return nil }
