// Package report turns match records into text, JSON lines or SARIF output.
// Every sink serialises writes, so scan workers may call Write concurrently.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"

	"github.com/infogrep/infogrep/internal/types"
)

// Sink receives match records as they are produced.
type Sink interface {
	Write(rec types.MatchRecord) error
	// Close flushes buffered output. Summary is informational; formats that
	// do not carry run statistics ignore it.
	Close(sum Summary) error
}

// Summary carries run statistics for formats that embed them.
type Summary struct {
	FilesScanned int
	Failures     int
	Patterns     int
}

// Options configures sink construction.
type Options struct {
	NoColor bool
	RunID   string
	Version string
}

// New returns the sink for format: text, json or sarif.
func New(format string, w io.Writer, opts Options) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return NewText(w, !opts.NoColor), nil
	case "json":
		return NewJSON(w, opts.RunID), nil
	case "sarif":
		return NewSARIF(w, opts.RunID, opts.Version), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or sarif)", format)
	}
}

// Styler colours confidence labels.
type Styler struct {
	enabled bool
	low     *color.Color
	medium  *color.Color
	high    *color.Color
}

// NewStyler returns a Styler; when enabled is false labels pass through.
func NewStyler(enabled bool) Styler {
	s := Styler{
		enabled: enabled,
		low:     color.New(color.FgBlue),
		medium:  color.New(color.FgYellow),
		high:    color.New(color.FgRed, color.Bold),
	}
	if enabled {
		for _, c := range []*color.Color{s.low, s.medium, s.high} {
			c.EnableColor()
		}
	}
	return s
}

// Confidence renders a confidence label.
func (s Styler) Confidence(c types.Confidence) string {
	label := string(c)
	if !s.enabled {
		return label
	}
	switch c {
	case types.ConfLow:
		return s.low.Sprint(label)
	case types.ConfMedium:
		return s.medium.Sprint(label)
	case types.ConfHigh:
		return s.high.Sprint(label)
	default:
		return label
	}
}

// TextWriter prints one block per record:
//
//	[<path>] (position: <line>)
//	[<pattern>] [<confidence>]
//
//	<preview>
//
// Exact line numbers are labelled "line" instead of "position".
type TextWriter struct {
	mu    sync.Mutex
	w     io.Writer
	style Styler
}

func NewText(w io.Writer, colors bool) *TextWriter {
	return &TextWriter{w: w, style: NewStyler(colors)}
}

func (t *TextWriter) Write(rec types.MatchRecord) error {
	label := "position"
	if rec.LineExact {
		label = "line"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] (%s: %d)\n", rec.Path, label, rec.Line)
	fmt.Fprintf(&b, "[%s] [%s]\n\n", rec.Pattern, t.style.Confidence(rec.Confidence))
	b.WriteString(rec.Preview)
	b.WriteString("\n\n")

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextWriter) Close(Summary) error { return nil }

// Fingerprint identifies a finding by path, pattern and matched bytes, so the
// same secret moving within a file keeps its fingerprint.
func Fingerprint(rec types.MatchRecord) string {
	d := xxhash.New()
	_, _ = d.WriteString(rec.Path)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(rec.Pattern)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(rec.Match)
	s := strconv.FormatUint(d.Sum64(), 16)
	return strings.Repeat("0", 16-len(s)) + s
}
