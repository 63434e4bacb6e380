package report

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/infogrep/infogrep/internal/types"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool        `json:"tool"`
	AutomationDetails *sarifAutomation `json:"automationDetails,omitempty"`
	Results           []sarifResult    `json:"results"`
	Properties        map[string]any   `json:"properties,omitempty"`
}

type sarifAutomation struct {
	ID string `json:"id"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
	Properties       sarifProps   `json:"properties"`
}

type sarifProps struct {
	Confidence types.Confidence `json:"confidence"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine  int64        `json:"startLine"`
	ByteOffset int64        `json:"byteOffset"`
	ByteLength int          `json:"byteLength"`
	Snippet    sarifMessage `json:"snippet"`
}

func confidenceToLevel(c types.Confidence) string {
	switch c {
	case types.ConfHigh:
		return "error"
	case types.ConfMedium:
		return "warning"
	default:
		return "note"
	}
}

// SARIFWriter buffers records and writes a SARIF 2.1.0 document on Close.
type SARIFWriter struct {
	mu      sync.Mutex
	w       io.Writer
	runID   string
	version string
	rules   []sarifRule
	ruleIdx map[string]int
	results []sarifResult
}

func NewSARIF(w io.Writer, runID, version string) *SARIFWriter {
	return &SARIFWriter{w: w, runID: runID, version: version, ruleIdx: map[string]int{}}
}

func (s *SARIFWriter) Write(rec types.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.ruleIdx[rec.Pattern]
	if !ok {
		idx = len(s.rules)
		s.ruleIdx[rec.Pattern] = idx
		s.rules = append(s.rules, sarifRule{
			ID:               rec.Pattern,
			ShortDescription: sarifMessage{Text: rec.Pattern},
			Properties:       sarifProps{Confidence: rec.Confidence},
		})
	}
	s.results = append(s.results, sarifResult{
		RuleID:    rec.Pattern,
		RuleIndex: idx,
		Level:     confidenceToLevel(rec.Confidence),
		Message:   sarifMessage{Text: rec.Pattern + " detected"},
		Locations: []sarifLoc{{
			PhysicalLocation: sarifPhys{
				ArtifactLocation: sarifArt{URI: rec.Path},
				Region: sarifRegion{
					StartLine:  rec.Line,
					ByteOffset: rec.Offset,
					ByteLength: len(rec.Match),
					Snippet:    sarifMessage{Text: rec.Preview},
				},
			},
		}},
		PartialFingerprints: map[string]string{"infogrep/v1": Fingerprint(rec)},
	})
	return nil
}

func (s *SARIFWriter) Close(sum Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "infogrep", Version: s.version, Rules: s.rules}},
		Results: s.results,
		Properties: map[string]any{
			"filesScanned": sum.FilesScanned,
			"failures":     sum.Failures,
			"patterns":     sum.Patterns,
		},
	}
	if run.Tool.Driver.Rules == nil {
		run.Tool.Driver.Rules = []sarifRule{}
	}
	if run.Results == nil {
		run.Results = []sarifResult{}
	}
	if s.runID != "" {
		run.AutomationDetails = &sarifAutomation{ID: "infogrep/" + s.runID}
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
