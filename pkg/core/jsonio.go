package core

import (
	"encoding/json"
	"io"
)

// MarshalRecords pretty-prints records as a JSON array. The raw match text
// is not part of the encoding; use Preview.
func MarshalRecords(w io.Writer, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(recs)
}

// UnmarshalRecords decodes the output of MarshalRecords.
func UnmarshalRecords(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}
