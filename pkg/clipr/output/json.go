package output

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonHistory is the JSON document for ViewHistory.
type jsonHistory struct {
	Entries []EntryInfo `json:"entries" yaml:"entries"`
	Count   int         `json:"count" yaml:"count"`
	Limit   int         `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	doc, err := document(r)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// document selects the structure encoded for a result. It is shared by the
// JSON and YAML formatters.
func document(r *Result) (any, error) {
	switch r.View {
	case ViewHistory:
		entries := r.Entries
		if entries == nil {
			entries = []EntryInfo{}
		}
		return jsonHistory{Entries: entries, Count: len(entries), Limit: r.Limit}, nil
	case ViewStats:
		return r.Stats, nil
	default:
		return nil, fmt.Errorf("unsupported view %d", r.View)
	}
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes one compact JSON object per entry, for streaming
// into tools like jq. Stats are written as a single line.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.View == ViewStats {
		return json.NewEncoder(w).Encode(r.Stats)
	}
	for _, e := range r.Entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
