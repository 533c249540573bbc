// Package point defines the data point model shared by storage, the HTTP
// API and the export pipeline.
package point

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout renders timestamps for the API: RFC 3339 with an explicit
// numeric offset, so UTC appears as +00:00 rather than Z. Fractional
// seconds carry up to microsecond precision and trailing zeros are
// trimmed.
const TimeLayout = "2006-01-02T15:04:05.999999-07:00"

var nullLiteral = []byte("null")

// Point is a single stored observation. Meta holds the client-supplied
// metadata document verbatim; a nil Meta means none was provided.
type Point struct {
	ID        int64
	Timestamp time.Time
	Value     float64
	Meta      json.RawMessage
}

// jsonPoint is the wire form of a point. Meta stays raw so metadata
// round-trips byte for byte.
type jsonPoint struct {
	ID    int64           `json:"id"`
	Ts    string          `json:"ts"`
	Value float64         `json:"value"`
	Meta  json.RawMessage `json:"meta"`
}

// MarshalJSON renders the point in its API shape: the timestamp as a UTC
// string with explicit offset, and meta as an explicit null when absent.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPoint{
		ID:    p.ID,
		Ts:    p.Timestamp.UTC().Format(TimeLayout),
		Value: p.Value,
		Meta:  NormalizeMeta(p.Meta),
	})
}

// UnmarshalJSON parses the API shape back into a point. The timestamp is
// normalized to UTC and a JSON null meta becomes nil.
func (p *Point) UnmarshalJSON(data []byte) error {
	var w jsonPoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, w.Ts)
	if err != nil {
		return fmt.Errorf("parse point timestamp %q: %w", w.Ts, err)
	}
	p.ID = w.ID
	p.Timestamp = ts.UTC()
	p.Value = w.Value
	p.Meta = NormalizeMeta(w.Meta)
	return nil
}

// NormalizeMeta maps an empty or JSON-null metadata document to nil so
// that "no metadata" has a single representation.
func NormalizeMeta(meta json.RawMessage) json.RawMessage {
	if len(meta) == 0 || bytes.Equal(meta, nullLiteral) {
		return nil
	}
	return meta
}
