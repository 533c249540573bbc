// Package timeparse turns the loosely-typed timestamps clients send into
// UTC instants.
//
// Ingest payloads arrive with timestamps as JSON numbers, numeric strings,
// several date-time string shapes, or nothing at all. Normalize accepts
// all of them and never fails: anything absent or unparseable resolves to
// the current time, so a bad timestamp degrades the point instead of
// rejecting it.
//
// Resolution order:
//
//  1. Absent or empty values become the current UTC time.
//  2. Numeric-looking values (JSON numbers, or strings of digits with at
//     most one decimal point) are Unix epoch seconds. Fractional seconds
//     are honored.
//  3. Strings are tried against the fixed layouts in priority order, with
//     naive values read as UTC.
//  4. Remaining ISO 8601 shapes are tried last; explicit offsets are
//     honored and the result converted to UTC.
//  5. Anything else becomes the current UTC time.
//
// The numeric check runs before the layouts, so a bare "2023" is epoch
// seconds, not a year.
package timeparse

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Epoch seconds representable as a date between year 1 and 9999. Values
// outside this window fall through to layout parsing.
const (
	minEpochSec = -62135596800
	maxEpochSec = 253402300799
)

// Fixed layouts tried in priority order. The Z suffix is a literal, so
// these parse as wall-clock UTC.
var layouts = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fallback layouts for general ISO 8601 shapes, including explicit
// offsets and space-separated date-times.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// Normalize converts a raw timestamp value into a UTC instant. It is
// total: no input causes an error.
func Normalize(raw any) time.Time {
	switch v := raw.(type) {
	case nil:
		return time.Now().UTC()
	case string:
		return normalizeString(v)
	case float64:
		if t, ok := fromEpoch(v); ok {
			return t
		}
		return time.Now().UTC()
	case int:
		if t, ok := fromEpoch(float64(v)); ok {
			return t
		}
		return time.Now().UTC()
	case int64:
		if t, ok := fromEpoch(float64(v)); ok {
			return t
		}
		return time.Now().UTC()
	default:
		return time.Now().UTC()
	}
}

func normalizeString(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	if looksNumeric(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if t, ok := fromEpoch(f); ok {
				return t
			}
		}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// looksNumeric reports whether s is ASCII digits with at most one decimal
// point. Signs and exponents do not count as numeric here; a value like
// "2023-01-02" must reach the layouts, not the epoch path.
func looksNumeric(s string) bool {
	stripped := strings.Replace(s, ".", "", 1)
	if stripped == "" {
		return false
	}
	for i := 0; i < len(stripped); i++ {
		if stripped[i] < '0' || stripped[i] > '9' {
			return false
		}
	}
	return true
}

// fromEpoch converts Unix epoch seconds to UTC, rejecting values that do
// not fit a calendar date.
func fromEpoch(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f < minEpochSec || f > maxEpochSec {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), true
}
