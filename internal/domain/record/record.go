// Package record defines the opaque record type flowing through the pipeline.
package record

import (
	"strconv"
	"strings"
)

// Record is an opaque field-to-value mapping as decoded from JSON.
// The pipeline only inspects fields named by filters, sort keys, and
// searchable-field lists; everything else passes through untouched.
// Records are immutable once loaded: a reload replaces the collection
// wholesale, never mutates it in place.
type Record map[string]any

// Has reports whether the record carries the field at all.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// String returns the field rendered as a string, and whether it was present.
// Numbers are formatted without a trailing ".0" so that JSON integers
// round-trip as their natural text form.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return formatNumber(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Number returns the field as a float64, and whether it was present
// and numeric. Numeric strings are parsed.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// formatNumber renders a JSON number the way it was most likely written:
// integers without a decimal point, everything else via strconv.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
