// Package filter defines the predicate set applied by the query engine.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atricence/voxdata/internal/domain/record"
)

// MaxConditions is the maximum number of conditions per filter set.
const MaxConditions = 32

// Set is an ordered list of filter conditions combined with AND semantics.
// Order is preserved so that derived text (query context lines) is
// deterministic for a given request.
type Set struct {
	conditions []Condition
}

// NewSet validates and creates a filter Set.
func NewSet(conditions []Condition) (Set, error) {
	if len(conditions) > MaxConditions {
		return Set{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Set{conditions: conditions}, nil
}

// Conditions returns the conditions in application order.
func (s Set) Conditions() []Condition { return s.conditions }

// IsEmpty reports whether the set has no conditions.
func (s Set) IsEmpty() bool { return len(s.conditions) == 0 }

// Matches reports whether every condition holds for the record.
// A condition on a field the record does not carry never holds,
// so such records are excluded rather than raising an error.
func (s Set) Matches(r record.Record) bool {
	for _, c := range s.conditions {
		if !c.matches(r) {
			return false
		}
	}
	return true
}

// Condition is a single predicate: an exact match, a numeric range,
// or a date floor.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
	since     string
}

// NewMatch creates an exact-match condition. String comparison is
// case-insensitive; values that parse as numbers on both sides compare
// numerically.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: value}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// NewSince creates a date-floor condition: the record's field value must
// compare >= the given ISO date. ISO-8601 dates order lexically, which is
// what collections store.
func NewSince(key, isoDate string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if isoDate == "" {
		return Condition{}, fmt.Errorf("since value is required for key %q", key)
	}
	return Condition{key: key, since: isoDate}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact-match value ("" for non-match conditions).
func (c Condition) Match() string { return c.match }

// Range returns the numeric range (nil for non-range conditions).
func (c Condition) Range() *Range { return c.rangeExpr }

// Since returns the ISO date floor ("" for non-since conditions).
func (c Condition) Since() string { return c.since }

// Describe renders the condition for human-readable query context.
func (c Condition) Describe() string {
	switch {
	case c.match != "":
		return fmt.Sprintf("%s=%s", c.key, c.match)
	case c.since != "":
		return fmt.Sprintf("%s>=%s", c.key, c.since)
	case c.rangeExpr != nil:
		return fmt.Sprintf("%s in %s", c.key, c.rangeExpr.describe())
	default:
		return c.key
	}
}

func (c Condition) matches(r record.Record) bool {
	switch {
	case c.match != "":
		got, ok := r.String(c.key)
		if !ok {
			return false
		}
		if gn, err1 := strconv.ParseFloat(got, 64); err1 == nil {
			if wn, err2 := strconv.ParseFloat(c.match, 64); err2 == nil {
				return gn == wn
			}
		}
		return strings.EqualFold(got, c.match)
	case c.since != "":
		got, ok := r.String(c.key)
		return ok && got >= c.since
	case c.rangeExpr != nil:
		got, ok := r.Number(c.key)
		return ok && c.rangeExpr.contains(got)
	default:
		return false
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeBounds validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeBounds(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

func (r *Range) contains(v float64) bool {
	if r.gt != nil && !(v > *r.gt) {
		return false
	}
	if r.gte != nil && !(v >= *r.gte) {
		return false
	}
	if r.lt != nil && !(v < *r.lt) {
		return false
	}
	if r.lte != nil && !(v <= *r.lte) {
		return false
	}
	return true
}

func (r *Range) describe() string {
	var b strings.Builder
	switch {
	case r.gt != nil:
		fmt.Fprintf(&b, "(%g", *r.gt)
	case r.gte != nil:
		fmt.Fprintf(&b, "[%g", *r.gte)
	default:
		b.WriteString("(-inf")
	}
	b.WriteString(", ")
	switch {
	case r.lt != nil:
		fmt.Fprintf(&b, "%g)", *r.lt)
	case r.lte != nil:
		fmt.Fprintf(&b, "%g]", *r.lte)
	default:
		b.WriteString("+inf)")
	}
	return b.String()
}
