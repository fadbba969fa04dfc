// Package engine implements the shared filter/sort/paginate algorithm
// behind every connector's fetch, plus the free-text search scan.
// Given an identical collection and identical parameters the output is
// identical: the sort is stable, tie-broken by load order, which keeps
// summaries and shape classification reproducible.
package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/atricence/voxdata/internal/domain/filter"
	"github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/result"
)

// Option adjusts engine behavior for one Apply call.
type Option func(*options)

type options struct {
	categoricalField string
	categoricalOrder []string
}

// WithCategoricalOrder installs a fixed value ordering for the given sort
// field. When the sort key matches, records order by position in the list
// (earlier = first), with unlisted values last; sort direction does not
// apply. Used for the support-ticket priority field: high, medium, low.
func WithCategoricalOrder(field string, order []string) Option {
	return func(o *options) {
		o.categoricalField = field
		o.categoricalOrder = order
	}
}

// Apply filters, sorts, and paginates a loaded collection.
//
// Filters combine with AND in a single pass; records missing a filtered
// field are excluded. Sorting falls back to nothing when sortBy is empty
// (load order kept). Total counts post-filter, pre-pagination matches.
// An out-of-range page yields an empty slice, never an error.
func Apply(
	records []record.Record,
	filters filter.Set,
	sortBy string,
	dir query.Direction,
	page, limit int,
	opts ...Option,
) result.Slice {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	matched := make([]record.Record, 0, len(records))
	for _, r := range records {
		if filters.Matches(r) {
			matched = append(matched, r)
		}
	}

	if sortBy != "" {
		sortRecords(matched, sortBy, dir, &o)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return result.New([]record.Record{}, total)
	}
	end := start + limit
	if end > total {
		end = total
	}
	return result.New(matched[start:end], total)
}

// Search scans searchable fields for a case-insensitive substring match.
// Matches keep load order; the first limit matches are returned while
// total reflects every match in the collection.
func Search(records []record.Record, fields []string, text string, limit int) result.Slice {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" || len(fields) == 0 {
		return result.New([]record.Record{}, 0)
	}

	total := 0
	items := make([]record.Record, 0, limit)
	for _, r := range records {
		if !matchesText(r, fields, q) {
			continue
		}
		total++
		if len(items) < limit {
			items = append(items, r)
		}
	}
	return result.New(items, total)
}

func matchesText(r record.Record, fields []string, q string) bool {
	for _, f := range fields {
		if v, ok := r.String(f); ok && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// sortKey is the extracted comparable value of one record's sort field.
type sortKey struct {
	present bool
	numeric bool
	num     float64
	str     string
}

func extractKey(r record.Record, field string) sortKey {
	if n, ok := r.Number(field); ok {
		return sortKey{present: true, numeric: true, num: n}
	}
	if s, ok := r.String(field); ok {
		return sortKey{present: true, str: s}
	}
	return sortKey{}
}

// compare orders two keys ascending. A missing field sorts as the type's
// minimum value: before every present value.
func compare(a, b sortKey) int {
	if !a.present || !b.present {
		switch {
		case a.present == b.present:
			return 0
		case !a.present:
			return -1
		default:
			return 1
		}
	}
	if a.numeric && b.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(keyText(a), keyText(b))
}

func keyText(k sortKey) string {
	if k.numeric {
		// Mixed-type column: numbers fall back to their text form.
		return strconv.FormatFloat(k.num, 'g', -1, 64)
	}
	return k.str
}

func sortRecords(records []record.Record, sortBy string, dir query.Direction, o *options) {
	if o.categoricalField == sortBy && len(o.categoricalOrder) > 0 {
		rank := make(map[string]int, len(o.categoricalOrder))
		for i, v := range o.categoricalOrder {
			rank[v] = i
		}
		unlisted := len(o.categoricalOrder)
		sort.SliceStable(records, func(i, j int) bool {
			return categoricalRank(records[i], sortBy, rank, unlisted) <
				categoricalRank(records[j], sortBy, rank, unlisted)
		})
		return
	}

	keys := make([]sortKey, len(records))
	for i, r := range records {
		keys[i] = extractKey(r, sortBy)
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		c := compare(keys[idx[i]], keys[idx[j]])
		if dir == query.Desc {
			return c > 0
		}
		return c < 0
	})
	sorted := make([]record.Record, len(records))
	for i, from := range idx {
		sorted[i] = records[from]
	}
	copy(records, sorted)
}

func categoricalRank(r record.Record, field string, rank map[string]int, unlisted int) int {
	v, ok := r.String(field)
	if !ok {
		return unlisted
	}
	if n, ok := rank[strings.ToLower(v)]; ok {
		return n
	}
	return unlisted
}
