// Package result defines the query engine's output slice.
package result

import "github.com/atricence/voxdata/internal/domain/record"

// Slice is one page of records plus the pre-pagination match count.
// Invariant: len(Items()) == min(limit, max(0, total-(page-1)*limit)).
type Slice struct {
	items []record.Record
	total int
}

// New creates a result slice.
func New(items []record.Record, total int) Slice {
	if items == nil {
		items = []record.Record{}
	}
	return Slice{items: items, total: total}
}

// Items returns the page of records in final order.
func (s Slice) Items() []record.Record { return s.items }

// Total returns the count of records matching the filters before pagination.
func (s Slice) Total() int { return s.total }

// Len returns the number of records in this page.
func (s Slice) Len() int { return len(s.items) }
