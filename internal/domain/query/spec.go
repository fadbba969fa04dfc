// Package query defines the validated query specification.
package query

import (
	"fmt"

	"github.com/atricence/voxdata/internal/domain"
)

// Pagination limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection normalizes a sort direction string.
// Empty defaults to descending (newest first), matching the datasets'
// default recency sort.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "desc":
		return Desc, nil
	case "asc":
		return Asc, nil
	default:
		return "", fmt.Errorf("%w: sort direction must be asc or desc, got %q", domain.ErrInvalidQuery, s)
	}
}

// Pair is one raw filter argument as supplied by a caller.
// Pairs keep arrival order so derived text is deterministic.
type Pair struct {
	Key   string
	Value string
}

// Spec is a validated query specification: which dataset to hit, what to
// filter on, how to sort, and which page window to return.
//
// Raw filter pairs are interpreted by the dataset's connector against its
// schema descriptor; pairs naming unknown fields are ignored, not errors.
type Spec struct {
	dataset string
	filters []Pair
	search  string
	sortBy  string
	sortDir Direction
	page    int
	limit   int
}

// New validates and normalizes a query spec.
// Page < 1 is clamped to 1; limit <= 0 to DefaultLimit; limit > MaxLimit
// to MaxLimit. Malformed pagination is corrected, never an error.
func New(
	dataset string,
	filters []Pair,
	search, sortBy string,
	sortDir Direction,
	page, limit int,
) (Spec, error) {
	if dataset == "" {
		return Spec{}, fmt.Errorf("%w: dataset is required", domain.ErrInvalidQuery)
	}
	if sortDir == "" {
		sortDir = Desc
	}
	if sortDir != Asc && sortDir != Desc {
		return Spec{}, fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidQuery, sortDir)
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Spec{
		dataset: dataset,
		filters: filters,
		search:  search,
		sortBy:  sortBy,
		sortDir: sortDir,
		page:    page,
		limit:   limit,
	}, nil
}

// Dataset returns the dataset identifier.
func (s *Spec) Dataset() string { return s.dataset }

// Filters returns the raw filter pairs in arrival order.
func (s *Spec) Filters() []Pair { return s.filters }

// Search returns the free-text search query ("" when absent).
func (s *Spec) Search() string { return s.search }

// SortBy returns the requested sort field ("" means dataset default).
func (s *Spec) SortBy() string { return s.sortBy }

// SortDir returns the sort direction.
func (s *Spec) SortDir() Direction { return s.sortDir }

// Page returns the 1-based page number.
func (s *Spec) Page() int { return s.page }

// Limit returns the page size.
func (s *Spec) Limit() int { return s.limit }
