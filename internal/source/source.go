// Package source defines the record-source contract: loading a named
// collection of raw records from a backing store.
package source

import (
	"context"

	"github.com/atricence/voxdata/internal/domain/record"
)

// Loader loads the full collection for a dataset. Implementations return
// an immutable snapshot: callers never mutate the returned slice, and a
// reload replaces it wholesale. Whether consecutive calls share a snapshot
// is a driver choice; consumers get no caching guarantee.
type Loader interface {
	Load(ctx context.Context, dataset string) ([]record.Record, error)
	Ping(ctx context.Context) error
}
