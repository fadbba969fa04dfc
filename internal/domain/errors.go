// Package domain holds the shared error taxonomy of the query pipeline.
package domain

import "errors"

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrUnknownDataset signals a dataset name with no registered connector.
	ErrUnknownDataset = errors.New("unknown dataset")
	// ErrInvalidQuery signals query parameters that could not be corrected by clamping.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrSourceUnavailable signals that a dataset's backing source could not be read.
	// The failure is scoped to the affected dataset; other datasets stay serviceable.
	ErrSourceUnavailable = errors.New("source unavailable")
)
