package repo

import "errors"

var (
	// ErrConfiguration is returned for registration and setup faults, such as
	// querying through an entity type that was never registered. These are
	// fatal and never retried.
	ErrConfiguration = errors.New("lattice: configuration fault")

	// ErrIllegalQuery is returned when a query shape is rejected before any
	// store call: unknown property, off-schema sort field, unsupported
	// connective or operator, arity mismatch.
	ErrIllegalQuery = errors.New("lattice: illegal query")

	// ErrDocumentAccess is returned for store-side addressing failures, such
	// as deleting a partitioned document by id without its partition key
	// value. Callers may retry with corrected partition info.
	ErrDocumentAccess = errors.New("lattice: document access failure")

	// ErrNotFound is returned when a point lookup matches no document.
	ErrNotFound = errors.New("lattice: document not found")
)
