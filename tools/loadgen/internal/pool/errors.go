package pool

import "errors"

// Sentinel errors shared by all pool implementations.
var (
	// ErrPoolClosed is returned by any operation after Close.
	ErrPoolClosed = errors.New("parameter pool is closed")

	// ErrValueNotFound is returned when a requested value is not found.
	ErrValueNotFound = errors.New("value not found in pool")

	// ErrInvalidSemanticType is returned for an empty or malformed semantic type.
	ErrInvalidSemanticType = errors.New("invalid semantic type")
)
