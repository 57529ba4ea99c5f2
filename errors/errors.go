// Package errors defines all exported error sentinels for the sortlib library.
//
// Both the top-level sortlib package and the internal packages import from
// here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Record and boundary errors
var (
	ErrRecordAlignment       = errors.New("sortlib: buffer length is not a multiple of the record size")
	ErrInvalidPartitionCount = errors.New("sortlib: partition count must be at least 1")
	ErrInvalidBoundaries     = errors.New("sortlib: boundaries must be non-empty, start at 0 and be non-decreasing")
)

// Merge errors
var (
	ErrInvalidBatchSize = errors.New("sortlib: batch capacity must be positive")
	ErrRefillPending    = errors.New("sortlib: merger is waiting for a refill")
	ErrUnknownPartition = errors.New("sortlib: partition is not awaiting a refill")
	ErrUnsortedInput    = errors.New("sortlib: refill chunk is not a sorted continuation of its partition")
)

// File errors
var (
	ErrCorruptFile  = errors.New("sortlib: file size is not a multiple of the record size")
	ErrSizeMismatch = errors.New("sortlib: merged byte count does not match input size")
	ErrMergerClosed = errors.New("sortlib: file merger has already run")
)
