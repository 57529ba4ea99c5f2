package sortlib

import (
	"sort"

	sorterrors "github.com/tamirms/sortlib/errors"
	intbits "github.com/tamirms/sortlib/internal/bits"
)

// GetBoundaries splits the key space [0, 2^64) into numPartitions
// contiguous half-open ranges of near-equal width and returns the start of
// each range: boundaries[i] = floor(i * 2^64 / numPartitions).
//
// The split is uniform. It assumes keys are roughly uniformly distributed
// and does not sample data to correct for skew.
func GetBoundaries(numPartitions int) ([]Key, error) {
	if numPartitions < 1 {
		return nil, sorterrors.ErrInvalidPartitionCount
	}
	n := uint64(numPartitions)
	boundaries := make([]Key, numPartitions)
	for i := range n {
		boundaries[i] = Key(intbits.UniformBoundary(i, n))
	}
	return boundaries, nil
}

// ValidateBoundaries checks that boundaries is non-empty, starts at 0 and
// is non-decreasing.
func ValidateBoundaries(boundaries []Key) error {
	if len(boundaries) == 0 || boundaries[0] != 0 {
		return sorterrors.ErrInvalidBoundaries
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] < boundaries[i-1] {
			return sorterrors.ErrInvalidBoundaries
		}
	}
	return nil
}

// PartitionOf returns the index i such that boundaries[i] <= key <
// boundaries[i+1]; the last range is open-ended. With repeated boundary
// values the last of the equal ranges is returned, since the earlier ones
// are empty.
// Precondition: ValidateBoundaries(boundaries) == nil.
func PartitionOf(key Key, boundaries []Key) int {
	// First boundary strictly greater than key, minus one.
	i := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i] > key
	})
	return i - 1
}
