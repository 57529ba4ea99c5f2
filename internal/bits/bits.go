// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// UniformBoundary returns floor(i * 2^64 / n), the start of the i-th of n
// equal-width ranges of the 64-bit space.
// Precondition: i < n.
func UniformBoundary(i, n uint64) uint64 {
	// (i:0) / n is the 128-bit dividend i<<64; i < n keeps the quotient in 64 bits.
	q, _ := bits.Div64(i, 0, n)
	return q
}
