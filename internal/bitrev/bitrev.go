// Package bitrev implements the pure bit-reversal helper the split-ordered
// list uses to turn a bucket index into a key that sorts compatibly with
// every future table size.
package bitrev

import "math/bits"

// Reverse32 reverses the bit order of h, so that incrementally setting the
// high bits of a bucket index (as the table doubles) only ever affects the
// low bits of the resulting key.
func Reverse32(h uint32) uint32 {
	return bits.Reverse32(h)
}
