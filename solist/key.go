package solist

import (
	"math/bits"

	"github.com/benedias/sharedobj/internal/bitrev"
)

// dataBit distinguishes a data node's key (low bit set) from a dummy
// bucket's key (low bit clear). One bit of the original 32-bit hash space
// is sacrificed to this tag; see SPEC_FULL.md for why this repository keeps
// the 32-bit key instead of widening it.
const dataBit = 1

// dummyKey computes the sorted-list key for the dummy bucket that owns
// slot.
func dummyKey(slot uint32) uint32 {
	return bitrev.Reverse32(slot) &^ dataBit
}

// dataKey computes the sorted-list key for a data node whose item hashed
// to hashv. Items belonging to the same bucket end up contiguous in the
// single sorted list, immediately after that bucket's dummy.
func dataKey(hashv uint32) uint32 {
	return bitrev.Reverse32(hashv) | dataBit
}

// bucketSlot maps a hash to a table slot for a table of the given size.
func bucketSlot(hashv, size uint32) uint32 {
	return hashv % size
}

// parentSlot strips the highest set bit of slot, yielding the bucket that
// must already be initialized before slot itself can be.
func parentSlot(slot uint32) uint32 {
	if slot == 0 {
		return 0
	}
	return slot &^ (uint32(1) << uint(bits.Len32(slot)-1))
}
