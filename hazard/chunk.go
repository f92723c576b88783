// Package hazard implements Michael's safe memory reclamation (SMR)
// algorithm: a domain of hazard-pointer chunks, a per-goroutine context that
// borrows a block of slots from the domain, and a snapshot+collect pipeline
// that reclaims retired objects only once no hazard pointer protects them
// anymore.
package hazard

import (
	"sync/atomic"
	"unsafe"

	"github.com/benedias/sharedobj/internal/xatomic"
)

// NumBlocks is the number of reservable sub-blocks per chunk. It is fixed
// because the reservation bitmap is a single uint32.
const NumBlocks = 32

// slotPad is the number of unused slots of capacity allocated after each
// sub-block's slots, a full cache line's worth of pointers.
const slotPad = int(xatomic.CacheLineSize / unsafe.Sizeof(uintptr(0)))

// subBlock is one reservable sub-block's slots, given its own backing array
// with slotPad spare slots of capacity after them, so that two goroutines
// publishing into different sub-blocks of the same chunk never share a
// cache line.
type subBlock[T any] struct {
	slots []atomic.Pointer[T]
	_     xatomic.Pad
}

// chunk is a fixed-capacity block of hazard-pointer slots, organized as
// NumBlocks sub-blocks of blkSize slots each. A collection of chunks forms
// the ever-growing pool for a Domain[T].
//
// A slot is written only by the goroutine that currently owns the
// sub-block containing it; every other goroutine only reads it, which is
// why Reserve/Release use acquire-release CAS on the bitmap but slot writes
// themselves need no further synchronization beyond Store's release
// semantics (see context.go).
type chunk[T any] struct {
	blkSize uint32
	hpCount uint32

	bitmap atomic.Uint32
	_      xatomic.Pad

	blocks []subBlock[T]

	next atomic.Pointer[chunk[T]]
}

func newChunk[T any](blkSize uint32) *chunk[T] {
	blocks := make([]subBlock[T], NumBlocks)
	for i := range blocks {
		blocks[i].slots = make([]atomic.Pointer[T], blkSize, int(blkSize)+slotPad)
	}
	return &chunk[T]{
		blkSize: blkSize,
		hpCount: blkSize * NumBlocks,
		blocks:  blocks,
	}
}

// reserve attempts to claim one free sub-block of the given length. It fails
// (returns nil) if length does not match this chunk's granularity or if every
// sub-block is already reserved.
func (c *chunk[T]) reserve(length uint32) []atomic.Pointer[T] {
	if length != c.blkSize {
		return nil
	}
	for {
		expected := c.bitmap.Load()
		if expected == ^uint32(0) {
			return nil
		}
		mask := uint32(1)
		ix := uint32(0)
		for expected&mask != 0 && ix < NumBlocks {
			mask <<= 1
			ix++
		}
		if ix >= NumBlocks {
			return nil
		}
		desired := expected | mask
		if c.bitmap.CompareAndSwap(expected, desired) {
			return c.blocks[ix].slots
		}
		// Lost the race: retry against a fresh snapshot of the bitmap.
	}
}

// release zeroes and frees the sub-block that block points into. It
// reports false if block is not a sub-block of this chunk, which lets
// Domain.Release walk the chunk list until the owning chunk is found.
func (c *chunk[T]) release(block []atomic.Pointer[T]) bool {
	if len(block) == 0 {
		return false
	}
	ix := c.blockIndex(block)
	if ix < 0 {
		return false
	}
	for i := range block {
		block[i].Store(nil)
	}
	mask := uint32(1) << uint(ix)
	for {
		expected := c.bitmap.Load()
		desired := expected &^ mask
		if c.bitmap.CompareAndSwap(expected, desired) {
			return true
		}
	}
}

func (c *chunk[T]) blockIndex(block []atomic.Pointer[T]) int {
	for ix := range c.blocks {
		slots := c.blocks[ix].slots
		if len(slots) > 0 && &slots[0] == &block[0] {
			return ix
		}
	}
	return -1
}

// copyHazardPointers copies every slot value currently held by this chunk
// (including nils) into dst, which must have room for count() values,
// returning the number of slots copied.
func (c *chunk[T]) copyHazardPointers(dst []*T) int {
	n := 0
	for bi := range c.blocks {
		for i := range c.blocks[bi].slots {
			dst[n] = c.blocks[bi].slots[i].Load()
			n++
		}
	}
	return n
}

func (c *chunk[T]) count() uint32 { return c.hpCount }

func (c *chunk[T]) hasReservations() bool { return c.bitmap.Load() != 0 }
