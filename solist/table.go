package solist

import (
	"sync/atomic"

	"github.com/benedias/sharedobj/internal/xatomic"
)

// bucketRow is one bucket-table slot: the dummy/data node pointer plus a
// trailing cache-line pad so that two goroutines publishing into adjacent
// buckets (e.g. InitialiseBucket racing on neighboring slots during an
// expand) never false-share a cache line.
type bucketRow[T any] struct {
	ptr atomic.Pointer[bucket[T]]
	_   xatomic.Pad
}

// bucketTable bundles the bucket-index array together with its size so the
// pair is always published as one atomically-swapped unit. This is the fix
// for the REDESIGN FLAG in SPEC_FULL.md §9: readers must never be able to
// observe a new size paired with the old table, or vice versa.
type bucketTable[T any] struct {
	buckets []bucketRow[T]
	size    uint32
}

func newBucketTable[T any](size uint32) *bucketTable[T] {
	t := &bucketTable[T]{
		buckets: make([]bucketRow[T], size),
		size:    size,
	}
	t.buckets[0].ptr.Store(newDummy[T](0))
	return t
}

// grown returns a new bucketTable of double the size, with the lower half
// copied from old and the upper half left nil (lazily initialized on
// demand, same as every other bucket).
func (t *bucketTable[T]) grown() *bucketTable[T] {
	newSize := t.size * 2
	nt := &bucketTable[T]{
		buckets: make([]bucketRow[T], newSize),
		size:    newSize,
	}
	for i := uint32(0); i < t.size; i++ {
		nt.buckets[i].ptr.Store(t.buckets[i].ptr.Load())
	}
	return nt
}
