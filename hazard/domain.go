package hazard

import "sync/atomic"

// AllocError is the value Domain panics with when its chunk pool is in a
// state it cannot recover from (see Release). Such failures are treated as
// fatal to the process, matching the C++ ancestor's design: there is no
// partial-state rollback to attempt.
type AllocError struct{ Reason string }

func (e *AllocError) Error() string { return "hazard: allocation failed: " + e.Reason }

// deleteNode holds one retired pointer awaiting reclamation. Domain.Collect
// walks a private copy of these, obtained by atomically swapping the shared
// LIFO out from under new pushes.
type deleteNode[T any] struct {
	next    atomic.Pointer[deleteNode[T]]
	payload *T
}

// Domain is the scope within which hazard pointers are comparable. One
// Domain instance is typically bound to a single data structure (here, one
// solist.List[T]). It owns an append-only list of chunks and a lock-free
// LIFO of pending deletions.
type Domain[T any] struct {
	poolsHead  atomic.Pointer[chunk[T]]
	deleteHead atomic.Pointer[deleteNode[T]]
}

// NewDomain creates an empty hazard-pointer domain. The zero value is also
// usable directly; NewDomain exists for symmetry with the rest of the API
// and to make call sites read like the teacher's constructors.
func NewDomain[T any]() *Domain[T] { return &Domain[T]{} }

// Reserve returns a block of length contiguous hazard-pointer slots,
// creating a new chunk if none of the existing ones have room. It always
// succeeds; callers are expected to be able to proceed immediately, mirroring
// the "reservation is always fulfilled, or it's a fatal allocation error"
// contract.
func (d *Domain[T]) Reserve(length uint32) []atomic.Pointer[T] {
	for {
		if block := d.poolsReserve(length); block != nil {
			return block
		}
		// Every chunk is full, including any chunk that other goroutines
		// filled right after it was pushed: grow the pool and retry.
		d.pushNewChunk(length)
	}
}

func (d *Domain[T]) poolsReserve(length uint32) []atomic.Pointer[T] {
	for p := d.poolsHead.Load(); p != nil; p = p.next.Load() {
		if block := p.reserve(length); block != nil {
			return block
		}
	}
	return nil
}

func (d *Domain[T]) pushNewChunk(blkSize uint32) {
	n := newChunk[T](blkSize)
	for {
		head := d.poolsHead.Load()
		n.next.Store(head)
		if d.poolsHead.CompareAndSwap(head, n) {
			return
		}
	}
}

// Release returns a previously reserved block to its owning chunk. Exactly
// one chunk in the pool owns the address range.
func (d *Domain[T]) Release(block []atomic.Pointer[T]) {
	for p := d.poolsHead.Load(); p != nil; p = p.next.Load() {
		if p.release(block) {
			return
		}
	}
	panic(&AllocError{Reason: "release of a block owned by no chunk in this domain"})
}

// EnqueueForDelete wraps ptr in a fresh delete node and prepends it to the
// domain's delete list. Wait-free except for CAS retries against concurrent
// pushers.
func (d *Domain[T]) EnqueueForDelete(ptr *T) {
	if ptr == nil {
		return
	}
	d.pushDeleteNode(&deleteNode[T]{payload: ptr})
}

// EnqueueForDeleteAll enqueues every non-nil pointer in items and nils out
// the caller's slice, transferring ownership to the domain.
func (d *Domain[T]) EnqueueForDeleteAll(items []*T) {
	for i, p := range items {
		if p != nil {
			d.EnqueueForDelete(p)
			items[i] = nil
		}
	}
}

func (d *Domain[T]) pushDeleteNode(n *deleteNode[T]) {
	for {
		head := d.deleteHead.Load()
		n.next.Store(head)
		if d.deleteHead.CompareAndSwap(head, n) {
			return
		}
	}
}

// Collect is the heart of reclamation: it swaps out the shared delete list,
// takes a Snapshot of every hazard pointer in the domain, frees every
// retired payload the snapshot does not protect, and pushes the rest back.
// Multiple goroutines may call Collect concurrently without violating
// safety — each works against its own private local list, and at worst a
// node protected at snapshot time is simply re-queued.
func (d *Domain[T]) Collect() {
	local := d.deleteHead.Swap(nil)
	if local == nil {
		return
	}

	snap := NewSnapshot(d)

	var survivors *deleteNode[T]
	for local != nil {
		cur := local
		local = local.next.Load()
		if snap.Search(cur.payload) {
			cur.next.Store(survivors)
			survivors = cur
		}
		// else: not protected, safe to drop — the underlying payload is
		// freed by Go's GC once this function returns and no reference
		// remains; there is nothing to "delete" explicitly.
	}

	for survivors != nil {
		n := survivors
		survivors = survivors.next.Load()
		d.pushDeleteNode(n)
	}
}
