// Package solist implements a lock-free split-ordered hash list (Shalev &
// Shavit): a single sorted linked list of dummy and data nodes keyed by
// bit-reversed hash, indexed by a power-of-two bucket table that is grown
// lazily as buckets overflow. Reclamation of removed data nodes is handled
// by the hazard package.
package solist

import (
	"sync"
	"sync/atomic"

	"github.com/benedias/sharedobj/hazard"
)

const (
	// defaultMaxBucketLength is the expansion threshold used by New.
	defaultMaxBucketLength = 4
	// contextRetireCap bounds how many retired nodes a leased
	// hazard.Context accumulates before it forces a Reclaim pass.
	contextRetireCap = 8
)

// List is a concurrent set of T, keyed by a caller-supplied uint32 hash.
// The zero value is not usable; construct one with New or NewSized.
type List[T any] struct {
	table           atomic.Pointer[bucketTable[T]]
	maxBucketLength uint32
	nItems          atomic.Int64

	domain *hazard.Domain[bucket[T]]

	ctxPool sync.Pool

	mu          sync.Mutex
	allContexts []*hazard.Context[bucket[T]]
}

// New creates a split-ordered list with an initial table of 2 buckets and
// the default expansion threshold.
func New[T any]() *List[T] {
	return NewSized[T](2, defaultMaxBucketLength)
}

// NewSized creates a split-ordered list with the given initial table size
// (rounded up to at least 1) and bucket-length expansion threshold.
func NewSized[T any](size, maxBucketLength uint32) *List[T] {
	if size == 0 {
		size = 1
	}
	if maxBucketLength == 0 {
		maxBucketLength = defaultMaxBucketLength
	}

	l := &List[T]{
		maxBucketLength: maxBucketLength,
		domain:          hazard.NewDomain[bucket[T]](),
	}
	l.table.Store(newBucketTable[T](size))
	l.ctxPool.New = func() any {
		ctx := hazard.NewContext[bucket[T]](l.domain, accessorSlots, contextRetireCap)
		l.mu.Lock()
		l.allContexts = append(l.allContexts, ctx)
		l.mu.Unlock()
		return ctx
	}
	return l
}

func (l *List[T]) acquireAccessor() *accessor[T] {
	ctx := l.ctxPool.Get().(*hazard.Context[bucket[T]])
	return newAccessor[T](ctx)
}

func (l *List[T]) releaseAccessor(a *accessor[T]) {
	a.zap()
	l.ctxPool.Put(a.ctx)
}

// Len returns the current count of data nodes in the list.
func (l *List[T]) Len() int {
	return int(l.nItems.Load())
}

// Close releases every hazard.Context this list ever leased. The list must
// not be used afterward.
func (l *List[T]) Close() {
	l.mu.Lock()
	ctxs := l.allContexts
	l.allContexts = nil
	l.mu.Unlock()
	for _, ctx := range ctxs {
		ctx.Release()
	}
}

// Insert adds hashv/payload to the list, returning false without modifying
// anything if an entry with the same hash already exists.
func (l *List[T]) Insert(hashv uint32, payload T) bool {
	a := l.acquireAccessor()
	defer l.releaseAccessor(a)

	node := newDataNode[T](hashv, payload)

	var table *bucketTable[T]
	for {
		table = l.table.Load()
		if a.findNode(table, hashv) {
			return false
		}
		node.next.Store(a.next)
		if a.cur.next.CAS(a.next, node) {
			break
		}
	}

	l.nItems.Add(1)
	l.maybeExpand(a, table, hashv)
	return true
}

// Delete removes the entry for hashv, returning false if it was not
// present. The removed node is physically unlinked by whichever goroutine
// wins the race — this one, or a later Find/Insert/Delete that encounters
// the mark while helping — and retired through that goroutine's own hazard
// context.
func (l *List[T]) Delete(hashv uint32) bool {
	a := l.acquireAccessor()
	defer l.releaseAccessor(a)

	for {
		table := l.table.Load()
		if !a.findNode(table, hashv) {
			return false
		}

		target, succ := a.cur, a.next
		// CASMarkIfUnmarked (not the weaker CASMark) is required here: two
		// goroutines can both have findNode return cur=target before either
		// marks it, and CASMark would let the second one "succeed" again
		// against the pointer it never actually changed, double-decrementing
		// nItems for one logical removal.
		if !target.next.CASMarkIfUnmarked(succ) {
			continue
		}
		l.nItems.Add(-1)

		if a.prev.next.CAS(target, succ) {
			assertRetiredWasMarked(target)
			a.ctx.DeleteItem(target)
		}
		return true
	}
}

// Find looks up hashv and, if present, returns a copy of its payload. The
// copy is taken while the node is still hazard-protected, so no pointer
// into the list ever escapes this call.
func (l *List[T]) Find(hashv uint32) (T, bool) {
	a := l.acquireAccessor()
	defer l.releaseAccessor(a)

	table := l.table.Load()
	if !a.findNode(table, hashv) {
		var zero T
		return zero, false
	}
	return a.cur.payload, true
}

// maybeExpand implements the expansion check from spec.md §4.5: after a
// successful insert, count the run of consecutive data nodes in the
// affected bucket and either double the table or split the bucket.
func (l *List[T]) maybeExpand(a *accessor[T], table *bucketTable[T], hashv uint32) {
	slot := bucketSlot(hashv, table.size)
	dummy := table.buckets[slot].ptr.Load()

	run := uint32(0)
	cur := dummy.next.Deref()
	for cur != nil && cur.isData {
		run++
		cur = cur.next.Deref()
	}

	if run <= l.maxBucketLength {
		return
	}

	oldSize := table.size
	overflowing := run >= 2*l.maxBucketLength ||
		uint64(l.nItems.Load()) >= uint64(l.maxBucketLength)*uint64(oldSize)

	if overflowing {
		grown := l.expand(table)
		a.initialiseBucket(grown, slot+oldSize)
		return
	}

	// Pre-split the bucket by initializing the slot it will fall into once
	// the table doubles. Read the table fresh rather than trusting oldSize
	// here — a concurrent expand may already have made this slot valid,
	// and oldSize is exactly the stale-local-vs-single-source-of-truth
	// hazard this repository's hazard/split design is required to avoid.
	target := slot + oldSize/2
	if current := l.table.Load(); target < current.size {
		a.initialiseBucket(current, target)
	}
}

// expand doubles the table, publishing the (table, size) pair atomically.
// If another goroutine already installed a same-or-larger table, this
// returns that one instead of racing past it.
func (l *List[T]) expand(old *bucketTable[T]) *bucketTable[T] {
	if cur := l.table.Load(); cur.size > old.size {
		return cur
	}
	grown := old.grown()
	if l.table.CompareAndSwap(old, grown) {
		return grown
	}
	return l.table.Load()
}
