package solist

import (
	"github.com/benedias/sharedobj/hazard"
	"github.com/benedias/sharedobj/markptr"
)

// Accessor hazard slots: a cursor over the list always pins prev, cur, and
// next so that a concurrent Collect cannot reclaim any of the three nodes
// currently being examined.
const (
	slotPrev = 0
	slotCur  = 1
	slotNext = 2

	accessorSlots = 3
)

// accessor is a goroutine's cursor over a split-ordered list: it tracks
// prev/cur/next and publishes each into its leased hazard.Context before
// ever dereferencing it, per spec.md §4.5.
type accessor[T any] struct {
	ctx  *hazard.Context[bucket[T]]
	prev *bucket[T]
	cur  *bucket[T]
	next *bucket[T]
}

func newAccessor[T any](ctx *hazard.Context[bucket[T]]) *accessor[T] {
	return &accessor[T]{ctx: ctx}
}

// publish stores p into the hazard slot before the caller treats it as
// safe-to-dereference, and returns p back for assignment convenience. It is
// only safe to use when p is already known to be protected against
// reclamation — either it is a dummy node (never removed) or it was already
// published and validated in another slot. Anywhere a pointer is freshly
// read out of a MarkPtr that a concurrent Delete could unlink, use
// publishFrom instead.
func (a *accessor[T]) publish(slot int, p *bucket[T]) *bucket[T] {
	a.ctx.Store(slot, p)
	return p
}

// publishFrom safely publishes into slot the node currently reachable
// through src: it loads src, stores that value into the hazard slot, then
// re-reads src and compares. If src changed in the gap, the node it
// published may already be unprotected and on its way to reclamation, so it
// retries against the freshly observed value instead of trusting the stale
// one. This is the read-publish-reread protocol hazard pointers require
// before a pointer taken from shared, mutable state may be dereferenced.
func (a *accessor[T]) publishFrom(slot int, src *markptr.MarkPtr[bucket[T]]) *bucket[T] {
	for {
		p := src.Deref()
		a.ctx.Store(slot, p)
		if q := src.Deref(); q == p {
			return p
		}
	}
}

// zap clears all three hazard slots at the end of a public operation.
func (a *accessor[T]) zap() {
	a.ctx.Clear(slotPrev)
	a.ctx.Clear(slotCur)
	a.ctx.Clear(slotNext)
	a.prev, a.cur, a.next = nil, nil, nil
}

// initialiseBucket lazily creates and links the dummy node for slot,
// recursing on its parent first since a child bucket's insertion point is
// only reachable once the parent dummy is in the list. Returns the dummy
// that ends up installed at table.buckets[slot], whether this call created
// it or another goroutine raced it in first.
func (a *accessor[T]) initialiseBucket(table *bucketTable[T], slot uint32) *bucket[T] {
	if slot == 0 {
		return table.buckets[0].ptr.Load()
	}
	if existing := table.buckets[slot].ptr.Load(); existing != nil {
		return existing
	}

	parentDummy := a.initialiseBucket(table, parentSlot(slot))
	node := newDummy[T](slot)
	key := node.key

	for {
		a.prev = a.publish(slotPrev, parentDummy)
		a.cur = a.publishFrom(slotCur, &a.prev.next)
		for a.cur != nil && a.cur.key < key {
			a.prev = a.publish(slotPrev, a.cur)
			a.cur = a.publishFrom(slotCur, &a.prev.next)
		}

		if existing := table.buckets[slot].ptr.Load(); existing != nil {
			return existing
		}
		if a.cur != nil && a.cur.key == key {
			// Another goroutine already linked this dummy; adopt it.
			table.buckets[slot].ptr.CompareAndSwap(nil, a.cur)
			return table.buckets[slot].ptr.Load()
		}

		node.next.Store(a.cur)
		if a.prev.next.CAS(a.cur, node) {
			table.buckets[slot].ptr.CompareAndSwap(nil, node)
			return table.buckets[slot].ptr.Load()
		}
		// Lost the race for this insertion point; rescan from the parent.
	}
}

// findNode walks the list starting at hashv's bucket dummy, advancing
// prev/cur/next while next's key is within range, helping unlink any
// logically deleted node it encounters along the way. Reports whether a
// data node with the exact key for hashv is present, leaving cur pointing
// at it if so (or at the last node with a smaller key otherwise).
func (a *accessor[T]) findNode(table *bucketTable[T], hashv uint32) bool {
	slot := bucketSlot(hashv, table.size)
	key := dataKey(hashv)
	dummy := a.initialiseBucket(table, slot)

retry:
	a.prev = a.publish(slotPrev, dummy)
	a.cur = a.publish(slotCur, dummy)
	a.next = a.publishFrom(slotNext, &a.cur.next)

	for a.next != nil && a.next.key <= key {
		_, marked := a.next.next.Load()
		if marked {
			// a.next is logically deleted: help unlink it from a.cur, then
			// retire it through this goroutine's own hazard context.
			succ := a.next.next.Deref()
			if !a.cur.next.CAS(a.next, succ) {
				goto retry
			}
			assertRetiredWasMarked(a.next)
			a.ctx.DeleteItem(a.next)
			a.next = a.publishFrom(slotNext, &a.cur.next)
			continue
		}
		a.prev = a.publish(slotPrev, a.cur)
		a.cur = a.publish(slotCur, a.next)
		a.next = a.publishFrom(slotNext, &a.cur.next)
	}

	return a.cur != nil && a.cur.key == key
}
