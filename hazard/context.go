package hazard

import "sync/atomic"

// Context is a goroutine's handle onto a Domain: it holds one reserved
// block of S hazard-pointer slots and a bounded retire-buffer of up to R
// pending deletions. A Context must not be used from more than one
// goroutine concurrently — the retire buffer is single-writer — though any
// goroutine may read another's hazard slots via At.
type Context[T any] struct {
	domain *Domain[T]
	block  []atomic.Pointer[T]

	deleted  []*T
	released bool
}

// NewContext reserves a block of numSlots hazard-pointer slots from domain
// and prepares a retire buffer sized for retireCap pending deletions.
func NewContext[T any](domain *Domain[T], numSlots, retireCap uint32) *Context[T] {
	return &Context[T]{
		domain:  domain,
		block:   domain.Reserve(numSlots),
		deleted: make([]*T, 0, retireCap),
	}
}

// Store publishes ptr into slot index with release ordering: any subsequent
// dereference of ptr by this goroutine is guaranteed to see a value at
// least as fresh as the one observed when ptr was obtained, because
// atomic.Pointer.Store/Load in Go already provide sequentially consistent
// acquire/release semantics — a strengthening of, never a weakening of, the
// ordering the algorithm requires.
func (c *Context[T]) Store(index int, ptr *T) {
	c.block[index].Store(ptr)
}

// At returns the value currently published in slot index.
func (c *Context[T]) At(index int) *T {
	return c.block[index].Load()
}

// Clear nulls slot index, the per-slot equivalent of Accessor.zap.
func (c *Context[T]) Clear(index int) {
	c.block[index].Store(nil)
}

// DeleteItem appends ptr to the retire buffer, running Reclaim if it is
// now full.
func (c *Context[T]) DeleteItem(ptr *T) {
	c.deleted = append(c.deleted, ptr)
	if cap(c.deleted) == len(c.deleted) {
		c.Reclaim()
	}
}

// Reclaim takes a domain snapshot and frees every retired pointer this
// context holds that no hazard pointer protects. If nothing could be freed
// the whole buffer escalates to the domain's shared delete list; otherwise
// the survivors are compacted to the front.
func (c *Context[T]) Reclaim() {
	snap := NewSnapshot(c.domain)

	freed := 0
	for i, p := range c.deleted {
		if p == nil {
			continue
		}
		if !snap.Search(p) {
			c.deleted[i] = nil
			freed++
		}
	}

	if freed == 0 {
		c.domain.EnqueueForDeleteAll(c.deleted)
		c.deleted = c.deleted[:0]
		return
	}

	compacted := c.deleted[:0]
	for _, p := range c.deleted {
		if p != nil {
			compacted = append(compacted, p)
		}
	}
	c.deleted = compacted
}

// Release returns the block to the domain, escalates any still-pending
// retired pointers for domain-level Collect, and runs Collect once. After
// Release the Context must not be used again.
func (c *Context[T]) Release() {
	if debugAssertions && c.released {
		panic("hazard: Context released twice, violating its single-owner contract")
	}
	c.released = true

	c.domain.Release(c.block)
	c.domain.EnqueueForDeleteAll(c.deleted)
	c.deleted = nil
	c.domain.Collect()
	for i := range c.block {
		c.block[i].Store(nil)
	}
}
