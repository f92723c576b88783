package hazard

import (
	"sync"
	"testing"
)

func TestDomain_ChunkBoundary(t *testing.T) {
	d := NewDomain[int]()
	const blk = 4

	b := d.Reserve(blk)
	if len(b) != blk {
		t.Fatalf("expected block of size %d, got %d", blk, len(b))
	}

	// Exhaust the rest of the first chunk's sub-blocks.
	for i := 0; i < NumBlocks-1; i++ {
		d.Reserve(blk)
	}

	// One more reservation must come from a freshly allocated second chunk.
	overflow := d.Reserve(blk)
	if len(overflow) != blk {
		t.Fatalf("expected overflow block of size %d, got %d", blk, len(overflow))
	}

	first := d.poolsHead.Load()
	if first == nil || first.next.Load() == nil {
		t.Fatalf("expected at least two chunks in the pool after overflow")
	}
}

func TestContext_DeferredFree(t *testing.T) {
	d := NewDomain[int]()
	readerCtx := NewContext[int](d, 1, 4)
	writerCtx := NewContext[int](d, 1, 4)
	defer readerCtx.Release()
	defer writerCtx.Release()

	n := new(int)
	*n = 7

	readerCtx.Store(0, n)

	writerCtx.DeleteItem(n)
	writerCtx.Reclaim()

	snap := NewSnapshot(d)
	if !snap.Search(n) {
		t.Fatalf("node should still be protected by reader's hazard pointer")
	}

	readerCtx.Clear(0)
	d.Collect()

	snap2 := NewSnapshot(d)
	if snap2.Search(n) {
		t.Fatalf("node should no longer be reported as protected once unpinned")
	}
}

func TestContext_RetireOverflowEscalates(t *testing.T) {
	d := NewDomain[int]()
	pinner := NewContext[int](d, 4, 2)
	defer pinner.Release()

	items := make([]*int, 4)
	for i := range items {
		v := i
		items[i] = &v
		pinner.Store(i, items[i])
	}

	writer := NewContext[int](d, 1, 2)
	defer writer.Release()

	for _, p := range items {
		writer.DeleteItem(p) // fills the retire buffer of capacity 2 twice
	}

	// All four pointers remain hazard-protected by pinner, so Reclaim must
	// have escalated all of them to the domain's shared delete list.
	snap := NewSnapshot(d)
	for _, p := range items {
		if !snap.Search(p) {
			t.Fatalf("pointer %v should still be protected", p)
		}
	}

	if len(writer.deleted) != 0 {
		t.Fatalf("writer's retire buffer should be empty after escalation, has %d entries", len(writer.deleted))
	}
	escalated := map[*int]int{}
	for n := d.deleteHead.Load(); n != nil; n = n.next.Load() {
		escalated[n.payload]++
	}
	for _, p := range items {
		if escalated[p] != 1 {
			t.Fatalf("pointer %v should be on the domain delete list exactly once, found %d times", p, escalated[p])
		}
	}
}

func TestChunkPool_GrowthMonotonic(t *testing.T) {
	d := NewDomain[int]()
	const s = 2

	var prevChunks int
	countChunks := func() int {
		n := 0
		for p := d.poolsHead.Load(); p != nil; p = p.next.Load() {
			n++
		}
		return n
	}

	for i := 0; i < 200; i++ {
		ctx := NewContext[int](d, s, s)
		ctx.Release()
		cur := countChunks()
		if cur < prevChunks {
			t.Fatalf("chunk pool shrank from %d to %d", prevChunks, cur)
		}
		prevChunks = cur
	}

	for p := d.poolsHead.Load(); p != nil; p = p.next.Load() {
		if p.hasReservations() {
			t.Fatalf("chunk still has reservations after all contexts released")
		}
	}
}

func TestSnapshot_ConcurrentCollect(t *testing.T) {
	d := NewDomain[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := NewContext[int](d, 1, 1)
			v := i
			ctx.DeleteItem(&v)
			d.Collect()
			ctx.Release()
		}(i)
	}
	wg.Wait()
}
