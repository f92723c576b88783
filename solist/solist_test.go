package solist

import (
	"sync"
	"testing"
)

func TestList_InsertFindDelete(t *testing.T) {
	l := New[int]()
	defer l.Close()

	hashes := []uint32{7, 3, 11, 0, 8}
	for _, h := range hashes {
		if !l.Insert(h, int(h)) {
			t.Fatalf("Insert(%d) should succeed", h)
		}
	}
	if l.Len() != len(hashes) {
		t.Fatalf("Len() = %d, want %d", l.Len(), len(hashes))
	}
	for _, h := range hashes {
		v, ok := l.Find(h)
		if !ok || v != int(h) {
			t.Fatalf("Find(%d) = (%d, %v), want (%d, true)", h, v, ok, h)
		}
	}

	if !l.Delete(3) {
		t.Fatalf("Delete(3) should succeed")
	}
	if _, ok := l.Find(3); ok {
		t.Fatalf("Find(3) should fail after delete")
	}
	if l.Len() != len(hashes)-1 {
		t.Fatalf("Len() = %d, want %d", l.Len(), len(hashes)-1)
	}
	for _, h := range []uint32{7, 11, 0, 8} {
		if _, ok := l.Find(h); !ok {
			t.Fatalf("Find(%d) should still succeed after deleting 3", h)
		}
	}
}

func TestList_DuplicateInsert(t *testing.T) {
	l := New[string]()
	defer l.Close()

	if !l.Insert(42, "first") {
		t.Fatalf("first insert should succeed")
	}
	if l.Insert(42, "second") {
		t.Fatalf("duplicate insert should fail")
	}
	v, ok := l.Find(42)
	if !ok || v != "first" {
		t.Fatalf("Find(42) = (%q, %v), want (\"first\", true)", v, ok)
	}
}

func TestList_InsertDeleteFindNone(t *testing.T) {
	l := New[int]()
	defer l.Close()

	l.Insert(5, 5)
	l.Delete(5)
	if _, ok := l.Find(5); ok {
		t.Fatalf("Find should report absent after insert+delete")
	}
}

func TestList_CollectIsIdempotent(t *testing.T) {
	l := New[int]()
	defer l.Close()

	l.Insert(1, 1)
	l.Delete(1)
	l.domain.Collect()
	l.domain.Collect()
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}

func TestList_HashZero(t *testing.T) {
	l := New[int]()
	defer l.Close()

	if _, ok := l.Find(0); ok {
		t.Fatalf("hash 0 should not be found before insertion")
	}
	if !l.Insert(0, 99) {
		t.Fatalf("Insert(0) should succeed")
	}
	v, ok := l.Find(0)
	if !ok || v != 99 {
		t.Fatalf("Find(0) = (%d, %v), want (99, true)", v, ok)
	}
}

func TestList_ForcedExpansion(t *testing.T) {
	l := NewSized[int](2, 2)
	defer l.Close()

	for _, h := range []uint32{0, 2, 4, 6} {
		if !l.Insert(h, int(h)) {
			t.Fatalf("Insert(%d) should succeed", h)
		}
	}

	table := l.table.Load()
	if table.size < 4 {
		t.Fatalf("table should have doubled to at least 4, got %d", table.size)
	}
	if table.buckets[2].ptr.Load() == nil {
		t.Fatalf("bucket 2 should have been initialized by the expansion")
	}
	for _, h := range []uint32{0, 2, 4, 6} {
		if _, ok := l.Find(h); !ok {
			t.Fatalf("Find(%d) should still succeed after expansion", h)
		}
	}
}

func TestList_ConcurrentDisjointInserts(t *testing.T) {
	l := New[int]()
	defer l.Close()

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := uint32(base*perWorker + i)
				if !l.Insert(h, int(h)) {
					t.Errorf("Insert(%d) unexpectedly failed", h)
				}
			}
		}(w)
	}
	wg.Wait()

	if l.Len() != workers*perWorker {
		t.Fatalf("Len() = %d, want %d", l.Len(), workers*perWorker)
	}
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			h := uint32(w*perWorker + i)
			v, ok := l.Find(h)
			if !ok || v != int(h) {
				t.Fatalf("Find(%d) = (%d, %v), want (%d, true)", h, v, ok, h)
			}
		}
	}
}

func TestList_ConcurrentInsertDeleteFind(t *testing.T) {
	l := New[int]()
	defer l.Close()

	const n = 2000
	for i := 0; i < n; i++ {
		l.Insert(uint32(i), i)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(h uint32) {
			defer wg.Done()
			if h%2 == 0 {
				l.Delete(h)
			} else {
				l.Find(h)
			}
		}(uint32(i))
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		_, ok := l.Find(uint32(i))
		if i%2 == 0 && ok {
			t.Fatalf("hash %d should have been deleted", i)
		}
		if i%2 == 1 && !ok {
			t.Fatalf("hash %d should still be present", i)
		}
	}
}

func TestList_ConcurrentDeleteSameKeyExactlyOneWinner(t *testing.T) {
	l := New[int]()
	defer l.Close()

	l.Insert(17, 17)

	const racers = 16
	var wg sync.WaitGroup
	wins := make([]bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = l.Delete(17)
		}(i)
	}
	wg.Wait()

	winCount := 0
	for _, w := range wins {
		if w {
			winCount++
		}
	}
	if winCount != 1 {
		t.Fatalf("expected exactly one Delete to report success, got %d", winCount)
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after one logical removal", l.Len())
	}
	if _, ok := l.Find(17); ok {
		t.Fatalf("Find(17) should report absent after deletion")
	}
}
