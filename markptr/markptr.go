// Package markptr provides the mark-pointer primitive consumed by the
// hazard and solist packages: an atomically swappable (pointer, mark-bit)
// pair.
//
// The algorithms in this repository were designed around a tagged machine
// word, where the low bit of the pointer itself carries the mark (see
// benedias/sharedobj's C++ ancestor). Go's garbage collector does not allow
// pointers with borrowed low bits to exist even transiently, so MarkPtr
// instead publishes an immutable (pointer, mark) pair behind a single
// atomic.Pointer, following the markableRef idiom used by lock-free
// skip-list implementations in Go. A CAS of "the tagged word" becomes a CAS
// of "the wrapper pointer"; every other property required by callers
// (atomic load, independent mark inspection, compare-and-swap of either the
// pointer alone or the pointer+mark pair) is preserved exactly.
package markptr

import "sync/atomic"

// pair is the immutable value a MarkPtr points to. It is never mutated in
// place; every state transition allocates a fresh pair and swaps it in.
type pair[T any] struct {
	ptr  *T
	mark bool
}

// MarkPtr is an atomic cell holding a pointer to T plus one bit of
// out-of-band state. The zero value holds a nil pointer with mark unset.
type MarkPtr[T any] struct {
	v atomic.Pointer[pair[T]]
}

// Store installs ptr with mark cleared, unconditionally.
func (m *MarkPtr[T]) Store(ptr *T) {
	m.v.Store(&pair[T]{ptr: ptr})
}

// Load returns the current pointer and mark bit.
func (m *MarkPtr[T]) Load() (*T, bool) {
	p := m.v.Load()
	if p == nil {
		return nil, false
	}
	return p.ptr, p.mark
}

// Deref returns the current pointer with the mark bit cleared from the
// result's perspective (the mark is not part of the pointer's identity).
func (m *MarkPtr[T]) Deref() *T {
	p := m.v.Load()
	if p == nil {
		return nil
	}
	return p.ptr
}

// IsMarked reports the current mark bit.
func (m *MarkPtr[T]) IsMarked() bool {
	p := m.v.Load()
	return p != nil && p.mark
}

// CAS compares the full (pointer, mark=false) state against old and, only if
// the currently stored mark is also false, swaps in new with mark cleared.
// Unlike CASMark, which ignores whatever mark is currently set, CAS requires
// the whole word to match — a structural CAS that wasn't meant to touch the
// mark bit must never silently clear a concurrently set mark by matching on
// pointer identity alone.
func (m *MarkPtr[T]) CAS(old, new *T) bool {
	cur := m.v.Load()
	var curPtr *T
	var curMark bool
	if cur != nil {
		curPtr = cur.ptr
		curMark = cur.mark
	}
	if curPtr != old || curMark {
		return false
	}
	return m.v.CompareAndSwap(cur, &pair[T]{ptr: new, mark: false})
}

// CASMark compares only the pointer bits against old (whatever mark is
// currently set is accepted) and, on match, atomically installs (new, mark).
// This matches the mark_ptr_type contract used by the split-ordered list:
// compare pointer bits only, update pointer+mark atomically.
func (m *MarkPtr[T]) CASMark(old, new *T, mark bool) bool {
	cur := m.v.Load()
	var curPtr *T
	if cur != nil {
		curPtr = cur.ptr
	}
	if curPtr != old {
		return false
	}
	return m.v.CompareAndSwap(cur, &pair[T]{ptr: new, mark: mark})
}

// CASMarkIfUnmarked atomically transitions old from unmarked to marked,
// reporting whether this call performed that transition. Unlike CASMark,
// which ignores whatever mark is already set, this fails if old is already
// marked — so when several goroutines race to logically delete the same
// node, exactly one of them observes success, rather than every concurrent
// caller racing CASMark(old, old, true) each observing a spurious success
// against a pointer that never actually changed.
func (m *MarkPtr[T]) CASMarkIfUnmarked(old *T) bool {
	cur := m.v.Load()
	var curPtr *T
	var curMark bool
	if cur != nil {
		curPtr = cur.ptr
		curMark = cur.mark
	}
	if curPtr != old || curMark {
		return false
	}
	return m.v.CompareAndSwap(cur, &pair[T]{ptr: old, mark: true})
}
