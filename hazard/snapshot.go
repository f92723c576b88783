package hazard

import "sort"

// Snapshot is a one-shot, immutable copy of every hazard-pointer value
// across a Domain at a single moment. Values are sorted so Search can use
// binary search; nils are pushed to the front and excluded from the search
// range.
type Snapshot[T any] struct {
	values []*T
	begin  int
}

// NewSnapshot walks the domain's chunk list twice: once to size the
// snapshot, once to copy every slot. Because the chunk list only grows at
// the head and pools is captured once at the start, a chunk appended after
// that point is safely ignored — its hazard pointers cannot protect
// pointers that existed before the snapshot began, since a pointer already
// removed from the structure cannot be resurrected into a brand-new hazard
// slot.
func NewSnapshot[T any](d *Domain[T]) *Snapshot[T] {
	pools := d.poolsHead.Load()

	var size uint32
	for p := pools; p != nil; p = p.next.Load() {
		size += p.count()
	}

	values := make([]*T, size)
	n := 0
	for p := pools; p != nil; p = p.next.Load() {
		n += p.copyHazardPointers(values[n:])
	}
	values = values[:n]

	sort.Slice(values, func(i, j int) bool {
		return lessPtr(values[i], values[j])
	})

	begin := sort.Search(len(values), func(i int) bool {
		return values[i] != nil
	})

	return &Snapshot[T]{values: values, begin: begin}
}

// lessPtr orders pointers by address so nil sorts first and the
// non-nil region is contiguous and binary-searchable.
func lessPtr[T any](a, b *T) bool {
	return uintptrOf(a) < uintptrOf(b)
}

// Search reports whether ptr appears among the hazard pointers captured in
// this snapshot.
func (s *Snapshot[T]) Search(ptr *T) bool {
	if ptr == nil {
		return false
	}
	region := s.values[s.begin:]
	i := sort.Search(len(region), func(i int) bool {
		return !lessPtr(region[i], ptr)
	})
	return i < len(region) && region[i] == ptr
}
