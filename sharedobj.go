// Package sharedobj provides Set, a lock-free concurrent hash set built on
// top of the split-ordered list in package solist and reclaimed by the
// hazard-pointer domain in package hazard.
package sharedobj

import "github.com/benedias/sharedobj/solist"

// Set is a concurrent set of T, safe for use by any number of goroutines
// without external locking. The zero value is not usable; construct one
// with NewSet.
type Set[T any] struct {
	list *solist.List[T]
	hash func(T) uint32
}

// NewSet creates a Set that hashes elements with hash.
func NewSet[T any](hash func(T) uint32) *Set[T] {
	return &Set[T]{list: solist.New[T](), hash: hash}
}

// NewSetSized is like NewSet but lets the caller pick the initial table
// size and per-bucket expansion threshold.
func NewSetSized[T any](hash func(T) uint32, size, maxBucketLength uint32) *Set[T] {
	return &Set[T]{list: solist.NewSized[T](size, maxBucketLength), hash: hash}
}

// Insert adds v to the set, returning false if an element hashing to the
// same value is already present.
func (s *Set[T]) Insert(v T) bool {
	return s.list.Insert(s.hash(v), v)
}

// Remove deletes the element hashing to v's hash, returning false if none
// was present.
func (s *Set[T]) Remove(v T) bool {
	return s.list.Delete(s.hash(v))
}

// Contains reports whether an element with v's hash is present, and
// returns a copy of the stored value.
func (s *Set[T]) Contains(v T) (T, bool) {
	return s.list.Find(s.hash(v))
}

// Len returns the current element count.
func (s *Set[T]) Len() int {
	return s.list.Len()
}

// Close releases every resource this set's hazard-pointer domain holds.
// The set must not be used afterward.
func (s *Set[T]) Close() {
	s.list.Close()
}
