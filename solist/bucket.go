package solist

import "github.com/benedias/sharedobj/markptr"

// bucket is the single node type backing the split-ordered list. Dummy
// buckets and data nodes share this struct rather than an interface
// hierarchy — the spec models the distinction as a tagged union
// discriminated by the low bit of key, and isData is that discriminant
// made explicit rather than re-derived from the key on every check.
//
// Once inserted, a dummy node is never removed; a data node's state
// machine is LIVE -> MARKED (next.IsMarked()) -> UNLINKED (removed from the
// next chain) -> RETIRED (handed to a hazard.Context) -> FREED (collected
// once no hazard pointer protects it anymore).
type bucket[T any] struct {
	hashv  uint32
	key    uint32
	isData bool
	payload T

	next markptr.MarkPtr[bucket[T]]
}

func newDummy[T any](slot uint32) *bucket[T] {
	return &bucket[T]{hashv: slot, key: dummyKey(slot)}
}

func newDataNode[T any](hashv uint32, payload T) *bucket[T] {
	return &bucket[T]{hashv: hashv, key: dataKey(hashv), isData: true, payload: payload}
}
