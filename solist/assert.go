package solist

// debugAssertions guards invariant checks that are too costly or too strict
// to run against every retirement in production but are worth turning on
// while chasing a reclamation bug; the Go analogue of an NDEBUG-gated
// assert(). The invariants below never fire under correct, single-ownership
// use of this package.
const debugAssertions = false

// assertRetiredWasMarked checks the LIVE->MARKED->UNLINKED->RETIRED state
// machine invariant that only a node whose mark bit is already set may be
// handed to a hazard.Context for retirement.
func assertRetiredWasMarked[T any](n *bucket[T]) {
	if !debugAssertions {
		return
	}
	if !n.next.IsMarked() {
		panic("solist: retiring a node that was never marked for deletion")
	}
}
