package hazard

// debugAssertions guards invariant checks that are too strict (and too
// costly) for production use of a correctly single-owned Context but are
// worth turning on while chasing a misuse bug; the Go analogue of an
// NDEBUG-gated assert(). The invariant it guards (the double-Release check
// in context.go) never fires under correct, single-ownership use of a
// Context.
const debugAssertions = false
