package hazard

import "unsafe"

// uintptrOf gives pointers of type *T a total order for sorting inside a
// Snapshot. The resulting uintptr is never retained past the comparison
// it's used in, so it never hides a live pointer from the garbage collector.
func uintptrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}
