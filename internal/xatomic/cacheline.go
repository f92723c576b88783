// Package xatomic holds small atomic-adjacent helpers shared by the hazard
// and solist packages.
package xatomic

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad hot structures so that independent goroutines
// reserving or publishing adjacent slots never false-share a cache line.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// Pad is a CacheLineSize-byte blank field; placed after a field, it keeps
// whatever follows at least one cache line away from that field.
type Pad [CacheLineSize]byte
