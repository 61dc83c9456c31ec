// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import "unsafe"

// Raw pointers.
//
// A pointer returned by IntoRaw owns one strong unit. It has no goroutine
// affinity, so it is counted like a family of its own: FromRaw turns it back
// into a Trc on whichever goroutine calls it. The pointer must come from
// IntoRaw (or AsPtr while a strong unit is held) for the same T; anything
// else is undefined behavior that trc cannot detect.

// AsPtr returns a pointer to the value without transferring ownership.
// It is valid while t's value is alive.
func (t *Trc[T]) AsPtr() *T {
	t.live("AsPtr")
	return &t.b.value
}

// IntoRaw consumes t and returns a raw pointer that owns one strong unit.
//
// The value stays alive until the unit is given back through FromRaw (and
// the resulting Trc dropped) or DecrementLocalCount.
func (t *Trc[T]) IntoRaw() *T {
	t.owned("IntoRaw")
	p := &t.b.value
	t.b.acquireStrong("IntoRaw")
	t.Drop()
	return p
}

// FromRaw takes over the strong unit owned by p and returns it as a new
// family on the calling goroutine.
func FromRaw[T any](p *T) *Trc[T] {
	return newTrc(blockOf(p), newLocal())
}

// IncrementLocalCount adds one strong unit for the raw pointer p.
//
// Raw pointers have no family, so this changes AtomicCount; the LocalCount
// of every Trc is unaffected. The value must be alive (some strong unit
// held) for the duration of the call. Pair every call with
// DecrementLocalCount or FromRaw.
func IncrementLocalCount[T any](p *T) {
	blockOf(p).acquireStrong("IncrementLocalCount")
}

// DecrementLocalCount releases one strong unit for the raw pointer p,
// destroying the value if it was the last. Like IncrementLocalCount it
// changes AtomicCount, not LocalCount.
func DecrementLocalCount[T any](p *T) {
	blockOf(p).releaseStrong("DecrementLocalCount")
}

// blockOf maps a value pointer back to its control block.
func blockOf[T any](p *T) *block[T] {
	if p == nil {
		panic("trc: nil raw pointer")
	}
	var b *block[T]
	off := unsafe.Offsetof(b.value)
	return (*block[T])(unsafe.Add(unsafe.Pointer(p), -int(off)))
}
