// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import "runtime"

// Weak is a non-owning observer of a value.
//
// A Weak keeps the control block reachable but not the value: once the
// last strong owner drops, Upgrade fails. Use it to break reference cycles,
// for example a child's pointer back to its parent.
//
// Weak carries no local count and may be used from any goroutine.
type Weak[T any] struct {
	b *block[T]

	cleanup runtime.Cleanup
}

// NewWeak returns a Weak that observes nothing. Upgrade always fails.
//
// It is a placeholder for a reference that will be filled in later.
func NewWeak[T any]() *Weak[T] {
	var zero T
	b := newBlock(zero)
	b.strong.Store(0)
	return newWeak(b)
}

// NewWeakFrom returns a Weak observing t's value. Same as t.Downgrade().
func NewWeakFrom[T any](t *Trc[T]) *Weak[T] {
	return t.Downgrade()
}

func newWeak[T any](b *block[T]) *Weak[T] {
	w := &Weak[T]{b: b}
	if leakCheck.Load() {
		w.cleanup = watch(w, "Weak", b)
	}
	return w
}

func (w *Weak[T]) live(op string) {
	if w.b == nil {
		droppedPanic("Weak", op)
	}
}

// Upgrade returns a new owner of the value, on a new family for the
// calling goroutine, or false if the value has already been destroyed.
//
// The zero check and the increment are one compare-and-swap, so an Upgrade
// racing the last Drop either wins a strong unit before the count reaches
// zero or fails; it never revives a destroyed value.
func (w *Weak[T]) Upgrade() (*Trc[T], bool) {
	w.live("Upgrade")
	if !w.b.tryUpgrade() {
		return nil, false
	}
	return newTrc(w.b, newLocal()), true
}

// Clone returns another observer of the same value.
//
// Panics with a *CountError if the weak count would exceed MaxRefCount.
func (w *Weak[T]) Clone() *Weak[T] {
	w.live("Clone")
	w.b.acquireWeak("Clone")
	return newWeak(w.b)
}

// Drop releases w. The last weak unit frees the control block.
func (w *Weak[T]) Drop() {
	w.live("Drop")
	b := w.b
	w.b = nil
	w.cleanup.Stop()
	b.releaseWeak("Drop")
}

// StrongCount returns the strong count, 0 once the value is destroyed.
func (w *Weak[T]) StrongCount() uint64 {
	w.live("StrongCount")
	return w.b.strong.Load()
}

// WeakCount returns the weak count, including the unit held by strong
// owners while the value is alive.
func (w *Weak[T]) WeakCount() uint64 {
	w.live("WeakCount")
	return w.b.weakCount()
}

// PtrEq reports whether w and o observe the same control block.
func (w *Weak[T]) PtrEq(o *Weak[T]) bool {
	w.live("PtrEq")
	o.live("PtrEq")
	return w.b == o.b
}
