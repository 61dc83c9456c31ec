// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"runtime"

	"github.com/kolkov/trc/internal/stats"
)

// Trc is an owning, goroutine-confined reference to a shared value.
//
// Handles cloned from one another form a family that shares one local
// count. Clone and Drop touch only that count, so they cost a plain
// increment. A Trc must not be used from any goroutine other than the one
// that created its family: to hand the value to another goroutine, send a
// [Shared] obtained from [Trc.Share].
//
// The zero Trc is not usable. A *Trc is invalid after Drop or any
// consuming method (TryUnwrap on success, IntoInner, IntoRaw).
type Trc[T any] struct {
	b *block[T]
	l *local

	cleanup runtime.Cleanup
}

// New allocates v in a fresh control block and returns its first owner.
func New[T any](v T) *Trc[T] {
	return newTrc(newBlock(v), newLocal())
}

func newTrc[T any](b *block[T], l *local) *Trc[T] {
	t := &Trc[T]{b: b, l: l}
	if leakCheck.Load() {
		t.cleanup = watch(t, "Trc", b)
	}
	return t
}

// live panics if t has been dropped.
func (t *Trc[T]) live(op string) {
	if t.b == nil {
		droppedPanic("Trc", op)
	}
}

// owned panics if t has been dropped or, with the confinement check on,
// if the caller is not the family's goroutine.
func (t *Trc[T]) owned(op string) {
	t.live(op)
	t.l.checkOwner(op)
}

// release invalidates t and returns what it held.
func (t *Trc[T]) release(op string) (*block[T], *local) {
	t.owned(op)
	b, l := t.b, t.l
	t.b, t.l = nil, nil
	t.cleanup.Stop()
	return b, l
}

// Clone returns another owner in the same family.
//
// Only the local count changes. Panics with a *CountError if the family
// already holds MaxRefCount handles.
func (t *Trc[T]) Clone() *Trc[T] {
	t.owned("Clone")
	if t.l.count >= MaxRefCount {
		countPanic("local", "Clone", t.l.count, ErrOverflow)
	}
	t.l.count++
	return newTrc(t.b, t.l)
}

// Drop releases t.
//
// When t is the last handle of its family the local count is recycled
// and the family's strong unit is released. When that was the last strong
// unit the value is destroyed: see [Dropper].
//
// Panics if t was already dropped.
func (t *Trc[T]) Drop() {
	b, l := t.release("Drop")
	l.count--
	if l.count != 0 {
		return
	}
	freeLocal(l)
	b.releaseStrong("Drop")
}

// Get returns a pointer to the shared value.
//
// The pointer is valid while any strong owner remains. trc does not
// synchronize access to the value itself: mutating through it while other
// owners read is a data race. Use GetMut for checked exclusive access.
func (t *Trc[T]) Get() *T {
	t.live("Get")
	return &t.b.value
}

// Load returns a copy of the shared value.
func (t *Trc[T]) Load() T {
	t.live("Load")
	return t.b.value
}

// GetMut returns a pointer for mutation if t is the only handle anywhere:
// its family holds one handle, no other family, Shared or raw pointer
// exists, and no Weak observes the value.
//
// The weak count is claimed for the duration of the check so a concurrent
// Downgrade cannot slip in between. GetMut never blocks; it returns false
// when the value is not uniquely owned.
func (t *Trc[T]) GetMut() (*T, bool) {
	t.owned("GetMut")
	b := t.b
	if t.l.count != 1 || !b.weak.CompareAndSwap(1, lockedWeak) {
		stats.Add(stats.GetMutFailed)
		return nil, false
	}
	unique := b.strong.Load() == 1
	b.weak.Store(1)
	if !unique {
		stats.Add(stats.GetMutFailed)
		return nil, false
	}
	return &b.value, true
}

// Downgrade returns a Weak observing t's value.
//
// Panics with a *CountError if the weak count would exceed MaxRefCount.
func (t *Trc[T]) Downgrade() *Weak[T] {
	t.live("Downgrade")
	t.b.acquireWeak("Downgrade")
	return newWeak(t.b)
}

// TryUnwrap returns the value if t is its only strong owner: the only
// handle of the only family, with no Shared or raw pointers outstanding.
// Weak observers do not prevent it; they will fail to upgrade afterwards.
//
// On success t is consumed and the value's Drop/Close hook does not run,
// since the caller now owns it. Otherwise TryUnwrap returns ErrShared and
// t is unchanged.
func (t *Trc[T]) TryUnwrap() (T, error) {
	t.owned("TryUnwrap")
	if t.l.count != 1 || !t.b.strong.CompareAndSwap(1, 0) {
		var zero T
		return zero, ErrShared
	}
	b, l := t.release("TryUnwrap")
	v := b.take()
	freeLocal(l)
	b.releaseWeak("TryUnwrap")
	return v, nil
}

// IntoInner consumes t and returns the value if t was the last strong owner.
//
// Unlike TryUnwrap it always consumes t. When several goroutines race
// IntoInner on the last handles of different families, exactly one of them
// receives the value.
func (t *Trc[T]) IntoInner() (T, bool) {
	var zero T
	b, l := t.release("IntoInner")
	l.count--
	if l.count != 0 {
		return zero, false
	}
	freeLocal(l)

	if !b.subStrong("IntoInner") {
		return zero, false
	}
	v := b.take()
	b.releaseWeak("IntoInner")
	return v, true
}

// Share returns a transfer handle for sending the value to another
// goroutine. It costs one atomic increment.
func (t *Trc[T]) Share() *Shared[T] {
	t.live("Share")
	t.b.acquireStrong("Share")
	return newShared(t.b)
}

// LocalCount returns the number of handles in t's family.
func (t *Trc[T]) LocalCount() uint64 {
	t.owned("LocalCount")
	return t.l.count
}

// AtomicCount returns the strong count: families plus Shared handles plus
// raw pointers. Informational only; it can change concurrently.
func (t *Trc[T]) AtomicCount() uint64 {
	t.live("AtomicCount")
	return t.b.strong.Load()
}

// WeakCount returns the weak count, including the one unit held on behalf
// of all strong owners. A value with no Weak observers reports 1.
func (t *Trc[T]) WeakCount() uint64 {
	t.live("WeakCount")
	return t.b.weakCount()
}

// PtrEq reports whether a and b refer to the same control block.
// It never compares values; see Equal for that.
func PtrEq[T any](a, b *Trc[T]) bool {
	a.live("PtrEq")
	b.live("PtrEq")
	return a.b == b.b
}
