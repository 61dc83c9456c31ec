// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refcount implements the shared counters of a trc control block.
//
// A control block carries two counters: the strong count (goroutine families
// and transfer handles) and the weak count (observers plus the implicit unit
// held by the live value). Both are written against the Counter interface so
// the backing implementation can be swapped at build time:
//
//   - Atomic: sync/atomic, lock-free (default)
//   - Locked: sync.Mutex, for targets without native 64-bit atomics
//     (select with -tags trc_lock)
//
// The control block embeds the concrete Default type rather than the
// interface, so the choice costs nothing at run time.
//
// Ordering: every operation is sequentially consistent. This subsumes the
// acquire/release pairs and the acquire fence the protocol requires before a
// value is destroyed.
package refcount

// Counter is the set of operations the reference counting protocol needs.
//
// Add and Sub return the value held BEFORE the operation (fetch-and-add
// semantics), which is what the protocol branches on: a Sub returning 1
// means the caller just took the count to zero.
type Counter interface {
	// Load returns the current value.
	Load() uint64

	// Store overwrites the value. Only used while the caller has exclusive
	// access to the counter (construction, or the GetMut weak lock).
	Store(v uint64)

	// Add adds delta and returns the previous value.
	Add(delta uint64) uint64

	// Sub subtracts delta and returns the previous value.
	// Wraps on underflow; callers check the returned value.
	Sub(delta uint64) uint64

	// CompareAndSwap stores new if the current value is old.
	CompareAndSwap(old, new uint64) bool
}

// Compile-time interface checks.
var (
	_ Counter = (*Atomic)(nil)
	_ Counter = (*Locked)(nil)
)

// Update applies f to the counter in a compare-and-swap loop.
//
// f receives the current value and returns the replacement and whether to
// store it. When f declines, Update returns the observed value and false
// without writing. When f accepts, Update returns the previous value and
// true once the swap lands.
//
// This is the single fetch-and-update the weak upgrade path relies on: the
// zero check and the increment happen on the same observed value, so the
// count can never move from zero back to one.
func Update[C Counter](c C, f func(cur uint64) (next uint64, ok bool)) (uint64, bool) {
	for {
		cur := c.Load()
		next, ok := f(cur)
		if !ok {
			return cur, false
		}
		if c.CompareAndSwap(cur, next) {
			return cur, true
		}
	}
}
