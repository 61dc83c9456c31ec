// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refcount

import "sync/atomic"

// Atomic is a lock-free Counter backed by atomic.Uint64.
//
// The zero value is a counter holding 0.
type Atomic struct {
	v atomic.Uint64
}

// Load returns the current value.
func (a *Atomic) Load() uint64 {
	return a.v.Load()
}

// Store overwrites the value.
func (a *Atomic) Store(v uint64) {
	a.v.Store(v)
}

// Add adds delta and returns the previous value.
func (a *Atomic) Add(delta uint64) uint64 {
	return a.v.Add(delta) - delta
}

// Sub subtracts delta and returns the previous value.
func (a *Atomic) Sub(delta uint64) uint64 {
	// Adding the two's complement subtracts; undo it on the result
	// to recover the value before the operation.
	return a.v.Add(^(delta - 1)) + delta
}

// CompareAndSwap stores new if the current value is old.
func (a *Atomic) CompareAndSwap(old, new uint64) bool {
	return a.v.CompareAndSwap(old, new)
}
