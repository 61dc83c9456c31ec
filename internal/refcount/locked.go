// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refcount

import "sync"

// Locked is a Counter guarded by a mutex.
//
// It exists for platforms where 64-bit atomics are unavailable or
// unreliable. Every operation takes the lock, so it is noticeably slower
// than Atomic under contention; the protocol above it is unchanged.
//
// The zero value is a counter holding 0. Must not be copied after first use.
type Locked struct {
	mu sync.Mutex
	v  uint64
}

// Load returns the current value.
func (l *Locked) Load() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v
}

// Store overwrites the value.
func (l *Locked) Store(v uint64) {
	l.mu.Lock()
	l.v = v
	l.mu.Unlock()
}

// Add adds delta and returns the previous value.
func (l *Locked) Add(delta uint64) uint64 {
	l.mu.Lock()
	prev := l.v
	l.v += delta
	l.mu.Unlock()
	return prev
}

// Sub subtracts delta and returns the previous value.
func (l *Locked) Sub(delta uint64) uint64 {
	l.mu.Lock()
	prev := l.v
	l.v -= delta
	l.mu.Unlock()
	return prev
}

// CompareAndSwap stores new if the current value is old.
func (l *Locked) CompareAndSwap(old, new uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.v != old {
		return false
	}
	l.v = new
	return true
}
