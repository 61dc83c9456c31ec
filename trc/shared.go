// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import "runtime"

// Shared is a transfer handle: the one way to move ownership of a value
// to another goroutine.
//
// A Shared owns one unit of the strong count and no local count, so it is
// safe to send over a channel and to Clone from several goroutines. Each
// Shared must be consumed exactly once, by IntoTrc or Drop.
//
//	s := t.Share()
//	go func() {
//		t := s.IntoTrc()
//		defer t.Drop()
//		use(t.Get())
//	}()
type Shared[T any] struct {
	b *block[T]

	cleanup runtime.Cleanup
}

// NewShared returns a transfer handle for t's value. Same as t.Share().
func NewShared[T any](t *Trc[T]) *Shared[T] {
	return t.Share()
}

func newShared[T any](b *block[T]) *Shared[T] {
	s := &Shared[T]{b: b}
	if leakCheck.Load() {
		s.cleanup = watch(s, "Shared", b)
	}
	return s
}

func (s *Shared[T]) live(op string) {
	if s.b == nil {
		droppedPanic("Shared", op)
	}
}

func (s *Shared[T]) release(op string) *block[T] {
	s.live(op)
	b := s.b
	s.b = nil
	s.cleanup.Stop()
	return b
}

// IntoTrc consumes s and opens a new family on the calling goroutine.
//
// The strong unit owned by s passes to the new family; no count changes.
func (s *Shared[T]) IntoTrc() *Trc[T] {
	b := s.release("IntoTrc")
	return newTrc(b, newLocal())
}

// Clone returns another transfer handle. It costs one atomic increment.
func (s *Shared[T]) Clone() *Shared[T] {
	s.live("Clone")
	s.b.acquireStrong("Clone")
	return newShared(s.b)
}

// AtomicCount returns the strong count. Informational only.
func (s *Shared[T]) AtomicCount() uint64 {
	s.live("AtomicCount")
	return s.b.strong.Load()
}

// Drop releases s's strong unit, destroying the value if it was the last.
func (s *Shared[T]) Drop() {
	s.release("Drop").releaseStrong("Drop")
}
