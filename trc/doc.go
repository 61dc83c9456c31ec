// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trc provides biased reference counting for Go values whose
// lifetime must be tracked explicitly: connections, file handles, pooled
// buffers, anything with a Close that has to run exactly once when the last
// owner lets go.
//
// Every value lives in a control block with two shared counters: a strong
// count of goroutine families and transfer handles, and a weak count of
// observers. On top of that, each goroutine holding the value keeps a
// private, non-atomic local count. Cloning inside a goroutine is a plain
// increment. Only crossing a goroutine boundary touches the shared counters,
// once per participating goroutine rather than once per clone.
//
// # Handles
//
// Three handle types share a control block:
//
//   - [Trc] is the owning pointer. It is confined to the goroutine that
//     created it: Clone and Drop update its local count without
//     synchronization.
//   - [Shared] is the transfer handle. It owns one unit of the strong count
//     and is safe to send over channels. [Shared.IntoTrc] on the receiving
//     goroutine opens a new family there.
//   - [Weak] is the non-owning observer. It keeps the control block alive
//     but not the value, and must be upgraded to read it.
//
// # Quick Start
//
//	conn := trc.New(dial())        // strong=1, local=1
//	c2 := conn.Clone()             // local=2, no atomics
//
//	s := conn.Share()              // strong=2
//	go func() {
//		t := s.IntoTrc()       // new family on this goroutine
//		defer t.Drop()
//		t.Get().Send("hello")
//	}()
//
//	c2.Drop()
//	conn.Drop()                    // strong back to 1, the goroutine owns the rest
//
// # Destruction
//
// Go has no destructors, so every handle must be released with Drop. When
// the strong count reaches zero the value is destroyed: if it implements
// [Dropper] its Drop method runs, otherwise if it implements [io.Closer] its
// Close method runs and a non-nil error is logged. The slot is then zeroed so
// the garbage collector can reclaim anything it referenced. The control block
// itself is reclaimed by the garbage collector once the weak count reaches
// zero and nothing references it.
//
// Using a handle after Drop, or after a consuming call such as
// [Trc.IntoInner], panics with an error wrapping [ErrDropped]. Counter
// overflow and underflow panic with a [*CountError].
//
// # Diagnostics
//
// Three opt-in checks help find misuse:
//
//   - [EnableStats] counts allocations, frees and failed operations; see
//     [ReadStats].
//   - [EnableConfinementCheck] records the goroutine that owns each local
//     count and panics with a [*ConfinementError] when another goroutine
//     touches it.
//   - [EnableLeakCheck] reports handles that were garbage collected without
//     Drop, along with the stack that created them.
//
// Reports and hook errors go to the logger set with [SetLogger].
//
// # Counter Backend
//
// The shared counters use sync/atomic by default. Building with
// -tags trc_lock switches them to a mutex-guarded implementation with the
// same semantics; [GetInfo] reports which one is compiled in.
package trc
