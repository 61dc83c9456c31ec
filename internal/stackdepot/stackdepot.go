// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stackdepot stores deduplicated allocation-site stacks.
//
// When leak checking is on, every handle records where it was created so a
// leak report can point at the call site that forgot to Drop. Handles are
// created in loops far more often than at distinct sites, so each unique
// stack is stored once and referenced by its 64-bit hash.
//
// Design:
//   - Fixed-size traces (MaxFrames program counters, no per-trace slices)
//   - FNV-1a over the program counters as the key
//   - Global sync.Map: reads are lock-free once a site has been seen
//
// Usage:
//
//	hash := stackdepot.Capture(1)
//	...
//	fmt.Print(stackdepot.Get(hash).Format())
package stackdepot

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// MaxFrames is the number of frames recorded per stack.
//
// Handles are usually created a few frames below the interesting caller
// (constructors, Clone, Share, Upgrade), so this is deeper than a race
// report would need.
const MaxFrames = 16

// Stack is a captured stack trace. Unused trailing entries are zero.
type Stack struct {
	PC [MaxFrames]uintptr
}

// depot maps uint64 (hash) → *Stack.
var depot sync.Map

// Capture records the calling goroutine's stack and returns its hash.
//
// skip is the number of caller frames to omit above Capture itself:
// 0 starts the trace at the caller of Capture.
//
// Returns 0 if no frames are available.
//
// Thread Safety: Safe for concurrent calls.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// +2 skips runtime.Callers and Capture.
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashPCs(pcs[:n])
	if _, ok := depot.Load(hash); ok {
		return hash
	}

	depot.LoadOrStore(hash, &Stack{PC: pcs})
	return hash
}

// Get returns the stack stored under hash, or nil for 0 or an unknown hash.
func Get(hash uint64) *Stack {
	if hash == 0 {
		return nil
	}
	v, ok := depot.Load(hash)
	if !ok {
		return nil
	}
	return v.(*Stack)
}

// hashPCs computes FNV-1a over the little-endian program counters.
func hashPCs(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		_, _ = h.Write(buf[:]) // hash.Hash never returns an error.
	}
	return h.Sum64()
}

// Format renders the stack one frame per two lines:
//
//	main.worker()
//	    /path/to/file.go:45
//
// Runtime frames and frames inside the trc packages themselves are
// skipped, so the first line is the user's call site.
// Returns "  <internal>\n" if every frame was skipped.
//
// Returns "  <unknown>\n" for a nil stack.
func (s *Stack) Format() string {
	if s == nil {
		return "  <unknown>\n"
	}

	n := 0
	for n < MaxFrames && s.PC[n] != 0 {
		n++
	}
	frames := runtime.CallersFrames(s.PC[:n])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC != 0 && !internalFrame(frame) {
			fmt.Fprintf(&buf, "  %s()\n", frame.Function)
			fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <internal>\n"
	}
	return buf.String()
}

// internalFrame reports frames that never help locate a leak.
// Test files of the trc packages count as user code.
func internalFrame(f runtime.Frame) bool {
	if strings.HasPrefix(f.Function, "runtime.") {
		return true
	}
	if strings.HasSuffix(f.File, "_test.go") {
		return false
	}
	return strings.HasPrefix(f.Function, "github.com/kolkov/trc/trc.") ||
		strings.HasPrefix(f.Function, "github.com/kolkov/trc/internal/")
}

// Reset clears the depot. For tests only; not safe against concurrent Capture.
func Reset() {
	depot.Range(func(k, _ any) bool {
		depot.Delete(k)
		return true
	})
}

// Len returns the number of unique stacks stored. O(N).
func Len() int {
	n := 0
	depot.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
