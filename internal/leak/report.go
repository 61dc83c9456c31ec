// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leak formats and deduplicates leaked-handle reports.
//
// A handle leaks when the garbage collector reclaims it without Drop having
// been called. For an owning handle that means the value's destruction hook
// never ran and the block's counts never reached zero. The trc package
// detects this with runtime cleanups; this package turns the detection into
// a readable report:
//
//	==================
//	WARNING: LEAKED HANDLE
//	*trc.Trc[main.Conn] on block 0x000000c000012340 was never dropped.
//	Created at:
//	  main.openConn()
//	      /path/to/main.go:21
//	==================
//
// Leaks from the same allocation site are reported once.
package leak

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kolkov/trc/internal/stackdepot"
)

// Report describes one leaked handle.
type Report struct {
	// Handle is the handle kind: "Trc", "Shared" or "Weak".
	Handle string

	// Type is the payload type as printed by %T on a zero value.
	Type string

	// Block is the control block address. Informational only: the
	// block may already have been reused by the time the report prints.
	Block uintptr

	// Stack is the stackdepot hash of the handle's creation site.
	Stack uint64
}

// Key identifies the leak site for deduplication.
//
// Format: "{handle}:{type}:{stack}". The block address is deliberately not
// part of the key: a leak inside a loop produces a new address every
// iteration but is one bug.
func (r *Report) Key() string {
	return fmt.Sprintf("%s:%s:%x", r.Handle, r.Type, r.Stack)
}

// Format writes the report to w.
//
//nolint:errcheck // best-effort diagnostic output
func (r *Report) Format(w io.Writer) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "WARNING: LEAKED HANDLE\n")
	fmt.Fprintf(w, "*trc.%s[%s] on block 0x%016x was never dropped.\n", r.Handle, r.Type, r.Block)
	fmt.Fprintf(w, "Created at:\n")
	if r.Stack == 0 {
		fmt.Fprintf(w, "  (no stack captured)\n")
	} else {
		fmt.Fprint(w, stackdepot.Get(r.Stack).Format())
	}
	fmt.Fprintf(w, "==================\n")
}

// String returns the formatted report.
func (r *Report) String() string {
	var buf strings.Builder
	r.Format(&buf)
	return buf.String()
}

// Reporter deduplicates reports by Key.
//
// The zero value is ready to use. Safe for concurrent use: cleanups run on
// the runtime's cleanup goroutine, which may overlap with Reset from tests.
type Reporter struct {
	seen  sync.Map // string → struct{}
	total atomic.Uint64
}

// Observe records r and reports whether it is the first leak from its site.
//
// Every call counts towards Total, duplicates included, so the count
// reflects leaked handles rather than leak sites.
func (rp *Reporter) Observe(r *Report) bool {
	rp.total.Add(1)
	_, dup := rp.seen.LoadOrStore(r.Key(), struct{}{})
	return !dup
}

// Total returns the number of leaked handles observed.
func (rp *Reporter) Total() uint64 {
	return rp.total.Load()
}

// Sites returns the number of distinct leak sites observed.
func (rp *Reporter) Sites() int {
	n := 0
	rp.seen.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Reset forgets every observed site and zeroes Total.
func (rp *Reporter) Reset() {
	rp.seen.Range(func(k, _ any) bool {
		rp.seen.Delete(k)
		return true
	})
	rp.total.Store(0)
}
