// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goid extracts the current goroutine's ID.
//
// The ID is used only by the optional confinement check, which records the
// goroutine that opened an owning-pointer family and verifies that every
// later local-count operation comes from the same goroutine.
//
// The runtime does not export goroutine IDs, so ID parses the header line
// of runtime.Stack:
//
//	goroutine 123 [running]:
//
// Performance: ~1-5µs per call (dominated by runtime.Stack). Callers must
// keep this off hot paths unless the check has been switched on.
package goid

import "runtime"

// ID returns the ID of the calling goroutine, or 0 if it cannot be parsed.
//
// IDs are positive and unique for the lifetime of a goroutine. The runtime
// never reuses an ID, so a stale owner ID can never match a new goroutine.
func ID() int64 {
	// Only the first line is needed; runtime.Stack truncates the rest.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

// parse extracts N from a buffer starting with "goroutine N ".
//
// Returns 0 for anything that does not match that prefix or carries no
// digits. Stops at the first non-digit.
func parse(buf []byte) int64 {
	const prefix = "goroutine "

	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var id int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
