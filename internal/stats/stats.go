// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats keeps process-wide lifecycle counters for trc.
//
// Counting is off by default. When off, Add is a single atomic load of the
// enabled flag, which keeps the goroutine-local clone/drop path free of
// writes to shared cache lines.
package stats

import "sync/atomic"

// Kind names one counter.
type Kind int

const (
	// BlocksAllocated counts control blocks created.
	BlocksAllocated Kind = iota
	// BlocksFreed counts control blocks whose weak count reached zero, among
	// those counted in BlocksAllocated since the last Reset.
	BlocksFreed
	// ValuesDropped counts payloads destroyed when the strong count reached zero.
	ValuesDropped
	// LocalsAllocated counts goroutine-local counters handed out.
	LocalsAllocated
	// LocalsFreed counts goroutine-local counters returned.
	LocalsFreed
	// UpgradesFailed counts Weak.Upgrade calls on an expired block.
	UpgradesFailed
	// GetMutFailed counts GetMut calls that were refused.
	GetMutFailed
	// DropHookErrors counts io.Closer errors during value destruction.
	DropHookErrors
	// LeaksReported counts handles collected without Drop.
	LeaksReported

	numKinds
)

var kindNames = [numKinds]string{
	BlocksAllocated: "blocks_allocated",
	BlocksFreed:     "blocks_freed",
	ValuesDropped:   "values_dropped",
	LocalsAllocated: "locals_allocated",
	LocalsFreed:     "locals_freed",
	UpgradesFailed:  "upgrades_failed",
	GetMutFailed:    "get_mut_failed",
	DropHookErrors:  "drop_hook_errors",
	LeaksReported:   "leaks_reported",
}

// String returns the snake_case metric name of k.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

var (
	enabled    atomic.Bool
	generation atomic.Uint32
	counters   [numKinds]atomic.Uint64
)

// Enable turns counting on or off. Counts already taken are kept.
func Enable(on bool) {
	enabled.Store(on)
}

// Enabled reports whether counting is on.
func Enabled() bool {
	return enabled.Load()
}

// Add increments k by one if counting is on.
func Add(k Kind) {
	if !enabled.Load() {
		return
	}
	counters[k].Add(1)
}

// ForceAdd increments k regardless of the enabled flag.
//
// Used for rare events (leaks, hook errors) that must never go uncounted.
func ForceAdd(k Kind) {
	counters[k].Add(1)
}

// Snapshot returns the current value of every counter, indexed by Kind.
//
// Counters are read one at a time, so a snapshot taken under load may
// observe e.g. a freed block whose allocation it missed.
func Snapshot() [numKinds]uint64 {
	var s [numKinds]uint64
	for i := range counters {
		s[i] = counters[i].Load()
	}
	return s
}

// Epoch returns a nonzero token naming the current counting window, or 0
// if counting is off.
//
// An object that records its epoch at creation can later ask Current
// whether its creation was counted in the same window, so that paired
// events (allocated/freed) never straddle Enable or Reset.
func Epoch() uint32 {
	if !enabled.Load() {
		return 0
	}
	return generation.Load() + 1
}

// Current reports whether e is a nonzero epoch from the window in effect.
func Current(e uint32) bool {
	return e != 0 && e == generation.Load()+1
}

// Reset zeroes every counter and opens a new epoch.
func Reset() {
	generation.Add(1)
	for i := range counters {
		counters[i].Store(0)
	}
}
