// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/kolkov/trc/internal/goid"
	"github.com/kolkov/trc/internal/leak"
	"github.com/kolkov/trc/internal/stackdepot"
	"github.com/kolkov/trc/internal/stats"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for leak reports, confinement violations
// and destruction hook errors. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Stats is a point-in-time snapshot of lifecycle counters.
//
// Counters only advance while EnableStats is on, except LeaksReported and
// DropHookErrors which are always counted. BlocksFreed counts only blocks
// whose allocation is in BlocksAllocated: a block created before
// EnableStats or ResetStats is invisible to both.
type Stats struct {
	BlocksAllocated uint64
	BlocksFreed     uint64
	ValuesDropped   uint64
	LocalsAllocated uint64
	LocalsFreed     uint64
	UpgradesFailed  uint64
	GetMutFailed    uint64
	DropHookErrors  uint64
	LeaksReported   uint64
}

// LiveBlocks returns allocated minus freed blocks.
//
// The counters are read one at a time, so under load a snapshot can see a
// free without its allocation; that reads as 0 rather than wrapping.
func (s Stats) LiveBlocks() uint64 {
	if s.BlocksFreed > s.BlocksAllocated {
		return 0
	}
	return s.BlocksAllocated - s.BlocksFreed
}

// EnableStats turns lifecycle counting on or off.
func EnableStats(on bool) {
	stats.Enable(on)
}

// ReadStats returns the current counters.
func ReadStats() Stats {
	s := stats.Snapshot()
	return Stats{
		BlocksAllocated: s[stats.BlocksAllocated],
		BlocksFreed:     s[stats.BlocksFreed],
		ValuesDropped:   s[stats.ValuesDropped],
		LocalsAllocated: s[stats.LocalsAllocated],
		LocalsFreed:     s[stats.LocalsFreed],
		UpgradesFailed:  s[stats.UpgradesFailed],
		GetMutFailed:    s[stats.GetMutFailed],
		DropHookErrors:  s[stats.DropHookErrors],
		LeaksReported:   s[stats.LeaksReported],
	}
}

// ResetStats zeroes every counter and forgets reported leak sites.
func ResetStats() {
	stats.Reset()
	leaks.Reset()
}

// Confinement check.

var confinement atomic.Bool

// EnableConfinementCheck turns the goroutine ownership check on or off.
//
// When on, every local count records the goroutine that created it, and
// Clone, Drop, GetMut, TryUnwrap, IntoInner and IntoRaw verify the caller is
// that goroutine. Looking up the goroutine id costs about a microsecond, so
// this is meant for tests and debugging. Local counts created while the
// check was off are never checked.
func EnableConfinementCheck(on bool) {
	confinement.Store(on)
}

// local is the per-family count. Only its owning goroutine touches it.
type local struct {
	count uint64
	owner int64 // goroutine id; 0 when unchecked
}

var localPool = sync.Pool{
	New: func() any { return new(local) },
}

func newLocal() *local {
	l := localPool.Get().(*local)
	l.count = 1
	if confinement.Load() {
		l.owner = goid.ID()
	}
	stats.Add(stats.LocalsAllocated)
	return l
}

func freeLocal(l *local) {
	l.count = 0
	l.owner = 0
	localPool.Put(l)
	stats.Add(stats.LocalsFreed)
}

func (l *local) checkOwner(op string) {
	if l.owner == 0 || !confinement.Load() {
		return
	}
	caller := goid.ID()
	if caller == l.owner {
		return
	}
	err := &ConfinementError{Op: op, Owner: l.owner, Caller: caller}
	log().Error("trc: confinement violation",
		"op", op,
		"owner", l.owner,
		"caller", caller,
	)
	panic(err)
}

// Leak check.

var (
	leakCheck atomic.Bool
	leaks     leak.Reporter
)

// EnableLeakCheck turns leak detection on or off.
//
// When on, every handle created is watched by a runtime cleanup. A handle
// that becomes unreachable without Drop is reported once per creation site
// through the logger at warn level, with running totals of leaked handles
// and sites, and counted in Stats.LeaksReported.
// Handles created while the check was off are never reported.
func EnableLeakCheck(on bool) {
	leakCheck.Store(on)
}

// watch registers a leak cleanup on handle h of block b.
//
// The cleanup argument must not reference h, or h would never become
// unreachable. The block address is stored as an integer so the pending
// report does not keep the block alive either.
func watch[H, T any](h *H, kind string, b *block[T]) runtime.Cleanup {
	r := leak.Report{
		Handle: kind,
		Type:   typeName[T](),
		Block:  uintptr(unsafe.Pointer(b)),
		Stack:  stackdepot.Capture(1),
	}
	return runtime.AddCleanup(h, reportLeak, r)
}

func reportLeak(r leak.Report) {
	stats.ForceAdd(stats.LeaksReported)
	if !leaks.Observe(&r) {
		return
	}
	log().Warn("trc: handle garbage collected without Drop",
		"handle", r.Handle,
		"type", r.Type,
		"leaked", leaks.Total(),
		"sites", leaks.Sites(),
		"stacks", stackdepot.Len(),
		"report", r.String(),
	)
}
