// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"io"
	"math"
	"reflect"
	"runtime"

	"github.com/kolkov/trc/internal/refcount"
	"github.com/kolkov/trc/internal/stats"
)

// MaxRefCount is the largest value any count may reach.
//
// Exceeding it panics rather than wrapping: a wrapped count would destroy
// the value while handles still point at it.
const MaxRefCount = math.MaxInt64

// lockedWeak is stored in the weak count while GetMut holds it.
const lockedWeak = math.MaxUint64

// Dropper is implemented by values that need cleanup when their last
// strong owner is dropped. It takes precedence over io.Closer.
type Dropper interface {
	Drop()
}

// block is the control block shared by every handle to one value.
//
//	strong: goroutine families + Shared handles + raw pointers
//	weak:   Weak handles + 1 while strong > 0
//
// value is destroyed exactly once, when strong goes 1→0, and the implicit
// weak unit is released right after. The block is freed exactly once, when
// weak goes 1→0, which therefore always follows destruction.
//
// value must stay at a fixed offset: blockOf recovers the block from &value.
type block[T any] struct {
	strong refcount.Default
	weak   refcount.Default
	value  T

	// each destroys the elements of a slice payload. nil for single values.
	each func(*T)

	// epoch is the stats window the allocation was counted in, 0 if none.
	epoch uint32
}

func newBlock[T any](v T) *block[T] {
	b := &block[T]{value: v}
	b.strong.Store(1)
	b.weak.Store(1)
	if b.epoch = stats.Epoch(); b.epoch != 0 {
		stats.ForceAdd(stats.BlocksAllocated)
	}
	return b
}

// acquireStrong adds one strong unit for a caller that already holds one.
func (b *block[T]) acquireStrong(op string) {
	prev := b.strong.Add(1)
	switch {
	case prev >= MaxRefCount:
		b.strong.Sub(1)
		countPanic("strong", op, prev, ErrOverflow)
	case prev == 0:
		b.strong.Sub(1)
		countPanic("strong", op, prev, ErrExpired)
	}
}

// releaseStrong gives back one strong unit. The caller that takes the count
// to zero destroys the value and releases the implicit weak unit.
//
// Every strong release goes through here so Trc.Drop, Shared.Drop and
// DecrementLocalCount cannot disagree on when the value dies.
func (b *block[T]) releaseStrong(op string) {
	if b.subStrong(op) {
		b.destroy()
		b.releaseWeak(op)
	}
}

// subStrong takes one strong unit and reports whether it was the last.
// An underflow is undone before panicking so the block stays usable by
// Weak observers after a recover.
func (b *block[T]) subStrong(op string) bool {
	prev := b.strong.Sub(1)
	if prev == 0 {
		b.strong.Add(1)
		countPanic("strong", op, prev, ErrUnderflow)
	}
	return prev == 1
}

// acquireWeak adds one weak unit.
//
// A concurrent GetMut may hold the weak count at lockedWeak for a few
// instructions; wait it out.
func (b *block[T]) acquireWeak(op string) {
	for {
		cur := b.weak.Load()
		if cur == lockedWeak {
			runtime.Gosched()
			continue
		}
		if cur >= MaxRefCount {
			countPanic("weak", op, cur, ErrOverflow)
		}
		if b.weak.CompareAndSwap(cur, cur+1) {
			return
		}
	}
}

// releaseWeak gives back one weak unit and frees the block at zero.
func (b *block[T]) releaseWeak(op string) {
	prev := b.weak.Sub(1)
	switch {
	case prev == 0:
		b.weak.Add(1)
		countPanic("weak", op, prev, ErrUnderflow)
	case prev == 1:
		b.free(op)
	}
}

// weakCount reads the weak count. While GetMut holds the count claimed it
// is exactly one, which is what is reported.
func (b *block[T]) weakCount() uint64 {
	if n := b.weak.Load(); n != lockedWeak {
		return n
	}
	return 1
}

// tryUpgrade adds one strong unit unless the value is already gone.
func (b *block[T]) tryUpgrade() bool {
	_, ok := refcount.Update(&b.strong, func(cur uint64) (uint64, bool) {
		if cur == 0 {
			return 0, false
		}
		if cur >= MaxRefCount {
			countPanic("strong", "Upgrade", cur, ErrOverflow)
		}
		return cur + 1, true
	})
	if !ok {
		stats.Add(stats.UpgradesFailed)
	}
	return ok
}

// take moves the value out without running its hook. The caller must have
// just taken strong to zero.
func (b *block[T]) take() T {
	v := b.value
	var zero T
	b.value = zero
	return v
}

// destroy runs the value's hook and zeroes the slot.
func (b *block[T]) destroy() {
	if b.each != nil {
		b.each(&b.value)
	} else {
		runHook(&b.value)
	}
	var zero T
	b.value = zero
	stats.Add(stats.ValuesDropped)
}

func (b *block[T]) free(op string) {
	if s := b.strong.Load(); s != 0 {
		countPanic("strong", op, s, ErrCorrupted)
	}
	b.each = nil
	if stats.Current(b.epoch) {
		stats.ForceAdd(stats.BlocksFreed)
	}
}

// runHook calls Drop or Close on *p, trying the value receiver first.
func runHook[T any](p *T) {
	var hook any = *p
	switch hook.(type) {
	case nil:
		return
	case Dropper, io.Closer:
		if isNilPointer(hook) {
			return
		}
	default:
		hook = p
	}

	switch h := hook.(type) {
	case Dropper:
		h.Drop()
	case io.Closer:
		if err := h.Close(); err != nil {
			stats.ForceAdd(stats.DropHookErrors)
			log().Error("trc: close on last drop failed",
				"type", typeName[T](),
				"error", err,
			)
		}
	}
}

func isNilPointer(x any) bool {
	v := reflect.ValueOf(x)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
