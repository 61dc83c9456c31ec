// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New(100)
	defer p.Drop()

	assert.Equal(t, 100, *p.Get())
	assert.Equal(t, 100, p.Load())
	assert.Equal(t, uint64(1), p.LocalCount())
	assert.Equal(t, uint64(1), p.AtomicCount())
	assert.Equal(t, uint64(1), p.WeakCount())
}

// TestCloneDropBalance tests that N clones and N drops restore the counts.
func TestCloneDropBalance(t *testing.T) {
	const n = 1000

	p := New("value")
	w := p.Downgrade()
	defer w.Drop()

	clones := make([]*Trc[string], 0, n)
	for i := 0; i < n; i++ {
		clones = append(clones, p.Clone())
	}
	assert.Equal(t, uint64(n+1), p.LocalCount())
	assert.Equal(t, uint64(1), p.AtomicCount(), "clones must not touch the strong count")

	for _, c := range clones {
		c.Drop()
	}
	assert.Equal(t, uint64(1), p.LocalCount())
	assert.Equal(t, uint64(1), p.AtomicCount())
	assert.Equal(t, uint64(2), p.WeakCount())

	p.Drop()
	assert.Equal(t, uint64(0), w.StrongCount())
	assert.Equal(t, uint64(1), w.WeakCount(), "block must survive while a Weak remains")
}

func TestCloneSharesValue(t *testing.T) {
	p := New([]int{1, 2, 3})
	q := p.Clone()
	defer p.Drop()
	defer q.Drop()

	(*q.Get())[0] = 9
	assert.Equal(t, 9, (*p.Get())[0])
	assert.True(t, PtrEq(p, q))
}

// TestGetMutGating tests exclusive access follows the local count.
func TestGetMutGating(t *testing.T) {
	p := New(100)
	defer p.Drop()

	v, ok := p.GetMut()
	require.True(t, ok)
	*v = 200
	assert.Equal(t, 200, p.Load())

	q := p.Clone()
	_, ok = p.GetMut()
	assert.False(t, ok, "local count 2")

	q.Drop()
	v, ok = p.GetMut()
	require.True(t, ok)
	*v = 300
	assert.Equal(t, 300, p.Load())
}

func TestGetMutRefusedByOtherOwners(t *testing.T) {
	p := New(1)
	defer p.Drop()

	s := p.Share()
	_, ok := p.GetMut()
	assert.False(t, ok, "Shared outstanding")
	s.Drop()

	w := p.Downgrade()
	_, ok = p.GetMut()
	assert.False(t, ok, "Weak outstanding")
	assert.Equal(t, uint64(2), p.WeakCount(), "failed claim must not disturb the weak count")
	w.Drop()

	_, ok = p.GetMut()
	assert.True(t, ok)
}

func TestGetMutCountsFailures(t *testing.T) {
	withStats(t)

	p := New(1)
	q := p.Clone()
	_, _ = p.GetMut()
	q.Drop()
	p.Drop()

	assert.Equal(t, uint64(1), ReadStats().GetMutFailed)
}

// TestIdentityVersusValue tests PtrEq against value equality.
func TestIdentityVersusValue(t *testing.T) {
	a := New(100)
	b := New(100)
	c := a.Clone()
	defer a.Drop()
	defer b.Drop()
	defer c.Drop()

	assert.True(t, Equal(a, b))
	assert.False(t, PtrEq(a, b))
	assert.True(t, PtrEq(a, c))
}

func TestTryUnwrap(t *testing.T) {
	p := New("payload")
	v, err := p.TryUnwrap()
	require.NoError(t, err)
	assert.Equal(t, "payload", v)

	requirePanicsIs(t, ErrDropped, func() { p.Get() })
}

func TestTryUnwrapShared(t *testing.T) {
	p := New(7)
	q := p.Clone()

	_, err := p.TryUnwrap()
	require.ErrorIs(t, err, ErrShared)
	assert.Equal(t, uint64(2), p.LocalCount(), "failure must leave p untouched")
	assert.Equal(t, uint64(1), p.AtomicCount())

	q.Drop()
	s := p.Share()
	_, err = p.TryUnwrap()
	require.ErrorIs(t, err, ErrShared)
	s.Drop()

	v, err := p.TryUnwrap()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

// TestTryUnwrapIgnoresWeak tests weak observers do not block unwrapping.
func TestTryUnwrapIgnoresWeak(t *testing.T) {
	withStats(t)

	p := New(5)
	w := p.Downgrade()

	v, err := p.TryUnwrap()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, ok := w.Upgrade()
	assert.False(t, ok)
	assert.Equal(t, uint64(1), w.WeakCount())
	w.Drop()

	s := ReadStats()
	assert.Equal(t, uint64(0), s.LiveBlocks())
	assert.Equal(t, uint64(0), s.ValuesDropped, "unwrapped value belongs to the caller")
}

func TestTryUnwrapSkipsHook(t *testing.T) {
	var n atomic.Int32
	p := New(dropCounter{n: &n})
	_, err := p.TryUnwrap()
	require.NoError(t, err)
	assert.Equal(t, int32(0), n.Load())
}

func TestIntoInner(t *testing.T) {
	p := New(42)
	q := p.Clone()

	_, ok := q.IntoInner()
	assert.False(t, ok, "family still holds p")

	v, ok := p.IntoInner()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestIntoInnerWithOtherFamily(t *testing.T) {
	p := New(42)
	s := p.Share()

	_, ok := p.IntoInner()
	assert.False(t, ok)

	v, ok := s.IntoTrc().IntoInner()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

// TestDropRunsHookOnce tests the value is destroyed on the last strong release only.
func TestDropRunsHookOnce(t *testing.T) {
	var n atomic.Int32
	p := New(dropCounter{n: &n})
	q := p.Clone()
	s := p.Share()

	p.Drop()
	q.Drop()
	assert.Equal(t, int32(0), n.Load(), "Shared still owns the value")

	s.Drop()
	assert.Equal(t, int32(1), n.Load())
}

func TestDropPointerReceiverHook(t *testing.T) {
	c := &closer{}
	p := New(c)
	p.Drop()
	assert.True(t, c.closed)
}

func TestDropValueWithPointerReceiverHook(t *testing.T) {
	var n atomic.Int32
	p := New(slotCloser{n: &n})
	slot := p.Get()
	p.Drop()

	assert.Equal(t, int32(1), n.Load())
	assert.Nil(t, slot.n, "slot must be zeroed after the hook")
}

func TestDropLogsCloseError(t *testing.T) {
	buf := captureLog(t)
	withStats(t)

	New(&closer{err: errClose}).Drop()

	assert.Contains(t, buf.String(), "close on last drop failed")
	assert.Contains(t, buf.String(), errClose.Error())
	assert.Equal(t, uint64(1), ReadStats().DropHookErrors)
}

func TestDropNilPointerSkipsHook(t *testing.T) {
	var c *closer
	assert.NotPanics(t, func() { New(c).Drop() })
}

func TestDoubleDropPanics(t *testing.T) {
	p := New(1)
	p.Drop()
	requirePanicsIs(t, ErrDropped, p.Drop)
	requirePanicsIs(t, ErrDropped, func() { p.Clone() })
	requirePanicsIs(t, ErrDropped, func() { p.Load() })
}

func TestIntoInnerConsumes(t *testing.T) {
	p := New(1)
	q := p.Clone()
	_, _ = q.IntoInner()
	requirePanicsIs(t, ErrDropped, q.Drop)
	p.Drop()
}

// TestCloneOverflow primes the local count at the limit.
func TestCloneOverflow(t *testing.T) {
	p := New(1)
	p.l.count = MaxRefCount

	requirePanicsIs(t, ErrOverflow, func() { p.Clone() })
	assert.Equal(t, uint64(MaxRefCount), p.l.count, "failed Clone must not increment")

	p.l.count = 1
	p.Drop()
}

func TestShareOverflow(t *testing.T) {
	p := New(1)
	p.b.strong.Store(MaxRefCount)

	requirePanicsIs(t, ErrOverflow, func() { p.Share() })
	assert.Equal(t, uint64(MaxRefCount), p.AtomicCount(), "failed Share must undo its increment")

	p.b.strong.Store(1)
	p.Drop()
}

func TestDowngradeOverflow(t *testing.T) {
	p := New(1)
	p.b.weak.Store(MaxRefCount)

	var ce *CountError
	defer func() {
		r := recover()
		require.NotNil(t, r)
		require.ErrorAs(t, r.(error), &ce)
		assert.Equal(t, "weak", ce.Counter)
		assert.Equal(t, "Downgrade", ce.Op)
		assert.Equal(t, uint64(MaxRefCount), ce.Value)

		p.b.weak.Store(1)
		p.Drop()
	}()
	p.Downgrade()
}
