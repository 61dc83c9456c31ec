// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refcount

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// backends returns a fresh instance of every Counter implementation.
func backends() map[string]func() Counter {
	return map[string]func() Counter{
		"atomic": func() Counter { return &Atomic{} },
		"locked": func() Counter { return &Locked{} },
	}
}

// TestCounterFetchSemantics verifies Add and Sub return the previous value.
func TestCounterFetchSemantics(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			c := mk()
			assert.Equal(t, uint64(0), c.Load())

			assert.Equal(t, uint64(0), c.Add(1))
			assert.Equal(t, uint64(1), c.Add(5))
			assert.Equal(t, uint64(6), c.Load())

			assert.Equal(t, uint64(6), c.Sub(2))
			assert.Equal(t, uint64(4), c.Sub(4))
			assert.Equal(t, uint64(0), c.Load())

			c.Store(42)
			assert.Equal(t, uint64(42), c.Load())
		})
	}
}

// TestCounterSubWraps verifies underflow is observable through the return value.
func TestCounterSubWraps(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			c := mk()
			prev := c.Sub(1)
			assert.Equal(t, uint64(0), prev, "caller must see 0 to detect underflow")
			assert.Equal(t, uint64(math.MaxUint64), c.Load())
		})
	}
}

// TestCounterCompareAndSwap tests the exclusive-claim pattern used by GetMut.
func TestCounterCompareAndSwap(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			c := mk()
			c.Store(1)

			require.True(t, c.CompareAndSwap(1, math.MaxUint64))
			assert.False(t, c.CompareAndSwap(1, 2), "CAS must fail while claimed")
			assert.Equal(t, uint64(math.MaxUint64), c.Load())

			c.Store(1)
			assert.True(t, c.CompareAndSwap(1, 2))
			assert.Equal(t, uint64(2), c.Load())
		})
	}
}

// TestUpdateRefusesZero tests the upgrade loop shape: increment unless zero.
func TestUpdateRefusesZero(t *testing.T) {
	incNonZero := func(cur uint64) (uint64, bool) {
		if cur == 0 {
			return 0, false
		}
		return cur + 1, true
	}

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			c := mk()

			prev, ok := Update(c, incNonZero)
			assert.False(t, ok)
			assert.Equal(t, uint64(0), prev)
			assert.Equal(t, uint64(0), c.Load(), "declined update must not write")

			c.Store(3)
			prev, ok = Update(c, incNonZero)
			assert.True(t, ok)
			assert.Equal(t, uint64(3), prev)
			assert.Equal(t, uint64(4), c.Load())
		})
	}
}

// TestCounterConcurrent hammers each backend from many goroutines.
func TestCounterConcurrent(t *testing.T) {
	const (
		workers = 16
		perG    = 10000
	)

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			c := mk()
			c.Store(1)

			var g errgroup.Group
			for i := 0; i < workers; i++ {
				g.Go(func() error {
					for j := 0; j < perG; j++ {
						c.Add(1)
						Update(c, func(cur uint64) (uint64, bool) { return cur + 1, true })
						c.Sub(2)
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())
			assert.Equal(t, uint64(1), c.Load())
		})
	}
}

// TestDefaultBackend checks the build-selected backend is consistent.
func TestDefaultBackend(t *testing.T) {
	var d Default
	var c Counter = &d
	c.Add(1)
	assert.Equal(t, uint64(1), c.Load())
	assert.Contains(t, []string{"atomic", "lock"}, Backend)
}
