// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackdepot

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCapture tests capture and retrieval of the current stack.
func TestCapture(t *testing.T) {
	Reset()

	hash := Capture(0)
	require.NotZero(t, hash)

	st := Get(hash)
	require.NotNil(t, st)
	assert.NotZero(t, st.PC[0], "first frame must be recorded")
}

// TestCaptureDeduplicates tests the same call site yields one entry.
func TestCaptureDeduplicates(t *testing.T) {
	Reset()

	var hashes [2]uint64
	for i := range hashes {
		hashes[i] = Capture(0)
	}

	assert.Equal(t, hashes[0], hashes[1])
	assert.Equal(t, 1, Len())
}

func captureSiteA() uint64 { return Capture(0) }
func captureSiteB() uint64 { return Capture(0) }

// TestCaptureDistinctSites tests different call sites hash differently.
func TestCaptureDistinctSites(t *testing.T) {
	Reset()

	a, b := captureSiteA(), captureSiteB()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, Len())
}

// TestGetUnknown tests lookups that must miss.
func TestGetUnknown(t *testing.T) {
	Reset()
	assert.Nil(t, Get(0))
	assert.Nil(t, Get(0xdeadbeef))
}

// TestFormat tests the formatted stack names this test function.
func TestFormat(t *testing.T) {
	Reset()

	out := Get(Capture(0)).Format()
	assert.Contains(t, out, "TestFormat")
	assert.Contains(t, out, "stackdepot_test.go:")
	assert.False(t, strings.Contains(out, "runtime.Callers"), "runtime frames must be filtered")
}

// TestFormatNil tests formatting of a missing stack.
func TestFormatNil(t *testing.T) {
	var st *Stack
	assert.Equal(t, "  <unknown>\n", st.Format())
}

// TestCaptureConcurrent tests concurrent captures from one site converge.
func TestCaptureConcurrent(t *testing.T) {
	Reset()

	const numGoroutines = 32
	hashes := make([]uint64, numGoroutines)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i] = captureSiteA()
		}(i)
	}
	wg.Wait()

	for i := 1; i < numGoroutines; i++ {
		assert.Equal(t, hashes[0], hashes[i])
	}
}

func BenchmarkCapture(b *testing.B) {
	Reset()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Capture(0)
	}
}
