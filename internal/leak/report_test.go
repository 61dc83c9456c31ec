// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leak

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/trc/internal/stackdepot"
)

// TestReportKeyIgnoresAddress tests that one site yields one key.
func TestReportKeyIgnoresAddress(t *testing.T) {
	a := &Report{Handle: "Trc", Type: "int", Block: 0x1000, Stack: 7}
	b := &Report{Handle: "Trc", Type: "int", Block: 0x2000, Stack: 7}
	c := &Report{Handle: "Weak", Type: "int", Block: 0x1000, Stack: 7}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

// TestReportFormat tests the banner layout and creation stack.
func TestReportFormat(t *testing.T) {
	stackdepot.Reset()
	r := &Report{
		Handle: "Shared",
		Type:   "[]string",
		Block:  0xc000012340,
		Stack:  stackdepot.Capture(0),
	}

	out := r.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	assert.Equal(t, "==================", lines[0])
	assert.Equal(t, "WARNING: LEAKED HANDLE", lines[1])
	assert.Equal(t, "*trc.Shared[[]string] on block 0x000000c000012340 was never dropped.", lines[2])
	assert.Equal(t, "Created at:", lines[3])
	assert.Contains(t, out, "TestReportFormat")
	assert.Equal(t, "==================", lines[len(lines)-1])
}

// TestReportFormatNoStack tests a report without a recorded stack.
func TestReportFormatNoStack(t *testing.T) {
	r := &Report{Handle: "Weak", Type: "int"}
	assert.Contains(t, r.String(), "(no stack captured)")
}

// TestReporterDeduplicates tests first-seen semantics and counting.
func TestReporterDeduplicates(t *testing.T) {
	var rp Reporter

	r := &Report{Handle: "Trc", Type: "int", Stack: 1}
	assert.True(t, rp.Observe(r))
	assert.False(t, rp.Observe(&Report{Handle: "Trc", Type: "int", Block: 9, Stack: 1}))
	assert.True(t, rp.Observe(&Report{Handle: "Trc", Type: "int", Stack: 2}))

	assert.Equal(t, uint64(3), rp.Total())
	assert.Equal(t, 2, rp.Sites())

	rp.Reset()
	assert.Equal(t, uint64(0), rp.Total())
	assert.Equal(t, 0, rp.Sites())
	assert.True(t, rp.Observe(r), "site must be reportable again after Reset")
}

// TestReporterConcurrent tests exactly one goroutine wins a site.
func TestReporterConcurrent(t *testing.T) {
	var rp Reporter
	var firsts [64]bool

	var g errgroup.Group
	for i := range firsts {
		g.Go(func() error {
			firsts[i] = rp.Observe(&Report{Handle: "Trc", Type: "int", Stack: 42})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	won := 0
	for _, f := range firsts {
		if f {
			won++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, uint64(len(firsts)), rp.Total())
}
