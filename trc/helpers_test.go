// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// requirePanicsIs runs f and requires it to panic with an error matching target.
func requirePanicsIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, target)
	}()
	f()
}

// syncBuffer is a bytes.Buffer safe for the cleanup goroutine to write
// while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLog routes package logging into a buffer for the test's duration.
func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	var buf syncBuffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

// withStats enables counting from zero for the test's duration.
func withStats(t *testing.T) {
	t.Helper()
	ResetStats()
	EnableStats(true)
	t.Cleanup(func() {
		EnableStats(false)
		ResetStats()
	})
}

// dropCounter counts Drop calls.
type dropCounter struct {
	n *atomic.Int32
}

func (d dropCounter) Drop() {
	d.n.Add(1)
}

// closer records Close and optionally fails.
type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

// slotCloser has a pointer-receiver Close, so a slotCloser value is
// closed through a pointer to the slot that holds it.
type slotCloser struct {
	n *atomic.Int32
}

func (s *slotCloser) Close() error {
	s.n.Add(1)
	return nil
}

var errClose = errors.New("close failed")
