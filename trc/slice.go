// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"iter"
	"slices"
)

// UninitSlice is a control block for a slice that is being populated.
//
// It owns the block's first strong unit until AssumeInit hands it to a Trc.
// Elements start as zero values; every element must be Set (or written
// through Slice) before AssumeInit.
type UninitSlice[T any] struct {
	b *block[[]T]
}

// NewUninitSlice allocates a block for n elements. Panics if n < 0.
func NewUninitSlice[T any](n int) *UninitSlice[T] {
	if n < 0 {
		panic("trc: NewUninitSlice: negative length")
	}
	return &UninitSlice[T]{b: newSliceBlock(make([]T, n))}
}

func newSliceBlock[T any](s []T) *block[[]T] {
	b := newBlock(s)
	b.each = destroyEach[T]
	return b
}

// destroyEach runs the Drop/Close hook of every element.
func destroyEach[T any](s *[]T) {
	for i := range *s {
		runHook(&(*s)[i])
	}
}

func (u *UninitSlice[T]) live(op string) {
	if u.b == nil {
		droppedPanic("UninitSlice", op)
	}
}

// Len returns the number of elements.
func (u *UninitSlice[T]) Len() int {
	u.live("Len")
	return len(u.b.value)
}

// Set stores v at index i. Panics if i is out of range.
func (u *UninitSlice[T]) Set(i int, v T) {
	u.live("Set")
	u.b.value[i] = v
}

// Slice returns the backing slice for direct population.
func (u *UninitSlice[T]) Slice() []T {
	u.live("Slice")
	return u.b.value
}

// AssumeInit consumes u and returns the first owner of the populated slice.
func (u *UninitSlice[T]) AssumeInit() *Trc[[]T] {
	u.live("AssumeInit")
	b := u.b
	u.b = nil
	return newTrc(b, newLocal())
}

// Drop abandons u, running the Drop/Close hook of every element.
// Elements never Set are zero values and get their hooks run too.
func (u *UninitSlice[T]) Drop() {
	u.live("Drop")
	b := u.b
	u.b = nil
	b.releaseStrong("Drop")
}

// FromSlice copies s into a new block.
func FromSlice[T any](s []T) *Trc[[]T] {
	u := NewUninitSlice[T](len(s))
	copy(u.Slice(), s)
	return u.AssumeInit()
}

// Collect drains seq into a new block. The collected slice becomes the
// payload as is; elements get hooks like NewUninitSlice.
func Collect[T any](seq iter.Seq[T]) *Trc[[]T] {
	return newTrc(newSliceBlock(slices.Collect(seq)), newLocal())
}
