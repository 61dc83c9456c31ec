// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

// NewCyclic builds a value that holds a Weak reference to itself.
//
// factory receives a Weak to the block being built. The value is not
// there yet, so Upgrade on it fails until NewCyclic returns. The Weak is
// only borrowed: it is invalidated when factory returns, so factory must
// Clone it to keep a reference. Dropping it inside factory is allowed and
// only ends the borrow early.
//
//	type node struct {
//		self *trc.Weak[node]
//	}
//
//	n := trc.NewCyclic(func(self *trc.Weak[node]) node {
//		return node{self: self.Clone()}
//	})
//
// If factory panics the block is released before the panic propagates.
func NewCyclic[T any](factory func(self *Weak[T]) T) *Trc[T] {
	var zero T
	b := newBlock(zero)
	b.strong.Store(0)
	// One unit for the strong side, one owned by the borrowed Weak.
	b.weak.Store(2)

	self := &Weak[T]{b: b}
	built := false
	defer func() {
		if self.b != nil {
			self.b = nil
			b.releaseWeak("NewCyclic")
		}
		if !built {
			b.releaseWeak("NewCyclic")
		}
	}()

	b.value = factory(self)
	b.strong.Store(1)
	built = true
	return newTrc(b, newLocal())
}
