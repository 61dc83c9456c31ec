// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
)

// Formatting, comparison and encoding forward to the value. None of them
// look at identity; use PtrEq for that.

// String formats the value with %v.
func (t *Trc[T]) String() string {
	return fmt.Sprint(t.Load())
}

// Format implements fmt.Formatter by formatting the value with the same
// verb and flags.
func (t *Trc[T]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), t.Load())
}

// Equal reports whether a and b hold equal values.
func Equal[T comparable](a, b *Trc[T]) bool {
	return a.Load() == b.Load()
}

// Compare compares the values held by a and b like cmp.Compare.
func Compare[T cmp.Ordered](a, b *Trc[T]) int {
	return cmp.Compare(a.Load(), b.Load())
}

// MarshalJSON encodes the value.
func (t *Trc[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Load())
}

// UnmarshalJSON decodes into a fresh block, making t its first owner.
//
// t must be a zero Trc, as allocated by encoding/json for a *Trc field.
// The decoded handle belongs to the calling goroutine and must be dropped.
func (t *Trc[T]) UnmarshalJSON(data []byte) error {
	if t.b != nil {
		return errors.New("trc: UnmarshalJSON into a live handle")
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.b = newBlock(v)
	t.l = newLocal()
	if leakCheck.Load() {
		t.cleanup = watch(t, "Trc", t.b)
	}
	return nil
}
