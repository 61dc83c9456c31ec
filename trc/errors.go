// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trc

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrShared is returned by TryUnwrap when the value has other owners.
	ErrShared = errors.New("trc: value is shared")

	// ErrDropped is wrapped by the panic raised when a handle is used
	// after Drop or after a consuming call.
	ErrDropped = errors.New("trc: use of dropped handle")

	// ErrOverflow is wrapped by a CountError when a count would exceed
	// MaxRefCount.
	ErrOverflow = errors.New("reference count overflow")

	// ErrUnderflow is wrapped by a CountError when a count is released
	// more times than it was acquired.
	ErrUnderflow = errors.New("reference count underflow")

	// ErrCorrupted is wrapped by a CountError when the counters disagree,
	// for example a block freed while still strongly owned.
	ErrCorrupted = errors.New("reference count corrupted")

	// ErrExpired is wrapped by a CountError when a strong reference is
	// taken on a block whose value has already been destroyed through a
	// raw pointer.
	ErrExpired = errors.New("value already destroyed")
)

// CountError describes a fatal reference counting violation.
//
// It is always delivered by panic: continuing after a count has wrapped
// would free memory that live handles still point at.
type CountError struct {
	// Counter is "local", "strong" or "weak".
	Counter string

	// Op is the operation that detected the violation.
	Op string

	// Value is the counter value observed before the operation.
	Value uint64

	// Err is one of ErrOverflow, ErrUnderflow, ErrCorrupted or ErrExpired.
	Err error
}

func (e *CountError) Error() string {
	return fmt.Sprintf("trc: %s count in %s (was %d): %v", e.Counter, e.Op, e.Value, e.Err)
}

func (e *CountError) Unwrap() error {
	return e.Err
}

// ConfinementError reports a goroutine touching a local count it does not own.
//
// Only raised when EnableConfinementCheck is on.
type ConfinementError struct {
	// Op is the operation attempted.
	Op string

	// Owner is the id of the goroutine that created the local count.
	Owner int64

	// Caller is the id of the goroutine that attempted Op.
	Caller int64
}

func (e *ConfinementError) Error() string {
	return fmt.Sprintf("trc: Trc.%s on goroutine %d, owned by goroutine %d (send a Shared instead)",
		e.Op, e.Caller, e.Owner)
}

func countPanic(counter, op string, value uint64, err error) {
	panic(&CountError{Counter: counter, Op: op, Value: value, Err: err})
}

func droppedPanic(handle, op string) {
	panic(fmt.Errorf("trc: %s.%s: %w", handle, op, ErrDropped))
}
