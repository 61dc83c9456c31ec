// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !trc_lock

package refcount

// Default is the counter embedded in every control block.
type Default = Atomic

// Backend names the counter implementation selected at build time.
const Backend = "atomic"
