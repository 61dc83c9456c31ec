// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main implements trcbench, a command-line harness that measures
// trc against a plain atomic reference count.
//
// Usage:
//
//	trcbench clone -n 10000000     # Clone+Drop in one goroutine
//	trcbench deref -n 10000000     # Dereference cost
//	trcbench multi -g 100 -c 5000  # Share across goroutines, clone in each
//	trcbench demo                  # Walk through the handle lifecycle
//	trcbench version               # Show version information
//
// Workload parameters come from flags or a YAML file given with --config.
// Flags win over the file. With --metrics, the trc counters are printed in
// Prometheus text format after the run.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
