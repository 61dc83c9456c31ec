// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trcmetrics exports trc lifecycle counters to Prometheus and
// OpenTelemetry.
//
// Both exporters read the same process-wide counters as trc.ReadStats, so
// they report nothing useful unless trc.EnableStats(true) has been called.
// Leak reports and destruction hook errors are always counted.
//
// Prometheus:
//
//	trc.EnableStats(true)
//	prometheus.MustRegister(trcmetrics.NewCollector())
//
// OpenTelemetry:
//
//	reg, err := trcmetrics.RegisterOTel(otel.Meter("trc"))
//	if err != nil {
//		return err
//	}
//	defer reg.Unregister()
package trcmetrics

import (
	"github.com/kolkov/trc/internal/stats"
	"github.com/kolkov/trc/trc"
)

// help describes each counter for exporters.
var help = map[stats.Kind]string{
	stats.BlocksAllocated: "Control blocks allocated.",
	stats.BlocksFreed:     "Control blocks freed after the last weak reference was dropped.",
	stats.ValuesDropped:   "Values destroyed after the last strong reference was dropped.",
	stats.LocalsAllocated: "Goroutine-local counts allocated.",
	stats.LocalsFreed:     "Goroutine-local counts returned to the pool.",
	stats.UpgradesFailed:  "Weak upgrades that found the value already destroyed.",
	stats.GetMutFailed:    "GetMut calls refused because the value was shared.",
	stats.DropHookErrors:  "Errors returned by Close when a value was destroyed.",
	stats.LeaksReported:   "Handles garbage collected without Drop.",
}

// liveBlocks returns blocks allocated but not yet freed.
func liveBlocks() uint64 {
	return trc.ReadStats().LiveBlocks()
}
