// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trcmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/kolkov/trc/internal/stats"
)

// RegisterOTel registers observable instruments for the trc counters on
// meter and a callback that reports them on each collection.
//
// Instruments are named trc.<name> (counters) and trc.blocks.live (gauge).
// Call Unregister on the returned registration to stop reporting.
func RegisterOTel(meter metric.Meter) (metric.Registration, error) {
	kinds := stats.Kinds()
	counters := make([]metric.Int64ObservableCounter, len(kinds))
	instruments := make([]metric.Observable, 0, len(kinds)+1)

	for i, k := range kinds {
		c, err := meter.Int64ObservableCounter(
			"trc."+k.String(),
			metric.WithDescription(help[k]),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", k, err)
		}
		counters[i] = c
		instruments = append(instruments, c)
	}

	live, err := meter.Int64ObservableGauge(
		"trc.blocks.live",
		metric.WithDescription("Control blocks allocated and not yet freed."),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create blocks.live: %w", err)
	}
	instruments = append(instruments, live)

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		snap := stats.Snapshot()
		for i, k := range kinds {
			o.ObserveInt64(counters[i], int64(snap[k]))
		}
		o.ObserveInt64(live, int64(liveBlocks()))
		return nil
	}, instruments...)
}
