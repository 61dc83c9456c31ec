// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trcmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kolkov/trc/internal/stats"
	"github.com/kolkov/trc/trc"
)

// Collector is a prometheus.Collector over the trc counters.
//
// Every counter is exported as trc_<name>_total, plus the gauge
// trc_blocks_live. All series carry a constant "backend" label naming the
// compiled-in counter implementation.
//
// Collection reads atomics only; it is safe to scrape concurrently with
// any trc operation.
type Collector struct {
	counters map[stats.Kind]*prometheus.Desc
	live     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector ready to register.
func NewCollector() *Collector {
	labels := prometheus.Labels{"backend": trc.GetInfo().Backend}

	c := &Collector{
		counters: make(map[stats.Kind]*prometheus.Desc, len(help)),
		live: prometheus.NewDesc(
			"trc_blocks_live",
			"Control blocks allocated and not yet freed.",
			nil, labels,
		),
	}
	for _, k := range stats.Kinds() {
		c.counters[k] = prometheus.NewDesc(
			"trc_"+k.String()+"_total",
			help[k],
			nil, labels,
		)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, k := range stats.Kinds() {
		ch <- c.counters[k]
	}
	ch <- c.live
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := stats.Snapshot()
	for _, k := range stats.Kinds() {
		ch <- prometheus.MustNewConstMetric(c.counters[k], prometheus.CounterValue, float64(snap[k]))
	}
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(liveBlocks()))
}
