// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/kolkov/trc/trcmetrics"
)

// writeMetrics gathers the trc collector into a private registry and
// writes it in Prometheus text format.
func writeMetrics(w io.Writer) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(trcmetrics.NewCollector()); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	return writeFamilies(w, mfs)
}

func writeFamilies(w io.Writer, mfs []*dto.MetricFamily) error {
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
