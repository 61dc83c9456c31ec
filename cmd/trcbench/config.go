// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds workload parameters.
//
// Example file:
//
//	iterations: 10000000
//	goroutines: 100
//	clones_per_goroutine: 5000
//	metrics: true
type Config struct {
	// Iterations is the loop count for the single-goroutine workloads.
	Iterations int `yaml:"iterations"`

	// Goroutines is the number of goroutines the multi workload spawns.
	Goroutines int `yaml:"goroutines"`

	// ClonesPerGoroutine is the clone+drop count inside each goroutine.
	ClonesPerGoroutine int `yaml:"clones_per_goroutine"`

	// Metrics prints the trc counters in Prometheus text format after
	// the run. Turns trc stats collection on.
	Metrics bool `yaml:"metrics"`

	// LeakCheck turns on trc leak reporting for the run.
	LeakCheck bool `yaml:"leak_check"`
}

// DefaultConfig returns the parameters the benchmarks were tuned with.
func DefaultConfig() Config {
	return Config{
		Iterations:         10_000_000,
		Goroutines:         100,
		ClonesPerGoroutine: 1000,
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults; a missing file is an error, since it was asked for explicitly.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every count is positive.
func (c Config) Validate() error {
	var errs []error
	if c.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.Goroutines <= 0 {
		errs = append(errs, fmt.Errorf("goroutines must be positive, got %d", c.Goroutines))
	}
	if c.ClonesPerGoroutine <= 0 {
		errs = append(errs, fmt.Errorf("clones_per_goroutine must be positive, got %d", c.ClonesPerGoroutine))
	}
	return errors.Join(errs...)
}
