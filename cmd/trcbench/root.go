// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kolkov/trc/trc"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	cfg        Config
}

// newRootCmd builds the command tree. A fresh tree per call keeps tests
// independent of each other's flag state.
func newRootCmd() *cobra.Command {
	opts := &options{cfg: DefaultConfig()}

	root := &cobra.Command{
		Use:   "trcbench",
		Short: "Benchmark biased reference counting against an atomic baseline",
		Long: `trcbench times trc handles against a reference count that uses one
shared atomic for every clone and drop.

Examples:
  trcbench clone -n 10000000
  trcbench multi -g 100 -c 5000 --metrics
  trcbench --config bench.yaml multi`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML file with workload parameters")
	pf.IntVarP(&opts.cfg.Iterations, "iterations", "n", opts.cfg.Iterations, "loop count for single-goroutine workloads")
	pf.IntVarP(&opts.cfg.Goroutines, "goroutines", "g", opts.cfg.Goroutines, "goroutines for the multi workload")
	pf.IntVarP(&opts.cfg.ClonesPerGoroutine, "clones", "c", opts.cfg.ClonesPerGoroutine, "clone+drop count per goroutine")
	pf.BoolVar(&opts.cfg.Metrics, "metrics", false, "print trc counters in Prometheus text format after the run")
	pf.BoolVar(&opts.cfg.LeakCheck, "leak-check", false, "report handles garbage collected without Drop")

	root.AddCommand(
		newCloneCmd(opts),
		newDerefCmd(opts),
		newMultiCmd(opts),
		newDemoCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load merges the config file under any flags given explicitly and
// applies the diagnostics it asks for.
func (o *options) load(cmd *cobra.Command) error {
	if o.configPath != "" {
		file, err := LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("iterations") {
			o.cfg.Iterations = file.Iterations
		}
		if !flags.Changed("goroutines") {
			o.cfg.Goroutines = file.Goroutines
		}
		if !flags.Changed("clones") {
			o.cfg.ClonesPerGoroutine = file.ClonesPerGoroutine
		}
		if !flags.Changed("metrics") {
			o.cfg.Metrics = file.Metrics
		}
		if !flags.Changed("leak-check") {
			o.cfg.LeakCheck = file.LeakCheck
		}
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	trc.EnableStats(o.cfg.Metrics)
	trc.EnableLeakCheck(o.cfg.LeakCheck)
	return nil
}

// finish prints the metrics dump if requested.
func (o *options) finish(w io.Writer) error {
	if !o.cfg.Metrics {
		return nil
	}
	fmt.Fprintln(w)
	return writeMetrics(w)
}

func printResults(w io.Writer, test string, results ...result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s test %s (%dx): %.2fns avg\n", test, r.Name, r.Ops, r.PerOp())
	}
}

func newCloneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clone",
		Short: "Clone and drop in a single goroutine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := opts.cfg.Iterations
			printResults(cmd.OutOrStdout(), "Clone", cloneTrc(n), cloneArc(n))
			return opts.finish(cmd.OutOrStdout())
		},
	}
}

func newDerefCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deref",
		Short: "Read the value through a handle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := opts.cfg.Iterations
			printResults(cmd.OutOrStdout(), "Deref", derefTrc(n), derefArc(n))
			return opts.finish(cmd.OutOrStdout())
		},
	}
}

func newMultiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "multi",
		Short: "Share one value across goroutines and clone inside each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			t, err := multiTrc(ctx, opts.cfg)
			if err != nil {
				return fmt.Errorf("trc workload: %w", err)
			}
			a, err := multiArc(ctx, opts.cfg)
			if err != nil {
				return fmt.Errorf("arc workload: %w", err)
			}
			printResults(cmd.OutOrStdout(), "Multi-goroutine", t, a)
			return opts.finish(cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := trc.GetInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "trcbench %s (%s counters)\n", info.Version, info.Backend)
			return nil
		},
	}
}
