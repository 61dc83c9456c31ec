// Copyright 2025 The trc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/trc/trc"
)

// sink keeps results observable so the compiler cannot drop the loops.
var sink atomic.Int64

// result is one timed workload.
type result struct {
	Name    string
	Ops     int
	Elapsed time.Duration
}

// PerOp returns the mean time per operation in nanoseconds.
func (r result) PerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Ops)
}

// arc is the baseline: a reference count where every clone and drop is
// atomic, like a single shared counter without biasing.
type arc[T any] struct {
	n *atomic.Int64
	v *T
}

func newArc[T any](v T) arc[T] {
	n := new(atomic.Int64)
	n.Store(1)
	return arc[T]{n: n, v: &v}
}

func (a arc[T]) clone() arc[T] {
	a.n.Add(1)
	return a
}

func (a arc[T]) drop() {
	a.n.Add(-1)
}

func cloneTrc(n int) result {
	p := trc.New(100)
	defer p.Drop()

	start := time.Now()
	for i := 0; i < n; i++ {
		p.Clone().Drop()
	}
	return result{Name: "Trc", Ops: n, Elapsed: time.Since(start)}
}

func cloneArc(n int) result {
	a := newArc(100)

	start := time.Now()
	for i := 0; i < n; i++ {
		a.clone().drop()
	}
	return result{Name: "Arc", Ops: n, Elapsed: time.Since(start)}
}

func derefTrc(n int) result {
	p := trc.New(100)
	defer p.Drop()

	var sum int64
	start := time.Now()
	for i := 0; i < n; i++ {
		sum += int64(*p.Get())
	}
	elapsed := time.Since(start)
	sink.Add(sum)
	return result{Name: "Trc", Ops: n, Elapsed: elapsed}
}

func derefArc(n int) result {
	a := newArc(100)

	var sum int64
	start := time.Now()
	for i := 0; i < n; i++ {
		sum += int64(*a.v)
	}
	elapsed := time.Since(start)
	sink.Add(sum)
	return result{Name: "Arc", Ops: n, Elapsed: elapsed}
}

// multiTrc shares one value with cfg.Goroutines goroutines; each opens its
// own family and clones inside it.
func multiTrc(ctx context.Context, cfg Config) (result, error) {
	p := trc.New(100)
	defer p.Drop()

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for i := 0; i < cfg.Goroutines; i++ {
		s := p.Share()
		g.Go(func() error {
			q := s.IntoTrc()
			defer q.Drop()

			var sum int64
			for j := 0; j < cfg.ClonesPerGoroutine; j++ {
				if j%4096 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				c := q.Clone()
				sum += int64(*c.Get())
				c.Drop()
			}
			sink.Add(sum)
			return nil
		})
	}
	err := g.Wait()
	return result{Name: "Trc", Ops: cfg.Goroutines * cfg.ClonesPerGoroutine, Elapsed: time.Since(start)}, err
}

// multiArc is multiTrc with every clone on the shared atomic.
func multiArc(ctx context.Context, cfg Config) (result, error) {
	a := newArc(100)

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for i := 0; i < cfg.Goroutines; i++ {
		a2 := a.clone()
		g.Go(func() error {
			defer a2.drop()

			var sum int64
			for j := 0; j < cfg.ClonesPerGoroutine; j++ {
				if j%4096 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				c := a2.clone()
				sum += int64(*c.v)
				c.drop()
			}
			sink.Add(sum)
			return nil
		})
	}
	err := g.Wait()
	return result{Name: "Arc", Ops: cfg.Goroutines * cfg.ClonesPerGoroutine, Elapsed: time.Since(start)}, err
}
