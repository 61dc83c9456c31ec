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

func newDemoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the handle lifecycle and print the counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			runDemo(w)
			return opts.finish(w)
		},
	}
}

// conn stands in for a resource with a Close method.
type conn struct {
	name string
	w    io.Writer
}

func (c *conn) Close() error {
	fmt.Fprintf(c.w, "  %s closed\n", c.name)
	return nil
}

func counts[T any](t *trc.Trc[T]) string {
	return fmt.Sprintf("local=%d strong=%d weak=%d", t.LocalCount(), t.AtomicCount(), t.WeakCount())
}

func runDemo(w io.Writer) {
	fmt.Fprintln(w, "new:")
	p := trc.New(&conn{name: "db", w: w})
	fmt.Fprintf(w, "  %s\n", counts(p))

	fmt.Fprintln(w, "clone:")
	q := p.Clone()
	fmt.Fprintf(w, "  %s\n", counts(p))

	fmt.Fprintln(w, "downgrade:")
	weak := p.Downgrade()
	fmt.Fprintf(w, "  %s\n", counts(p))

	fmt.Fprintln(w, "share to goroutine:")
	s := p.Share()
	done := make(chan string)
	go func() {
		r := s.IntoTrc()
		line := fmt.Sprintf("  remote %s name=%s", counts(r), r.Load().name)
		r.Drop()
		done <- line
	}()
	fmt.Fprintln(w, <-done)

	fmt.Fprintln(w, "get_mut while shared:")
	_, ok := p.GetMut()
	fmt.Fprintf(w, "  ok=%v\n", ok)

	fmt.Fprintln(w, "drop owners:")
	q.Drop()
	p.Drop()

	fmt.Fprintln(w, "upgrade after drop:")
	_, ok = weak.Upgrade()
	fmt.Fprintf(w, "  ok=%v\n", ok)
	weak.Drop()
}
