// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handoff

import (
	"log/slog"
	"runtime"

	"cogentcore.org/spacesim/base/errors"
	"golang.org/x/sync/errgroup"
)

// Producer is the simulation side of a [Run].
type Producer[T any] interface {

	// Tick computes the next snapshot. It returns more == false
	// when the producer wants to stop; snap is then ignored.
	Tick() (snap T, more bool, err error)

	// Pump services external events while the producer is blocked
	// waiting for the consumer.
	Pump()
}

// Consumer is the presentation side of a [Run].
type Consumer[T any] interface {

	// Consume runs one full cycle against the published snapshot,
	// which it must not modify or retain.
	Consume(snap T) error
}

// Run runs the consumer loop on its own goroutine, locked to an OS
// thread, and the producer loop on the calling goroutine, which should
// be the main thread when the producer pumps window events. It returns
// once both loops have exited, with the first error of either side.
func Run[T Cloner[T]](st *Stage[T], p Producer[T], c Consumer[T]) error {
	var g errgroup.Group
	g.Go(func() error {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		err := consume(st, c)
		if err != nil {
			st.Abort(err)
		}
		return err
	})

	perr := produce(st, p)
	if perr != nil {
		st.Abort(perr)
	}
	cerr := g.Wait()

	// the side that failed first owns the error; the other saw the abort
	if err := st.Err(); err != nil {
		return err
	}
	return errors.Join(perr, cerr)
}

func produce[T Cloner[T]](st *Stage[T], p Producer[T]) error {
	for {
		snap, more, err := p.Tick()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if err := st.Publish(snap, p.Pump); err != nil {
			return err
		}
	}
	slog.Info("producer stopping")
	return st.Stop(p.Pump)
}

func consume[T Cloner[T]](st *Stage[T], c Consumer[T]) error {
	for {
		snap, ok, err := st.Next()
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("consumer stopped")
			return nil
		}
		if err := c.Consume(snap); err != nil {
			return err
		}
		st.Done()
	}
}
