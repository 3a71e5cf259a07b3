// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package handoff runs a producer and a consumer concurrently,
// handing one snapshot per cycle from the first to the second
// while never letting the producer get more than one snapshot ahead.
package handoff

import (
	"sync"
	"time"

	"cogentcore.org/spacesim/base/errors"
)

// PumpInterval is how often a blocked producer runs its pump function.
var PumpInterval = 2 * time.Millisecond

// ErrAborted is returned by waits interrupted by [Stage.Abort]
// when no other error was given.
var ErrAborted = errors.New("handoff: stage aborted")

// Cloner is a value that can make a deep copy of itself.
type Cloner[T any] interface {
	Clone() T
}

// Stage is the handshake between one producer and one consumer.
// All fields are guarded by mu. Every state change closes
// the current notify channel and replaces it, waking all waiters.
type Stage[T Cloner[T]] struct {
	mu     sync.Mutex
	notify chan struct{}

	// the published copy, read by the consumer during its cycle
	shared T

	// snapshots published but not yet fully consumed, 0 or 1
	framesAhead int

	// high-water mark of framesAhead
	maxAhead int

	producerDone      bool
	renderingFinished bool
	stopRequested     bool
	canTerminate      bool

	err error
}

// NewStage returns a new stage with no snapshot published.
func NewStage[T Cloner[T]]() *Stage[T] {
	return &Stage[T]{
		notify:            make(chan struct{}),
		renderingFinished: true,
	}
}

// broadcast wakes all waiters. mu must be held.
func (st *Stage[T]) broadcast() {
	close(st.notify)
	st.notify = make(chan struct{})
}

// wait blocks until cond is true or the stage is aborted. mu must be
// held; it is released while blocked. If pump is non-nil it is called
// without the lock at least every [PumpInterval] while blocked.
func (st *Stage[T]) wait(cond func() bool, pump func()) error {
	for {
		if st.err != nil {
			return st.err
		}
		if cond() {
			return nil
		}
		ch := st.notify
		st.mu.Unlock()
		if pump == nil {
			<-ch
		} else {
			timer := time.NewTimer(PumpInterval)
			select {
			case <-ch:
			case <-timer.C:
			}
			timer.Stop()
			pump()
		}
		st.mu.Lock()
	}
}

// Publish blocks until the consumer has finished with the previous
// snapshot, then publishes a copy of snap. It is called by the producer.
func (st *Stage[T]) Publish(snap T, pump func()) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.wait(func() bool { return st.framesAhead < 1 }, pump); err != nil {
		return err
	}
	st.shared = snap.Clone()
	st.producerDone = true
	st.framesAhead++
	st.maxAhead = max(st.maxAhead, st.framesAhead)
	st.broadcast()
	return nil
}

// Next blocks until a snapshot is published and returns it, with
// ok == false once shutdown was requested. It is called by the consumer,
// which must call [Stage.Done] after each snapshot it got. The returned
// value must not be modified.
func (st *Stage[T]) Next() (snap T, ok bool, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.wait(func() bool { return st.producerDone }, nil); err != nil {
		return snap, false, err
	}
	if st.stopRequested {
		st.canTerminate = true
		st.broadcast()
		return snap, false, nil
	}
	st.renderingFinished = false
	return st.shared, true, nil
}

// Done marks the snapshot returned by the last [Stage.Next] as consumed.
func (st *Stage[T]) Done() {
	st.mu.Lock()
	defer st.mu.Unlock()
	errors.Assert(st.framesAhead == 1 && st.producerDone, "handoff: Done without a snapshot")
	st.producerDone = false
	st.framesAhead--
	st.renderingFinished = true
	st.broadcast()
}

// Stop runs the shutdown handshake from the producer side: it waits for
// the consumer to finish its current cycle, requests the stop, wakes the
// consumer one last time and waits until it has exited its loop.
func (st *Stage[T]) Stop(pump func()) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.wait(func() bool { return st.renderingFinished && st.framesAhead == 0 }, pump); err != nil {
		return err
	}
	st.stopRequested = true
	st.producerDone = true
	st.broadcast()
	return st.wait(func() bool { return st.canTerminate }, pump)
}

// Abort records err (the first one wins) and wakes every waiter,
// which then returns it. A nil err aborts with [ErrAborted].
func (st *Stage[T]) Abort(err error) {
	if err == nil {
		err = ErrAborted
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.err == nil {
		st.err = err
	}
	st.broadcast()
}

// Err returns the abort error, if any.
func (st *Stage[T]) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// FramesAhead returns the number of published but unconsumed snapshots.
func (st *Stage[T]) FramesAhead() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.framesAhead
}

// MaxFramesAhead returns the largest FramesAhead ever observed.
func (st *Stage[T]) MaxFramesAhead() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.maxAhead
}

// Terminated returns whether the consumer has acknowledged the stop.
func (st *Stage[T]) Terminated() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.canTerminate
}
