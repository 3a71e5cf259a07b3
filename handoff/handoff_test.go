// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handoff

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"cogentcore.org/spacesim/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	tick int
	vals []int
}

func (f frame) Clone() frame {
	return frame{tick: f.tick, vals: slices.Clone(f.vals)}
}

// producer fills one reused buffer in place every tick, so any
// aliasing between its buffer and the published copy shows up as a
// torn frame on the consumer side.
type producer struct {
	ticks int
	n     int
	buf   []int
	pumps atomic.Int32
	fail  int
}

func (p *producer) Tick() (frame, bool, error) {
	if p.fail > 0 && p.n == p.fail {
		return frame{}, false, errors.New("simulation failed")
	}
	if p.n == p.ticks {
		return frame{}, false, nil
	}
	p.n++
	for i := range p.buf {
		p.buf[i] = p.n
	}
	return frame{tick: p.n, vals: p.buf}, true, nil
}

func (p *producer) Pump() { p.pumps.Add(1) }

type consumer struct {
	t        *testing.T
	ticks    []int
	torn     int
	delay    time.Duration
	fail     int
	stopped  *atomic.Bool
	lateRuns int
}

func (c *consumer) Consume(f frame) error {
	if c.stopped != nil && c.stopped.Load() {
		c.lateRuns++
	}
	if c.fail > 0 && f.tick == c.fail {
		return errors.New("device lost")
	}
	c.ticks = append(c.ticks, f.tick)
	time.Sleep(c.delay)
	for _, v := range f.vals {
		if v != f.tick {
			c.torn++
			break
		}
	}
	return nil
}

func TestPublishBlocksWhileAhead(t *testing.T) {
	st := NewStage[frame]()
	require.NoError(t, st.Publish(frame{tick: 1}, nil))
	assert.Equal(t, 1, st.FramesAhead())

	published := make(chan struct{})
	go func() {
		assert.NoError(t, st.Publish(frame{tick: 2}, nil))
		close(published)
	}()

	select {
	case <-published:
		t.Fatal("second publish did not wait for the consumer")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, st.FramesAhead())

	f, ok, err := st.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, f.tick)
	st.Done()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("second publish still blocked after Done")
	}
	f, ok, err = st.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, f.tick)
	st.Done()
	assert.Equal(t, 1, st.MaxFramesAhead())
}

func TestPumpWhileBlocked(t *testing.T) {
	st := NewStage[frame]()
	require.NoError(t, st.Publish(frame{tick: 1}, nil))

	var pumps atomic.Int32
	done := make(chan struct{})
	go func() {
		assert.NoError(t, st.Publish(frame{tick: 2}, func() { pumps.Add(1) }))
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	_, _, err := st.Next()
	require.NoError(t, err)
	st.Done()
	<-done
	assert.Greater(t, pumps.Load(), int32(0))
}

func TestRun(t *testing.T) {
	p := &producer{ticks: 200, buf: make([]int, 64)}
	c := &consumer{t: t, delay: 200 * time.Microsecond}
	st := NewStage[frame]()

	require.NoError(t, Run[frame](st, p, c))

	assert.Equal(t, 1, st.MaxFramesAhead())
	assert.Equal(t, 0, st.FramesAhead())
	assert.Zero(t, c.torn, "consumer observed a snapshot mutated by the producer")
	require.Len(t, c.ticks, 200)
	for i, tick := range c.ticks {
		assert.Equal(t, i+1, tick)
	}
	assert.True(t, st.Terminated())
}

func TestRunStopDrains(t *testing.T) {
	var stopped atomic.Bool
	p := &producer{ticks: 5, buf: make([]int, 4)}
	c := &consumer{t: t, delay: 5 * time.Millisecond, stopped: &stopped}
	st := NewStage[frame]()

	require.NoError(t, Run[frame](st, p, c))
	stopped.Store(true)

	assert.Len(t, c.ticks, 5, "the last published snapshot is consumed before stopping")
	assert.Zero(t, c.lateRuns)
	_, ok, err := st.Next()
	assert.NoError(t, err)
	assert.False(t, ok, "no cycle runs after the stop")
}

func TestRunConsumerError(t *testing.T) {
	p := &producer{ticks: 100, buf: make([]int, 4)}
	c := &consumer{t: t, fail: 3}
	st := NewStage[frame]()

	err := Run[frame](st, p, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Equal(t, []int{1, 2}, c.ticks)
}

func TestRunProducerError(t *testing.T) {
	p := &producer{ticks: 100, fail: 4, buf: make([]int, 4)}
	c := &consumer{t: t}
	st := NewStage[frame]()

	err := Run[frame](st, p, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation failed")
	assert.LessOrEqual(t, len(c.ticks), 4)
}

func TestAbortWakesWaiters(t *testing.T) {
	st := NewStage[frame]()
	got := make(chan error)
	go func() {
		_, _, err := st.Next()
		got <- err
	}()
	time.Sleep(10 * time.Millisecond)
	st.Abort(nil)
	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrAborted)
	case <-time.After(time.Second):
		t.Fatal("Next not woken by Abort")
	}
	assert.ErrorIs(t, st.Publish(frame{}, nil), ErrAborted)
}
