// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	err := Wrap(fs.ErrNotExist)
	var e *Error
	assert.True(t, As(err, &e))
	assert.True(t, Is(err, fs.ErrNotExist))
	assert.NotEmpty(t, e.Stack)
	assert.Contains(t, e.Stack[0], "TestWrap")

	assert.Same(t, err, Wrap(err))
}

func TestErrorf(t *testing.T) {
	err := Errorf("opening %q: %w", "ship.obj", fs.ErrNotExist)
	assert.True(t, Is(err, fs.ErrNotExist))
	if !Debug {
		assert.Equal(t, `opening "ship.obj": file does not exist`, err.Error())
	}
}

func TestLog(t *testing.T) {
	assert.NoError(t, Log(nil))
	err := New("logged")
	assert.Same(t, err, Log(err))
	assert.Equal(t, 5, Log1(5, nil))
	assert.Equal(t, "partial", Log1("partial", err))
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "fine") })
	if Asserts {
		assert.PanicsWithError(t, "assertion failed: frame already started", func() {
			Assert(false, "frame already started")
		})
	} else {
		assert.NotPanics(t, func() { Assert(false, "compiled out") })
	}
}
