// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

// AssertionError is the panic value raised by a failed [Assert].
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Msg
}

// Assert halts execution with an [*AssertionError] panic if cond is false.
// Assertions guard programmer contracts and are only checked
// when the program is built with the debug tag; otherwise
// Assert is a no-op.
func Assert(cond bool, msg string) {
	if !Asserts || cond {
		return
	}
	panic(&AssertionError{Msg: msg})
}
