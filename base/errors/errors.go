// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides context-wrapped error handling with
// call stacks, plus helpers for logging, panicking and debug-only
// assertions. It is a drop-in superset of the standard errors package.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is an error with a base error and the call stack
// at the point where it was created.
type Error struct {
	Base  error
	Stack []string
}

// Wrap wraps the given error into an [*Error] carrying the call stack.
// It returns nil if the given error is nil. An error that is already
// an [*Error] is returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{
		Base:  err,
		Stack: callers(),
	}
}

// New returns a new error with the given text, wrapped via [Wrap].
func New(text string) error {
	return &Error{Base: errors.New(text), Stack: callers()}
}

// Errorf returns a new error with the given format and arguments,
// wrapped via [Wrap]. Like [fmt.Errorf] it supports %w.
func Errorf(format string, a ...any) error {
	return &Error{Base: fmt.Errorf(format, a...), Stack: callers()}
}

// Error returns the base error text, followed by the call stack
// when [Debug] is on.
func (e *Error) Error() string {
	res := e.Base.Error()
	if Debug && len(e.Stack) > 0 {
		res += " (" + strings.Join(e.Stack, ": ") + ")"
	}
	return res
}

// Unwrap returns the underlying base error.
func (e *Error) Unwrap() error {
	return e.Base
}

// Is, As, Join and Unwrap forward to the standard library.

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Join(errs ...error) error { return errors.Join(errs...) }

func Unwrap(err error) error { return errors.Unwrap(err) }

// callers formats the stack of the caller of the exported constructor.
func callers() []string {
	frames := Stack()
	res := make([]string, len(frames))
	for i, f := range frames {
		fn := f.Function
		if li := strings.LastIndex(fn, "/"); li >= 0 {
			fn = fn[li+1:]
		}
		res[i] = fmt.Sprintf("%s:%d", fn, f.Line)
	}
	return res
}
