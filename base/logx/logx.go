// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx sets up the default [slog] logger with a
// terminal-coloured handler and a user-selected verbosity level.
package logx

import (
	"log/slog"
	"os"
	"strings"
)

// UserLevel is the verbosity [slog.Level] that the user has selected for
// what logging messages should be shown. Messages at levels at or above
// this level will be shown. The default depends on build tags: debug
// builds show everything, release builds only warnings and errors.
var UserLevel = defaultUserLevel

// SetDefaultLogger sets the default logger to a [Handler] writing
// to standard error at [UserLevel].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// LevelFromString parses a level name as written in configuration
// files (debug, info, warn, error). The empty string and unknown
// names return ok == false.
func LevelFromString(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return UserLevel, false
}
