// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	l, ok := LevelFromString(" Debug ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, l)
	l, ok = LevelFromString("warning")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, l)
	_, ok = LevelFromString("")
	assert.False(t, ok)
}

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(NewHandler(&buf, slog.LevelInfo))
	lg.Debug("hidden")
	lg.With("frame", 1).WithGroup("swapchain").Info("recreated", "images", 2)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "recreated")
	assert.Contains(t, out, "frame")
	assert.Contains(t, out, "swapchain.images")
}

func TestDefaultLogger(t *testing.T) {
	UserLevel = slog.LevelDebug
	SetDefaultLogger()

	slog.Debug("this is debug")
	slog.Info("this is info")
	slog.Warn("this is warn")
}
