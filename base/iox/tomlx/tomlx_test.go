// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tomlx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	Title  string
	Width  int
	Height int
}

func TestRead(t *testing.T) {
	var w window
	require.NoError(t, Read(&w, strings.NewReader("Title = 'Space Sim'\nWidth = 1600\nHeight = 900\n")))
	assert.Equal(t, window{"Space Sim", 1600, 900}, w)

	assert.Error(t, Read(&w, strings.NewReader("Width = [\n")))
}

func TestOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "win.toml")
	require.NoError(t, os.WriteFile(fn, []byte("Title = \"a\"\nWidth = 1\nHeight = 2\n"), 0o644))
	var out window
	require.NoError(t, Open(&out, fn))
	assert.Equal(t, window{"a", 1, 2}, out)

	assert.Error(t, Open(&out, filepath.Join(t.TempDir(), "missing.toml")))
}
