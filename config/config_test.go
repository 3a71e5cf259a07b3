// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"cogentcore.org/spacesim/base/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "Space Sim", cfg.Window.Title)
	assert.Equal(t, 1600, cfg.Window.Width)
	assert.Equal(t, 900, cfg.Window.Height)
	assert.Equal(t, 2, cfg.Render.FlightCount)
	assert.Equal(t, float32(25), cfg.Camera.FovY)
	assert.Equal(t, float32(3), cfg.Tuning.Exposure)
	assert.Equal(t, float32(5778), cfg.Tuning.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Render.FlightCount = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Camera.Far = cfg.Camera.Near
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Window.Height = 0
	assert.Error(t, cfg.Validate())
}

func TestOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(fn, []byte("[Window]\nWidth = 800\n\n[Tuning]\nExposure = 1.5\n"), 0o644))

	cfg := Defaults()
	require.NoError(t, Open(cfg, fn))
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 900, cfg.Window.Height)
	assert.Equal(t, float32(1.5), cfg.Tuning.Exposure)
	assert.Equal(t, float32(5778), cfg.Tuning.Temperature)

	err := Open(cfg, filepath.Join(t.TempDir(), "none.toml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[Window\n"), 0o644))
	assert.Error(t, Open(cfg, bad))
}

func TestPaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("home directory comes from USERPROFILE on windows")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	assert.Equal(t, []string{FileName, filepath.Join(home, ".config", "spacesim", FileName)}, Paths())
}

func TestMerge(t *testing.T) {
	tn := Defaults().Tuning
	require.NoError(t, tn.Merge(Tuning{Temperature: 4000}))
	assert.Equal(t, float32(4000), tn.Temperature)
	assert.Equal(t, float32(3), tn.Exposure)
	assert.Equal(t, float32(50), tn.TemperatureStep)
}

func TestWatch(t *testing.T) {
	fn := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(fn, []byte("[Tuning]\nExposure = 2\n"), 0o644))

	w, err := Watch(fn)
	require.NoError(t, err)
	defer w.Close()

	_, ok := w.Poll()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(fn, []byte("[Tuning]\nExposure = 4.5\n"), 0o644))
	// truncation can deliver an empty reload before the final one
	timeout := time.After(5 * time.Second)
	for {
		select {
		case tn := <-w.updates:
			if tn.Exposure != 4.5 {
				continue
			}
			assert.Zero(t, tn.Temperature)
			return
		case <-timeout:
			t.Fatal("no reload after writing the file")
		}
	}
}
