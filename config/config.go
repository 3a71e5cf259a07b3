// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration structs for spacesim,
// their defaults, and loading from an optional TOML file.
package config

import (
	"io/fs"
	"os"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/base/iox/tomlx"
	"github.com/jinzhu/copier"
	"github.com/mitchellh/go-homedir"
)

// FileName is the name of the configuration file looked up
// in the working directory.
const FileName = "spacesim.toml"

// UserFile is the per-user configuration file, used when there
// is no [FileName] in the working directory.
const UserFile = "~/.config/spacesim/spacesim.toml"

// Config is the main config struct that contains all of
// the configuration options for spacesim.
type Config struct {

	// the main window
	Window Window

	// asset and shader locations
	Assets Assets

	// frame pipeline options
	Render Render

	// camera projection and movement
	Camera Camera

	// values adjustable at runtime, reloaded when the file changes
	Tuning Tuning

	// logging
	Log Log
}

// Window has the settings of the main window.
type Window struct {
	Title  string
	Width  int
	Height int
}

// Assets has the locations of the scene manifest, models, textures and shaders.
type Assets struct {

	// the directory all other asset paths are relative to
	Root string

	// the scene manifest, relative to Root
	Manifest string

	// the directory holding compiled SPIR-V shaders
	Shaders string
}

// Render has the settings of the frame pipeline and the Vulkan device.
type Render struct {

	// number of frame slots, each with its own command buffer,
	// semaphores and in-flight fence
	FlightCount int

	// color the frame is cleared to
	ClearColor [3]float32

	// whether to enable the Khronos validation layer
	Validation bool
}

// Camera has the projection and movement settings of the camera.
type Camera struct {

	// vertical field of view in degrees
	FovY float32

	Near float32
	Far  float32

	// degrees of rotation per pixel of cursor movement
	MouseSensitivity float32

	// units moved per tick while a movement key is held
	MoveStep float32

	// degrees rolled per tick while Q or E is held
	RollStep float32
}

// Tuning has the shading values adjustable at runtime and the
// per-tick steps the keys change them by. It is reloaded by [Watch].
type Tuning struct {
	Exposure        float32
	Temperature     float32
	ExposureStep    float32
	TemperatureStep float32
}

// Log has the logging settings.
type Log struct {

	// debug, info, warn or error; empty keeps the build default
	Level string
}

// Defaults returns a new [Config] with default values.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

// Defaults sets all fields to their default values.
func (cfg *Config) Defaults() {
	cfg.Window = Window{Title: "Space Sim", Width: 1600, Height: 900}
	cfg.Assets = Assets{Root: "assets", Manifest: "scene.yaml", Shaders: "shaders/spv"}
	cfg.Render = Render{FlightCount: 2, ClearColor: [3]float32{0.01, 0.01, 0.01}}
	cfg.Camera = Camera{FovY: 25, Near: 1, Far: 100, MouseSensitivity: 0.05, MoveStep: 0.1, RollStep: 0.5}
	cfg.Tuning = Tuning{Exposure: 3, Temperature: 5778, ExposureStep: 0.01, TemperatureStep: 50}
}

// Validate returns an error describing the first invalid value.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Window.Width <= 0 || cfg.Window.Height <= 0:
		return errors.Errorf("config: window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height)
	case cfg.Render.FlightCount < 1:
		return errors.Errorf("config: flight count %d must be at least 1", cfg.Render.FlightCount)
	case cfg.Camera.Near <= 0 || cfg.Camera.Far <= cfg.Camera.Near:
		return errors.Errorf("config: camera planes near=%g far=%g are invalid", cfg.Camera.Near, cfg.Camera.Far)
	case cfg.Camera.FovY <= 0 || cfg.Camera.FovY >= 180:
		return errors.Errorf("config: field of view %g must be in (0, 180)", cfg.Camera.FovY)
	}
	return nil
}

// Merge copies the non-zero values of from onto tn.
func (tn *Tuning) Merge(from Tuning) error {
	return errors.Wrap(copier.CopyWithOption(tn, &from, copier.Option{IgnoreEmpty: true}))
}

// Paths returns the candidate configuration files in lookup order.
func Paths() []string {
	paths := []string{FileName}
	// without a home directory only the working directory is searched
	if up := errors.Log1(homedir.Expand(UserFile)); up != "" {
		paths = append(paths, up)
	}
	return paths
}

// Load returns the defaults overlaid with the first existing file
// from [Paths], and the name of that file ("" if none exists).
// A missing file is not an error; a malformed one is.
func Load() (*Config, string, error) {
	cfg := Defaults()
	for _, fn := range Paths() {
		err := Open(cfg, fn)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fn, err
		}
		return cfg, fn, cfg.Validate()
	}
	return cfg, "", cfg.Validate()
}

// Open overlays the values in the given TOML file onto cfg.
func Open(cfg *Config, filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return errors.Wrap(err)
	}
	if err := tomlx.Open(cfg, filename); err != nil {
		return errors.Errorf("config: %s: %w", filename, err)
	}
	return nil
}
