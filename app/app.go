// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd

// Package app wires the window, the Vulkan device, the drawers and the
// scene into the two loops of the simulator: the producer on the main
// thread and the presentation loop on its own locked thread.
package app

import (
	"log/slog"
	"path/filepath"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/config"
	"cogentcore.org/spacesim/handoff"
	"cogentcore.org/spacesim/loader"
	"cogentcore.org/spacesim/overlay"
	"cogentcore.org/spacesim/render"
	"cogentcore.org/spacesim/scene"
	"cogentcore.org/spacesim/vgpu"
	"cogentcore.org/spacesim/vpbr"
	"cogentcore.org/spacesim/window"
)

// App owns every resource of a running simulator.
type App struct {
	Config *config.Config

	Window  *window.Window
	GPU     *vgpu.GPU
	Device  *vgpu.Device
	Drawer  *vpbr.Drawer
	Overlay *overlay.Drawer
	Scene   *scene.Scene

	seq     *render.Sequencer
	watcher *config.Watcher
	glfw    bool
}

// drawers rebuilds the overlay pipeline along with the scene pipelines,
// since the sequencer only rebuilds its drawer on swapchain recreation.
type drawers struct {
	*vpbr.Drawer
	overlay *overlay.Drawer
}

func (d drawers) Rebuild(sc render.Swapchain) error {
	if err := d.Drawer.Rebuild(sc); err != nil {
		return err
	}
	return d.overlay.Rebuild(sc)
}

// presenter is the consumer side: one presentation cycle per snapshot.
type presenter struct {
	seq *render.Sequencer
}

func (p presenter) Consume(snap scene.Snapshot) error {
	return p.seq.Render(&snap)
}

// New opens the window, brings up the device and the drawers, and
// loads the scene. configFile is the file tuning values are reloaded
// from, or "" for none. On error, everything made so far is destroyed.
// IMPORTANT: must be called on the main initial thread!
func New(cfg *config.Config, configFile string) (ap *App, err error) {
	ap = &App{Config: cfg}
	defer func() {
		if err != nil {
			ap.Destroy()
			ap = nil
		}
	}()

	if err = vgpu.Init(); err != nil {
		return
	}
	ap.glfw = true
	if ap.Window, err = window.New(cfg.Window); err != nil {
		return
	}
	if ap.GPU, err = vgpu.NewGPU(cfg.Window.Title, vgpu.WindowExtensions(ap.Window.Glw), cfg.Render.Validation); err != nil {
		return
	}
	surface, err := vgpu.NewSurface(ap.GPU, ap.Window.Glw)
	if err != nil {
		return
	}
	if ap.Device, err = vgpu.NewDevice(ap.GPU, surface, cfg.Render.FlightCount); err != nil {
		return
	}
	if ap.Drawer, err = vpbr.NewDrawer(ap.Device, cfg.Assets.Shaders); err != nil {
		return
	}
	if ap.Overlay, err = overlay.NewDrawer(ap.Device, cfg.Assets.Shaders); err != nil {
		return
	}

	mf, err := loader.OpenManifest(filepath.Join(cfg.Assets.Root, cfg.Assets.Manifest))
	if err != nil {
		return
	}
	if ap.Scene, err = loader.New(cfg.Assets.Root, ap.Drawer).LoadScene(mf); err != nil {
		return
	}

	if ap.seq, err = render.New(ap.Device, ap.Window, drawers{ap.Drawer, ap.Overlay}, ap.Overlay); err != nil {
		return
	}
	cc := cfg.Render.ClearColor
	ap.seq.Clear.Color = [4]float32{cc[0], cc[1], cc[2], 1}

	if configFile != "" {
		// a missing watcher only loses live reloading
		if ap.watcher, err = config.Watch(configFile); err != nil {
			slog.Warn("not watching config file", "file", configFile, "err", err)
			err = nil
		}
	}
	return
}

// Run runs the simulator until the window is closed or either loop fails,
// then waits for the device to be idle.
// IMPORTANT: must be called on the main initial thread!
func (ap *App) Run() error {
	var ts TuningSource
	if ap.watcher != nil {
		ts = ap.watcher
	}
	pr := newProducer(ap.Config, ap.Window, ap.Scene, ts)
	st := handoff.NewStage[scene.Snapshot]()
	err := handoff.Run(st, pr, presenter{ap.seq})
	slog.Info("simulation stopped", "ticks", pr.tick, "recreations", ap.seq.Recreations(), "dropped", ap.seq.Dropped())
	return errors.Join(err, ap.Device.WaitIdle())
}

// Destroy releases everything in reverse order of creation.
// The device must be idle.
func (ap *App) Destroy() {
	if ap.watcher != nil {
		errors.Log(ap.watcher.Close())
		ap.watcher = nil
	}
	if ap.seq != nil {
		ap.seq.Destroy()
		ap.seq = nil
	}
	if ap.Overlay != nil {
		ap.Overlay.Destroy()
		ap.Overlay = nil
	}
	if ap.Drawer != nil {
		ap.Drawer.Destroy()
		ap.Drawer = nil
	}
	if ap.Device != nil {
		ap.Device.Destroy()
		ap.Device = nil
	}
	if ap.GPU != nil {
		ap.GPU.Destroy()
		ap.GPU = nil
	}
	if ap.Window != nil {
		ap.Window.Destroy()
		ap.Window = nil
	}
	if ap.glfw {
		vgpu.Terminate()
		ap.glfw = false
	}
}
