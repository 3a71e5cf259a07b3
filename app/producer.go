// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"log/slog"

	"cogentcore.org/spacesim/camera"
	"cogentcore.org/spacesim/config"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/overlay"
	"cogentcore.org/spacesim/scene"
)

// Input is the part of the window the producer drives. All of its
// methods are called on the main thread.
type Input interface {

	// Poll processes pending events and hands the tick's input to in.
	Poll(in *camera.InputState)

	// Pump processes pending events while the producer is blocked.
	Pump()

	Extent() gpu.Extent
	ShouldClose() bool
	Close()
	SetCursorFree(free bool)
}

// TuningSource supplies reloaded tuning values, see [config.Watcher].
type TuningSource interface {
	Poll() (config.Tuning, bool)
}

// ShipName is the name of the entity the debug panel rotates.
const ShipName = "spaceship"

// producer advances the simulation one tick at a time on the main
// thread and builds the snapshot of every tick.
type producer struct {
	input  Input
	tuning TuningSource

	scene *scene.Scene
	ship  *scene.Entity

	cam   *camera.Camera
	ctrl  *camera.Controller
	state *camera.InputState
	panel *overlay.Panel

	fov, near, far float32
	aspect         float32

	tick uint64
}

func newProducer(cfg *config.Config, input Input, sc *scene.Scene, ts TuningSource) *producer {
	pr := &producer{
		input:  input,
		tuning: ts,
		scene:  sc,
		ship:   sc.ByName(ShipName),
		cam:    camera.New(),
		ctrl:   camera.NewController(cfg),
		state:  camera.NewInputState(cfg.Tuning),
		panel:  overlay.NewPanel(),
		fov:    cfg.Camera.FovY,
		near:   cfg.Camera.Near,
		far:    cfg.Camera.Far,
	}
	if pr.ship == nil {
		slog.Warn("no entity to rotate from the debug panel", "name", ShipName)
	}
	pr.updateProjection()
	return pr
}

// updateProjection sets the perspective again when the aspect
// ratio of the window changed. A minimized window keeps the last one.
func (pr *producer) updateProjection() {
	ext := pr.input.Extent()
	if ext.IsZero() {
		return
	}
	if a := ext.Aspect(); a != pr.aspect {
		pr.aspect = a
		pr.cam.SetPerspective(pr.fov, a, pr.near, pr.far)
	}
}

// Tick runs one simulation step: input, camera, panel, tuning, snapshot.
func (pr *producer) Tick() (scene.Snapshot, bool, error) {
	if pr.input.ShouldClose() {
		return scene.Snapshot{}, false, nil
	}
	in := pr.state
	wasFree := in.CursorFree
	pr.input.Poll(in)

	pr.ctrl.Update(in, pr.cam)
	if in.CursorFree != wasFree {
		pr.input.SetCursorFree(in.CursorFree)
	}
	if in.CloseRequested {
		pr.input.Close()
		return scene.Snapshot{}, false, nil
	}

	pr.panel.Update(in)
	if pr.ship != nil {
		pr.ship.Transform.Rotation = pr.panel.Rotation()
	}

	if pr.tuning != nil {
		if tn, ok := pr.tuning.Poll(); ok {
			if err := pr.ctrl.ApplyTuning(in, tn); err != nil {
				slog.Error("ignoring reloaded tuning", "err", err)
			}
		}
	}
	pr.updateProjection()

	pr.tick++
	tn := scene.Tuning{Exposure: in.Exposure, Temperature: in.Temperature, ShowShadowMap: in.ShowShadowMap}
	snap := pr.scene.Snapshot(pr.tick, pr.cam.View(), pr.cam.Projection(), pr.cam.Translation, tn, pr.panel.View())
	return snap, true, nil
}

func (pr *producer) Pump() { pr.input.Pump() }
