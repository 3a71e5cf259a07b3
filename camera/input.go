// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

import (
	"log/slog"

	"cogentcore.org/spacesim/config"
	"github.com/go-gl/mathgl/mgl32"
)

// Key is a keyboard key the controller reacts to.
type Key int32

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyLeftShift
	KeyQ
	KeyE
	KeyO
	KeyP
	KeyR
	KeyT
	KeyM
	KeyI
	KeyEscape

	KeysN
)

// InputState is the input for one tick. It is owned by the producer:
// the window fills in the held and pressed keys and the cursor, the
// [Controller] reads them and updates the toggles and tuning values.
type InputState struct {

	// keys currently held down
	Held [KeysN]bool

	// keys that went down since the previous tick
	Pressed [KeysN]bool

	// cursor position relative to the window center
	CursorX, CursorY float32

	// cursor position in window pixels from the top left corner
	PointerX, PointerY float32

	// left mouse button held, and pressed since the previous tick
	MouseHeld, MousePressed bool

	// whether the cursor is released for the debug panel,
	// which freezes mouse look
	CursorFree bool

	Exposure      float32
	Temperature   float32
	ShowShadowMap bool

	CloseRequested bool
}

// NewInputState returns the initial input state for the given tuning.
func NewInputState(tn config.Tuning) *InputState {
	return &InputState{Exposure: tn.Exposure, Temperature: tn.Temperature}
}

// ClearPressed resets the per-tick pressed keys.
func (in *InputState) ClearPressed() {
	in.Pressed = [KeysN]bool{}
	in.MousePressed = false
}

// Controller maps the input state to camera movement and tuning changes.
type Controller struct {
	Camera config.Camera
	Tuning config.Tuning
}

// NewController returns a controller using the given configuration.
func NewController(cfg *config.Config) *Controller {
	return &Controller{Camera: cfg.Camera, Tuning: cfg.Tuning}
}

// Update applies one tick of input to the camera and the input state.
func (ct *Controller) Update(in *InputState, cam *Camera) {
	if in.Pressed[KeyEscape] {
		in.CloseRequested = true
	}
	if in.Pressed[KeyM] {
		in.ShowShadowMap = !in.ShowShadowMap
	}
	if in.Pressed[KeyI] {
		in.CursorFree = !in.CursorFree
	}

	moves := []struct {
		key  Key
		sign float32
		axis mgl32.Vec3
	}{
		{KeyW, -1, cam.Front},
		{KeyS, 1, cam.Front},
		{KeyA, -1, cam.Right},
		{KeyD, 1, cam.Right},
		{KeySpace, -1, cam.Up},
		{KeyLeftShift, 1, cam.Up},
	}
	for _, mv := range moves {
		if in.Held[mv.key] {
			cam.Translation = cam.Translation.Add(mv.axis.Mul(mv.sign * ct.Camera.MoveStep))
		}
	}

	if in.Held[KeyQ] {
		cam.Rotate(ct.Camera.RollStep, cam.Front)
	}
	if in.Held[KeyE] {
		cam.Rotate(-ct.Camera.RollStep, cam.Front)
	}

	if in.Held[KeyO] {
		in.Exposure -= ct.Tuning.ExposureStep
		slog.Debug("exposure", "value", in.Exposure)
	}
	if in.Held[KeyP] {
		in.Exposure += ct.Tuning.ExposureStep
		slog.Debug("exposure", "value", in.Exposure)
	}
	if in.Held[KeyT] {
		in.Temperature += ct.Tuning.TemperatureStep
		slog.Debug("temperature", "value", in.Temperature)
	}
	if in.Held[KeyR] {
		in.Temperature -= ct.Tuning.TemperatureStep
		slog.Debug("temperature", "value", in.Temperature)
	}

	cam.Sensitivity = ct.Camera.MouseSensitivity
	cam.Look(in.CursorX, in.CursorY, in.CursorFree)
}

// ApplyTuning merges reloaded tuning values: non-zero exposure and
// temperature replace the live values, non-zero steps replace the steps.
func (ct *Controller) ApplyTuning(in *InputState, tn config.Tuning) error {
	if err := ct.Tuning.Merge(tn); err != nil {
		return err
	}
	if tn.Exposure != 0 {
		in.Exposure = tn.Exposure
	}
	if tn.Temperature != 0 {
		in.Temperature = tn.Temperature
	}
	slog.Info("tuning applied", "exposure", in.Exposure, "temperature", in.Temperature)
	return nil
}
