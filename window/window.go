// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd

// Package window is the glfw window presented to. Events are pumped
// on the main thread by the producer; the extent, resize and close
// state are also read by the presentation thread and kept in atomics.
package window

import (
	"log/slog"
	"sync/atomic"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/camera"
	"cogentcore.org/spacesim/config"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/render"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// keys maps the glfw keys the controller reacts to.
var keys = map[glfw.Key]camera.Key{
	glfw.KeyW:         camera.KeyW,
	glfw.KeyA:         camera.KeyA,
	glfw.KeyS:         camera.KeyS,
	glfw.KeyD:         camera.KeyD,
	glfw.KeySpace:     camera.KeySpace,
	glfw.KeyLeftShift: camera.KeyLeftShift,
	glfw.KeyQ:         camera.KeyQ,
	glfw.KeyE:         camera.KeyE,
	glfw.KeyO:         camera.KeyO,
	glfw.KeyP:         camera.KeyP,
	glfw.KeyR:         camera.KeyR,
	glfw.KeyT:         camera.KeyT,
	glfw.KeyM:         camera.KeyM,
	glfw.KeyI:         camera.KeyI,
	glfw.KeyEscape:    camera.KeyEscape,
}

// Window is a glfw window without a client API, for Vulkan.
type Window struct {
	Glw *glfw.Window

	events camera.Events

	// framebuffer size in pixels
	size size

	resized atomic.Bool
	closing atomic.Bool
}

var _ render.Window = (*Window)(nil)

// New opens the window with the cursor captured for mouse look.
// IMPORTANT: must be called on the main initial thread!
func New(cfg config.Window) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, errors.Errorf("window: %w", err)
	}
	w := &Window{Glw: glw}
	fw, fh := glw.GetFramebufferSize()
	w.setSize(fw, fh)

	glw.SetFramebufferSizeCallback(w.fbResized)
	glw.SetCloseCallback(w.closeRequested)
	glw.SetKeyCallback(w.keyEvent)
	glw.SetMouseButtonCallback(w.mouseButtonEvent)
	glw.SetCursorPosCallback(w.cursorPosEvent)
	w.SetCursorFree(false)
	slog.Info("opened window", "title", cfg.Title, "width", fw, "height", fh)
	return w, nil
}

func (w *Window) setSize(width, height int) {
	w.size.Store(width, height)
	w.events.Size(width, height)
}

func (w *Window) fbResized(_ *glfw.Window, width, height int) {
	w.setSize(width, height)
	w.resized.Store(true)
}

func (w *Window) closeRequested(_ *glfw.Window) {
	w.closing.Store(true)
}

func (w *Window) keyEvent(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	k, ok := keys[key]
	if !ok || action == glfw.Repeat {
		return
	}
	w.events.Key(k, action == glfw.Press)
}

func (w *Window) mouseButtonEvent(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button == glfw.MouseButtonLeft {
		w.events.Mouse(action == glfw.Press)
	}
}

// cursorPosEvent converts the cursor from screen to framebuffer coordinates.
func (w *Window) cursorPosEvent(glw *glfw.Window, x, y float64) {
	sx, sy := 1.0, 1.0
	if ww, wh := glw.GetSize(); ww > 0 && wh > 0 {
		fb := w.size.Load()
		sx = float64(fb.Width) / float64(ww)
		sy = float64(fb.Height) / float64(wh)
	}
	w.events.Pointer(float32(x*sx), float32(y*sy))
}

// Extent returns the framebuffer size, zero while minimized.
func (w *Window) Extent() gpu.Extent {
	return w.size.Load()
}

// WasResized reports whether the framebuffer was resized since the
// last [Window.ResetResized].
func (w *Window) WasResized() bool { return w.resized.Load() }

func (w *Window) ResetResized() { w.resized.Store(false) }

// ShouldClose reports whether closing was requested.
func (w *Window) ShouldClose() bool { return w.closing.Load() }

// Close requests the window to close.
func (w *Window) Close() {
	w.closing.Store(true)
}

// Pump processes pending window events. Input accumulates until the
// next [Window.Poll].
func (w *Window) Pump() {
	glfw.PollEvents()
}

// Poll processes pending window events and hands the input gathered
// since the previous poll to in.
func (w *Window) Poll(in *camera.InputState) {
	glfw.PollEvents()
	w.events.Apply(in)
}

// SetCursorFree releases the cursor for the debug panel, or captures
// it for mouse look.
func (w *Window) SetCursorFree(free bool) {
	mode := glfw.CursorDisabled
	if free {
		mode = glfw.CursorNormal
	}
	w.Glw.SetInputMode(glfw.CursorMode, mode)
}

// Destroy destroys the glfw window.
func (w *Window) Destroy() {
	if w.Glw != nil {
		w.Glw.Destroy()
		w.Glw = nil
	}
}
