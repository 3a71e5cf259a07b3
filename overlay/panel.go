// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overlay provides the debug panel drawn over the scene:
// sliders for the rotation of the spaceship, dragged with the mouse
// while the cursor is free, and a drawer that records the panel
// inside the frame's render pass.
package overlay

import (
	"image"

	"cogentcore.org/spacesim/camera"
	"cogentcore.org/spacesim/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Panel geometry, in window pixels.
const (
	Left     = 16
	Top      = 16
	Width    = 320
	RowH     = 28
	Padding  = 8
	TrackH   = 12
	sliderN  = 3
	maxAngle = 360
)

// Panel is the debug panel state owned by the producer.
type Panel struct {
	Sliders []scene.Slider

	// index of the slider being dragged, or -1
	active int
}

// NewPanel returns the panel with the rotation sliders at their
// initial values: 0, 0 and 180 degrees about X, Y and Z.
func NewPanel() *Panel {
	return &Panel{
		Sliders: []scene.Slider{
			{Label: "Rotation X", Value: 0, Min: 0, Max: maxAngle},
			{Label: "Rotation Y", Value: 0, Min: 0, Max: maxAngle},
			{Label: "Rotation Z", Value: 180, Min: 0, Max: maxAngle},
		},
		active: -1,
	}
}

// Bounds returns the rectangle of the whole panel for n sliders.
func Bounds(n int) image.Rectangle {
	return image.Rect(Left, Top, Left+Width, Top+2*Padding+n*RowH)
}

// Track returns the rectangle of the track of slider i.
func Track(i int) image.Rectangle {
	y := Top + Padding + i*RowH + (RowH-TrackH)/2
	return image.Rect(Left+Padding, y, Left+Width-Padding, y+TrackH)
}

// hit returns the slider whose row contains the pointer, or -1.
func (p *Panel) hit(x, y float32) int {
	pt := image.Pt(int(math32.Floor(x)), int(math32.Floor(y)))
	for i := range p.Sliders {
		tr := Track(i)
		row := image.Rect(tr.Min.X, Top+Padding+i*RowH, tr.Max.X, Top+Padding+(i+1)*RowH)
		if pt.In(row) {
			return i
		}
	}
	return -1
}

// Update applies one tick of mouse input. A press on a slider row with
// the cursor free starts a drag, which follows the pointer until the
// button is released or the cursor is captured again.
func (p *Panel) Update(in *camera.InputState) {
	if !in.CursorFree || !in.MouseHeld {
		p.active = -1
	} else if in.MousePressed {
		p.active = p.hit(in.PointerX, in.PointerY)
	}
	for i := range p.Sliders {
		p.Sliders[i].Active = i == p.active
	}
	if p.active < 0 {
		return
	}
	s := &p.Sliders[p.active]
	tr := Track(p.active)
	f := (in.PointerX - float32(tr.Min.X)) / float32(tr.Dx())
	f = math32.Max(0, math32.Min(1, f))
	s.Value = s.Min + f*(s.Max-s.Min)
}

// Rotation returns the slider values as degrees about X, Y and Z.
func (p *Panel) Rotation() mgl32.Vec3 {
	var r mgl32.Vec3
	for i := range min(len(p.Sliders), sliderN) {
		r[i] = p.Sliders[i].Value
	}
	return r
}

// View returns the panel as drawn in this tick. The sliders are copied.
func (p *Panel) View() scene.Panel {
	return scene.Panel{Visible: true, Sliders: append([]scene.Slider(nil), p.Sliders...)}
}
