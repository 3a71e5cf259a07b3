// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"testing"
	"unsafe"

	"cogentcore.org/spacesim/camera"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanel(t *testing.T) {
	p := NewPanel()
	require.Len(t, p.Sliders, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 180}, p.Rotation())
	assert.Equal(t, "Rotation Z", p.Sliders[2].Label)
}

// pointerOn returns input with the pointer at fraction f of the track of slider i.
func pointerOn(i int, f float32) *camera.InputState {
	tr := Track(i)
	return &camera.InputState{
		CursorFree: true,
		MouseHeld:  true,
		PointerX:   float32(tr.Min.X) + f*float32(tr.Dx()),
		PointerY:   float32(tr.Min.Y+tr.Max.Y) / 2,
	}
}

func TestDrag(t *testing.T) {
	p := NewPanel()
	in := pointerOn(1, 0.25)
	in.MousePressed = true
	p.Update(in)
	assert.InDelta(t, 90, p.Rotation()[1], 1e-3)
	assert.True(t, p.Sliders[1].Active)

	// the drag follows the pointer off the row and clamps
	in.MousePressed = false
	in.PointerX = 10000
	in.PointerY = 10000
	p.Update(in)
	assert.InDelta(t, 360, p.Rotation()[1], 1e-3)

	in.MouseHeld = false
	p.Update(in)
	assert.False(t, p.Sliders[1].Active)
	assert.InDelta(t, 360, p.Rotation()[1], 1e-3)
}

func TestDragNeedsPressAndFreeCursor(t *testing.T) {
	p := NewPanel()
	in := pointerOn(0, 0.5)
	p.Update(in)
	assert.Equal(t, float32(0), p.Rotation()[0], "held without a press does nothing")

	in.MousePressed = true
	in.CursorFree = false
	p.Update(in)
	assert.Equal(t, float32(0), p.Rotation()[0], "captured cursor does nothing")

	in = pointerOn(0, 0.5)
	in.MousePressed = true
	in.PointerX = float32(Left + Width + 50)
	p.Update(in)
	assert.Equal(t, mgl32.Vec3{0, 0, 180}, p.Rotation(), "press outside the panel")
}

func TestViewCopies(t *testing.T) {
	p := NewPanel()
	v := p.View()
	assert.True(t, v.Visible)
	v.Sliders[0].Value = 42
	assert.Equal(t, float32(0), p.Sliders[0].Value)
}

func TestRects(t *testing.T) {
	ext := gpu.Extent{Width: 1600, Height: 900}
	p := NewPanel()
	rects := Rects(p.View(), ext)
	// background, three tracks, and fills for the non-zero slider only
	require.Len(t, rects, 5)
	bg := rects[0]
	assert.InDelta(t, 2*float32(Left)/1600-1, bg.Min[0], 1e-6)
	assert.InDelta(t, 2*float32(Top)/900-1, bg.Min[1], 1e-6)
	assert.Equal(t, Background, bg.Color)

	fill := rects[4]
	track := rects[3]
	assert.Equal(t, FillColor, fill.Color)
	assert.Equal(t, track.Min, fill.Min)
	mid := (track.Min[0] + track.Max[0]) / 2
	assert.InDelta(t, mid, fill.Max[0], 0.01, "180 of 360 fills half the track")

	assert.Nil(t, Rects(p.View(), gpu.Extent{}))
	assert.Nil(t, Rects(scene.Panel{}, ext))
}

func TestRectPushSize(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Rect{}))
	cfg := fillConfig(nil, nil)
	assert.Equal(t, uint32(32), cfg.PushSize)
	assert.True(t, cfg.AlphaBlend)
	assert.False(t, cfg.DepthTest)
}

func TestNewDrawerMissingShaders(t *testing.T) {
	_, err := NewDrawer(nil, t.TempDir())
	assert.Error(t, err)
}
