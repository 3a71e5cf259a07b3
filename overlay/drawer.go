// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overlay

import (
	"image"
	"path/filepath"
	"unsafe"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/render"
	"cogentcore.org/spacesim/scene"
	"cogentcore.org/spacesim/vgpu"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// Shader file names under the shader directory.
const (
	FillVertex   = "fill.vert.spv"
	FillFragment = "fill.frag.spv"
)

// Colors of the panel parts.
var (
	Background = mgl32.Vec4{0.1, 0.1, 0.12, 0.8}
	TrackColor = mgl32.Vec4{0.3, 0.3, 0.35, 1}
	FillColor  = mgl32.Vec4{0.26, 0.59, 0.98, 1}
	DragColor  = mgl32.Vec4{0.4, 0.7, 1, 1}
)

// Rect is one filled rectangle, in normalized device coordinates,
// and the push constant block of the fill pipeline.
type Rect struct {
	Min   mgl32.Vec2
	Max   mgl32.Vec2
	Color mgl32.Vec4
}

// ndc maps a rectangle in window pixels to normalized device coordinates.
// Vulkan's Y axis points down, like the window's.
func ndc(r image.Rectangle, extent gpu.Extent, color mgl32.Vec4) Rect {
	w, h := float32(extent.Width), float32(extent.Height)
	return Rect{
		Min:   mgl32.Vec2{2*float32(r.Min.X)/w - 1, 2*float32(r.Min.Y)/h - 1},
		Max:   mgl32.Vec2{2*float32(r.Max.X)/w - 1, 2*float32(r.Max.Y)/h - 1},
		Color: color,
	}
}

// Rects returns the rectangles of the panel in drawing order: the
// background, then per slider its track and its filled part.
func Rects(panel scene.Panel, extent gpu.Extent) []Rect {
	if !panel.Visible || extent.IsZero() || len(panel.Sliders) == 0 {
		return nil
	}
	rects := []Rect{ndc(Bounds(len(panel.Sliders)), extent, Background)}
	for i, s := range panel.Sliders {
		tr := Track(i)
		rects = append(rects, ndc(tr, extent, TrackColor))
		fill := tr
		fill.Max.X = tr.Min.X + int(s.Fraction()*float32(tr.Dx()))
		if fill.Empty() {
			continue
		}
		c := FillColor
		if s.Active {
			c = DragColor
		}
		rects = append(rects, ndc(fill, extent, c))
	}
	return rects
}

// Drawer records the panel with its own alpha blended pipeline, one
// draw of six generated vertices per rectangle.
type Drawer struct {
	dev        *vgpu.Device
	vert, frag []byte
	pipeline   *vgpu.Pipeline
	extent     gpu.Extent
}

var _ render.Overlay = (*Drawer)(nil)

// NewDrawer reads the fill shaders in shaderDir. The pipeline is built
// by [Drawer.Rebuild].
func NewDrawer(dev *vgpu.Device, shaderDir string) (*Drawer, error) {
	dw := &Drawer{dev: dev}
	var err error
	if dw.vert, err = vgpu.OpenShader(filepath.Join(shaderDir, FillVertex)); err != nil {
		return nil, err
	}
	if dw.frag, err = vgpu.OpenShader(filepath.Join(shaderDir, FillFragment)); err != nil {
		return nil, err
	}
	return dw, nil
}

func fillConfig(vert, frag []byte) *vgpu.PipelineConfig {
	return &vgpu.PipelineConfig{
		Name:         "overlay",
		Vertex:       vert,
		Fragment:     frag,
		PushSize:     uint32(unsafe.Sizeof(Rect{})),
		CullMode:     vk.CullModeNone,
		FrontFace:    vk.FrontFaceCounterClockwise,
		DepthCompare: vk.CompareOpAlways,
		AlphaBlend:   true,
	}
}

// Rebuild builds the pipeline again for the render pass of sc and
// records its extent.
func (dw *Drawer) Rebuild(sc render.Swapchain) error {
	vs, ok := sc.(*vgpu.Swapchain)
	if !ok {
		return errors.Errorf("overlay: swapchain %T is not a vgpu swapchain", sc)
	}
	if dw.pipeline != nil {
		dw.pipeline.Destroy()
		dw.pipeline = nil
	}
	pl, err := vgpu.NewPipeline(dw.dev, vs.RenderPass, fillConfig(dw.vert, dw.frag))
	if err != nil {
		return err
	}
	dw.pipeline = pl
	dw.extent = vs.Extent()
	return nil
}

// Record draws the snapshot's panel. It runs inside the open render pass.
func (dw *Drawer) Record(cmd gpu.Commands, snap *scene.Snapshot) {
	rects := Rects(snap.Panel, dw.extent)
	if len(rects) == 0 || dw.pipeline == nil {
		return
	}
	c := vgpu.VkCmd(cmd)
	dw.pipeline.Bind(c)
	for i := range rects {
		vgpu.Push(c, dw.pipeline, &rects[i])
		vk.CmdDraw(c, 6, 1, 0, 0)
	}
}

// Destroy destroys the pipeline.
func (dw *Drawer) Destroy() {
	if dw.pipeline != nil {
		dw.pipeline.Destroy()
		dw.pipeline = nil
	}
}
