// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"slices"

	"cogentcore.org/spacesim/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of lights the lights uniform has room for.
const MaxLights = 2

// SkyboxScale is the scale of the skybox cube around the camera.
const SkyboxScale = 5

// Globals is the per-frame global uniform block (std140): bound at
// set 0 by both graphics pipelines.
type Globals struct {
	ProjView    mgl32.Mat4
	LightMatrix mgl32.Mat4
}

// Lights is the lights uniform block (std140).
type Lights struct {

	// camera-relative light positions, w unused
	Positions [MaxLights]mgl32.Vec4

	// rgb color and intensity in w
	Colors [MaxLights]mgl32.Vec4

	Count         float32
	Exposure      float32
	Temperature   float32
	ShowShadowMap float32
}

// Tuning is the set of runtime-adjustable shading parameters.
type Tuning struct {
	Exposure      float32
	Temperature   float32
	ShowShadowMap bool
}

// LightColor is the color and intensity of every star's light.
var LightColor = mgl32.Vec4{1, 1, 1, 5}

// NewLights returns the lights block for the given stars, in order,
// positioned relative to the camera. Stars beyond [MaxLights] are ignored.
func NewLights(stars []*Entity, camera mgl32.Vec3, tn Tuning) Lights {
	var ls Lights
	n := min(len(stars), MaxLights)
	for i := range n {
		ls.Positions[i] = stars[i].Transform.Translation.Sub(camera).Vec4(1)
		ls.Colors[i] = LightColor
	}
	ls.Count = float32(n)
	ls.Exposure = tn.Exposure
	ls.Temperature = tn.Temperature
	if tn.ShowShadowMap {
		ls.ShowShadowMap = 1
	}
	return ls
}

// Slider is one value of the debug panel.
type Slider struct {
	Label string
	Value float32
	Min   float32
	Max   float32

	// whether the slider is being dragged
	Active bool
}

// Fraction returns the position of Value within [Min, Max] as 0..1.
func (s Slider) Fraction() float32 {
	if s.Max <= s.Min {
		return 0
	}
	return mgl32.Clamp((s.Value-s.Min)/(s.Max-s.Min), 0, 1)
}

// Panel is the state of the debug panel as drawn in one frame.
type Panel struct {
	Visible bool
	Sliders []Slider
}

// DrawItem is one entity to draw in a frame, with its matrices
// precomputed by the producer.
type DrawItem struct {
	ID     int
	Model  mgl32.Mat4
	Normal mgl32.Mat4

	Mesh     Mesh
	Material Material
}

// Draw binds the item's material and draws its mesh.
func (it *DrawItem) Draw(cmd gpu.Commands) {
	it.Material.Bind(cmd)
	it.Mesh.Draw(cmd)
}

// Snapshot is everything the presentation thread needs to draw one
// frame. The producer builds a new one every tick; the published copy
// is read-only for the consumer.
type Snapshot struct {

	// simulation tick that produced the snapshot
	Tick uint64

	View       mgl32.Mat4
	Projection mgl32.Mat4

	// camera position that model matrices are relative to
	Camera mgl32.Vec3

	// draw list in ascending entity ID order
	Items []DrawItem

	Skybox      Drawable
	SkyboxModel mgl32.Mat4

	Lights Lights

	Panel Panel
}

// Globals returns the global uniform block of the snapshot.
func (s *Snapshot) Globals() Globals {
	return Globals{
		ProjView:    s.Projection.Mul4(s.View),
		LightMatrix: mgl32.Ident4(),
	}
}

// Clone returns a deep copy of the snapshot. GPU handles are
// shared, everything else is copied.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Items = slices.Clone(s.Items)
	c.Panel.Sliders = slices.Clone(s.Panel.Sliders)
	return c
}

// Snapshot builds the snapshot of the scene for the given tick, camera
// matrices and position. Objects are drawn before stars, each group in
// ascending ID order.
func (sc *Scene) Snapshot(tick uint64, view, projection mgl32.Mat4, camera mgl32.Vec3, tn Tuning, panel Panel) Snapshot {
	objects := Sorted(sc.Objects)
	stars := Sorted(sc.Stars)
	items := make([]DrawItem, 0, len(objects)+len(stars))
	for _, es := range [][]*Entity{objects, stars} {
		for _, e := range es {
			model := e.Transform.Mat4(camera)
			items = append(items, DrawItem{
				ID:       e.ID,
				Model:    model,
				Normal:   NormalMatrix(model),
				Mesh:     e.Mesh,
				Material: e.Material,
			})
		}
	}
	return Snapshot{
		Tick:        tick,
		View:        view,
		Projection:  projection,
		Camera:      camera,
		Items:       items,
		Skybox:      sc.Skybox,
		SkyboxModel: mgl32.Scale3D(SkyboxScale, SkyboxScale, SkyboxScale),
		Lights:      NewLights(stars, camera, tn),
		Panel:       panel,
	}
}
