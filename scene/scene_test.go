// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"testing"
	"unsafe"

	"cogentcore.org/spacesim/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type handle struct{ name string }

func (h *handle) Draw(cmd gpu.Commands) {}
func (h *handle) Bind(cmd gpu.Commands) {}

func TestTransformTranslation(t *testing.T) {
	tf := NewTransform(mgl32.Vec3{0, 5, -10})
	m := tf.Mat4(mgl32.Vec3{1, 1, 1})
	assert.True(t, m.Col(3).ApproxEqual(mgl32.Vec4{-1, 4, -11, 1}))
	assert.True(t, m.Mat3().ApproxEqual(mgl32.Ident3()))
}

func TestTransformRotationOrder(t *testing.T) {
	tf := NewTransform(mgl32.Vec3{})
	tf.Rotation = mgl32.Vec3{90, 90, 0}
	m := tf.Mat4(mgl32.Vec3{})

	// Y about -Y first (outermost), then X: the local Y axis is taken by X
	// onto Z, and the -Y rotation carries Z onto -X.
	y := m.Mul4x1(mgl32.Vec4{0, 1, 0, 0})
	want := mgl32.Vec4{-1, 0, 0, 0}
	for i := range want {
		assert.InDelta(t, want[i], y[i], 1e-5, "component %d of %v", i, y)
	}
}

func TestTransformScaleAndNormal(t *testing.T) {
	tf := NewTransform(mgl32.Vec3{})
	tf.Scale = mgl32.Vec3{2, 1, 1}
	m := tf.Mat4(mgl32.Vec3{})
	n := NormalMatrix(m)
	assert.InDelta(t, 0.5, n.At(0, 0), 1e-6)
	assert.InDelta(t, 1, n.At(1, 1), 1e-6)
	assert.InDelta(t, 1, n.At(3, 3), 1e-6)
}

func TestSorted(t *testing.T) {
	sc := New()
	for _, id := range []int{5, 1, 3} {
		sc.Add(&Entity{ID: id})
	}
	var ids []int
	for _, e := range Sorted(sc.Objects) {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{1, 3, 5}, ids)
}

func TestByName(t *testing.T) {
	sc := New()
	sc.Add(&Entity{ID: 0, Name: "spaceship"})
	sc.AddStar(&Entity{ID: 1, Name: "sun"})
	assert.Equal(t, 1, sc.ByName("sun").ID)
	assert.Nil(t, sc.ByName("moon"))
}

func TestNewLights(t *testing.T) {
	stars := []*Entity{
		{Transform: NewTransform(mgl32.Vec3{0, -1, -10})},
		{Transform: NewTransform(mgl32.Vec3{1, 1, 1})},
		{Transform: NewTransform(mgl32.Vec3{2, 2, 2})},
	}
	ls := NewLights(stars, mgl32.Vec3{0, 0, 1}, Tuning{Exposure: 3, Temperature: 5778, ShowShadowMap: true})
	assert.Equal(t, float32(MaxLights), ls.Count)
	assert.Equal(t, mgl32.Vec4{0, -1, -11, 1}, ls.Positions[0])
	assert.Equal(t, LightColor, ls.Colors[1])
	assert.Equal(t, float32(3), ls.Exposure)
	assert.Equal(t, float32(1), ls.ShowShadowMap)

	// std140: arrays of vec4 then four scalars
	assert.Equal(t, uintptr(80), unsafe.Sizeof(ls))
	assert.Equal(t, uintptr(128), unsafe.Sizeof(Globals{}))
}

func TestSliderFraction(t *testing.T) {
	assert.InDelta(t, 0.5, Slider{Value: 180, Max: 360}.Fraction(), 1e-6)
	assert.Equal(t, float32(1), Slider{Value: 400, Max: 360}.Fraction())
	assert.Equal(t, float32(0), Slider{Value: 1}.Fraction())
}

func TestSnapshot(t *testing.T) {
	sc := New()
	ship := &Entity{ID: 2, Transform: NewTransform(mgl32.Vec3{0, 5, -10}), Mesh: &handle{}, Material: &handle{}}
	sun := &Entity{ID: 1, Transform: NewTransform(mgl32.Vec3{0, -1, -10}), Mesh: &handle{}, Material: &handle{}}
	sc.Add(ship)
	sc.AddStar(sun)
	sc.Skybox = &handle{"sky"}

	proj := mgl32.Perspective(1, 1, 1, 100)
	snap := sc.Snapshot(7, mgl32.Ident4(), proj, mgl32.Vec3{}, Tuning{Exposure: 3}, Panel{})
	assert.Equal(t, uint64(7), snap.Tick)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 2, snap.Items[0].ID, "objects are drawn before stars")
	assert.Equal(t, 1, snap.Items[1].ID)
	assert.Equal(t, float32(1), snap.Lights.Count)
	assert.Equal(t, float32(SkyboxScale), snap.SkyboxModel.At(0, 0))
	assert.Equal(t, proj, snap.Globals().ProjView)
}

func TestSnapshotClone(t *testing.T) {
	snap := Snapshot{
		Items: []DrawItem{{ID: 1}, {ID: 2}},
		Panel: Panel{Sliders: []Slider{{Label: "Rotation X", Value: 10}}},
	}
	c := snap.Clone()
	snap.Items[0].ID = 99
	snap.Panel.Sliders[0].Value = 20
	assert.Equal(t, 1, c.Items[0].ID)
	assert.Equal(t, float32(10), c.Panel.Sliders[0].Value)
}
