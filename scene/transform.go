// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the placement of an entity in the world.
type Transform struct {
	Translation mgl32.Vec3

	// Rotation holds the rotation in degrees about the X, Y and Z axes.
	Rotation mgl32.Vec3

	Scale mgl32.Vec3
}

// NewTransform returns a transform with unit scale at the given translation.
func NewTransform(translation mgl32.Vec3) Transform {
	return Transform{Translation: translation, Scale: mgl32.Vec3{1, 1, 1}}
}

// Mat4 returns the model matrix relative to the given camera position:
// translation by (Translation - camera), then rotation about -Y,
// then X, then Z, then scale.
func (tf Transform) Mat4(camera mgl32.Vec3) mgl32.Mat4 {
	d := tf.Translation.Sub(camera)
	m := mgl32.Translate3D(d[0], d[1], d[2])
	m = m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(tf.Rotation[1]), mgl32.Vec3{0, -1, 0}))
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(tf.Rotation[0])))
	m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(tf.Rotation[2])))
	return m.Mul4(mgl32.Scale3D(tf.Scale[0], tf.Scale[1], tf.Scale[2]))
}

// NormalMatrix returns the transpose of the inverse of the upper
// 3x3 block of the model matrix, widened to a 4x4 for std430 push
// constant layout.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat4 {
	return model.Mat3().Inv().Transpose().Mat4()
}
