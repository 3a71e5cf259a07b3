// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package camera provides the free-flying quaternion camera and
// the keyboard and mouse controller that drives it from an
// explicit [InputState].
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying camera. Its view matrix is pure rotation:
// world geometry is translated relative to Translation before the
// view is applied, which keeps precision near the camera.
type Camera struct {
	Translation mgl32.Vec3

	Orientation mgl32.Quat

	// basis vectors of the current orientation, in world space
	Front mgl32.Vec3
	Right mgl32.Vec3
	Up    mgl32.Vec3

	// degrees of rotation per pixel of cursor movement
	Sensitivity float32

	view       mgl32.Mat4
	projection mgl32.Mat4

	lastX, lastY float32
	primed       bool
}

// New returns a camera at the origin looking down +Z with a downward Up.
func New() *Camera {
	cam := &Camera{
		Orientation: mgl32.QuatIdent(),
		Front:       mgl32.Vec3{0, 0, 1},
		Right:       mgl32.Vec3{1, 0, 0},
		Up:          mgl32.Vec3{0, -1, 0},
		Sensitivity: 0.05,
		view:        mgl32.Ident4(),
		projection:  mgl32.Ident4(),
	}
	return cam
}

// View returns the view matrix computed by the last [Camera.Look].
func (cam *Camera) View() mgl32.Mat4 { return cam.view }

// Projection returns the projection matrix set by [Camera.SetPerspective].
func (cam *Camera) Projection() mgl32.Mat4 { return cam.projection }

// SetPerspective sets a right-handed perspective projection with
// zero-to-one clip depth, as Vulkan expects.
func (cam *Camera) SetPerspective(fovYDeg, aspect, near, far float32) {
	f := 1 / math32.Tan(mgl32.DegToRad(fovYDeg)/2)
	cam.projection = mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far / (near - far), -1,
		0, 0, -(far * near) / (far - near), 0,
	}
}

// rotation returns the quaternion rotating by deg degrees about axis.
// The vector part is sin(angle) * axis, matching the mouse-look feel.
func rotation(deg float32, axis mgl32.Vec3) mgl32.Quat {
	r := mgl32.DegToRad(deg)
	return mgl32.Quat{W: math32.Cos(r), V: axis.Mul(math32.Sin(r))}
}

// Rotate applies a rotation of deg degrees about the given axis,
// post-multiplied onto the current orientation.
func (cam *Camera) Rotate(deg float32, axis mgl32.Vec3) {
	cam.Orientation = cam.Orientation.Mul(rotation(deg, axis))
}

// Look updates the orientation from the cursor position (x, y), given
// relative to the window center, unless frozen, and always recomputes
// the view matrix and the basis vectors. The first call only records
// the position.
func (cam *Camera) Look(x, y float32, frozen bool) {
	if !cam.primed {
		cam.lastX, cam.lastY = x, y
		cam.primed = true
	}
	if !frozen {
		if x != cam.lastX {
			cam.Rotate((x-cam.lastX)*cam.Sensitivity, cam.Up)
		}
		if y != cam.lastY {
			cam.Rotate((y-cam.lastY)*-cam.Sensitivity, cam.Right)
		}
	}
	cam.lastX, cam.lastY = x, y
	cam.update()
}

// update recomputes the view matrix and the basis from the orientation.
func (cam *Camera) update() {
	v := cam.Orientation.Mat4()
	cam.view = v
	cam.Front = mgl32.Vec3{v.At(2, 0), v.At(2, 1), v.At(2, 2)}
	cam.Right = mgl32.Vec3{v.At(0, 0), v.At(0, 1), v.At(0, 2)}
	cam.Up = mgl32.Vec3{v.At(1, 0), v.At(1, 1), v.At(1, 2)}
}
