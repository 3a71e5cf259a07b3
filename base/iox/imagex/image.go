// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// CloneAsRGBA returns an RGBA copy of the supplied image,
// with its bounds moved to the origin and a tight stride.
func CloneAsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	bounds := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(img, img.Bounds(), src, bounds.Min, draw.Src)
	return img
}

// AsRGBA returns the image as a tightly packed RGBA at the origin:
// if it already is one, then it returns that image directly.
// Otherwise it returns a clone.
func AsRGBA(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	return CloneAsRGBA(src)
}

// Resize returns src scaled to size with linear filtering,
// or src itself when it already has that size.
func Resize(src *image.RGBA, size image.Point) *image.RGBA {
	if src.Bounds().Size() == size {
		return src
	}
	return transform.Resize(src, size.X, size.Y, transform.Linear)
}

// Solid returns a 1x1 image of the color.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}
