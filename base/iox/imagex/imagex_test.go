// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagex

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.SetRGBA(1, 1, color.RGBA{255, 0, 0, 255})
	return img
}

func TestExtToFormat(t *testing.T) {
	f, err := ExtToFormat(".JPG")
	require.NoError(t, err)
	assert.Equal(t, JPEG, f)
	_, err = ExtToFormat("gif")
	assert.Error(t, err)
	_, err = ExtToFormat("")
	assert.Error(t, err)
}

func TestReadSniffsContent(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Write(testImage(), &b, PNG))
	im, f, err := Read(&b)
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, image.Pt(4, 2), im.Bounds().Size())

	_, _, err = Read(bytes.NewReader([]byte("not an image at all")))
	assert.Error(t, err)
}

func TestSaveOpen(t *testing.T) {
	// the extension lies; the content decides
	fn := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, Save(testImage(), fn))
	im, f, err := Open(fn)
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	rgba := AsRGBA(im)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba.RGBAAt(1, 1))
}

func TestAsRGBA(t *testing.T) {
	img := testImage()
	assert.Same(t, img, AsRGBA(img))

	sub := img.SubImage(image.Rect(1, 1, 3, 2)).(*image.RGBA)
	c := AsRGBA(sub)
	assert.NotSame(t, sub, c)
	assert.Equal(t, image.Rect(0, 0, 2, 1), c.Bounds())
	assert.Equal(t, 8, c.Stride)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, c.RGBAAt(0, 0))

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	assert.Equal(t, image.Pt(2, 2), AsRGBA(gray).Bounds().Size())
}

func TestResize(t *testing.T) {
	img := testImage()
	assert.Same(t, img, Resize(img, image.Pt(4, 2)))
	assert.Equal(t, image.Pt(8, 8), Resize(img, image.Pt(8, 8)).Bounds().Size())
}

func TestSolid(t *testing.T) {
	w := Solid(color.RGBA{255, 255, 255, 255})
	assert.Equal(t, image.Pt(1, 1), w.Bounds().Size())
	assert.Equal(t, []uint8{255, 255, 255, 255}, w.Pix)
}
