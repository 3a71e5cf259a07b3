// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/base/iox/imagex"
)

// CubeFaces is the number of faces of a cubemap.
const CubeFaces = 6

// White is the color of the texture used for material slots
// with no file.
var White = color.RGBA{255, 255, 255, 255}

// WhiteTexture returns a new 1x1 [White] texture.
func WhiteTexture() *image.RGBA {
	return imagex.Solid(White)
}

// LoadTexture decodes the image file into tightly packed RGBA pixels.
func LoadTexture(filename string) (*image.RGBA, error) {
	im, _, err := imagex.Open(filename)
	if err != nil {
		return nil, err
	}
	return imagex.AsRGBA(im), nil
}

// LoadCubemap decodes the six faces of a cubemap from the regular
// files of dir, in lexical order of their names: +X, -X, +Y, -Y, +Z, -Z.
// Faces are resized to the size of the first one.
func LoadCubemap(dir string) ([CubeFaces]*image.RGBA, error) {
	var faces [CubeFaces]*image.RGBA
	ents, err := os.ReadDir(dir)
	if err != nil {
		return faces, errors.Wrap(err)
	}
	var files []string
	for _, e := range ents {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) != CubeFaces {
		return faces, errors.Errorf("loader: cubemap %s has %d files, need %d", dir, len(files), CubeFaces)
	}
	for i, fn := range files {
		face, err := LoadTexture(fn)
		if err != nil {
			return faces, err
		}
		if i > 0 {
			face = imagex.Resize(face, faces[0].Bounds().Size())
		}
		faces[i] = face
	}
	return faces, nil
}

// Cube returns a unit cube centered on the origin with outward
// normals, four vertices per face.
func Cube() *MeshData {
	type face struct {
		normal, u, v [3]float32
	}
	faces := []face{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}
	md := &MeshData{}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(md.Vertices))
		for _, c := range corners {
			var vtx Vertex
			for k := range 3 {
				vtx.Position[k] = 0.5*f.normal[k] + 0.5*c[0]*f.u[k] + 0.5*c[1]*f.v[k]
			}
			vtx.Normal = f.normal
			vtx.UV = [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2}
			md.Vertices = append(md.Vertices, vtx)
		}
		md.Indices = append(md.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return md
}
