// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cogentcore.org/spacesim/base/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one interleaved vertex as laid out in the vertex buffer:
// position, normal and texture coordinate, 32 bytes.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// MeshData is indexed triangle geometry ready for upload.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// objKey identifies one distinct position/uv/normal combination.
// Missing components are -1.
type objKey struct {
	v, vt, vn int
}

// objDecoder holds the state of parsing one OBJ stream.
// Objects, groups, materials and smoothing groups are ignored:
// the whole file becomes one mesh.
type objDecoder struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	mesh      *MeshData
	index     map[objKey]uint32
	line      int
	warnings  []string
}

// ParseOBJ parses Wavefront OBJ geometry. Faces with more than three
// vertices are split into fans, negative indices are relative to the
// end of the lists parsed so far, and texture V is flipped.
// Identical vertices are shared through the index buffer.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	dec := &objDecoder{mesh: &MeshData{}, index: map[objKey]uint32{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err)
	}
	if len(dec.mesh.Indices) == 0 {
		return nil, errors.New("obj: no faces")
	}
	for _, w := range dec.warnings {
		slog.Debug("obj", "warning", w)
	}
	return dec.mesh, nil
}

// OpenOBJ parses the OBJ file.
func OpenOBJ(filename string) (*MeshData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	defer f.Close()
	md, err := ParseOBJ(f)
	if err != nil {
		return nil, errors.Errorf("%s: %w", filename, err)
	}
	return md, nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, mgl32.Vec2{v[0], 1 - v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	case "o", "g", "s", "mtllib", "usemtl":
	default:
		dec.warnings = append(dec.warnings, dec.formatError("field not supported: "+fields[0]).Error())
	}
	return nil
}

func (dec *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError("fewer than " + strconv.Itoa(n) + " values")
	}
	vals := make([]float32, n)
	for i, f := range fields[:n] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, dec.formatError(err.Error())
		}
		vals[i] = float32(v)
	}
	return vals, nil
}

// parseFace parses a face description line:
// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face with fewer than 3 vertices")
	}
	idxs := make([]uint32, len(fields))
	for i, f := range fields {
		key, err := dec.parseCorner(f)
		if err != nil {
			return err
		}
		idxs[i] = dec.vertex(key)
	}
	for i := 1; i+1 < len(idxs); i++ {
		dec.mesh.Indices = append(dec.mesh.Indices, idxs[0], idxs[i], idxs[i+1])
	}
	return nil
}

func (dec *objDecoder) parseCorner(f string) (objKey, error) {
	parts := strings.Split(f, "/")
	key := objKey{-1, -1, -1}
	var err error
	if key.v, err = dec.resolve(parts[0], len(dec.positions)); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = dec.resolve(parts[1], len(dec.uvs)); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = dec.resolve(parts[2], len(dec.normals)); err != nil {
			return key, err
		}
	}
	return key, nil
}

// resolve turns a 1-based or negative relative OBJ index into a
// 0-based index into a list of n elements.
func (dec *objDecoder) resolve(s string, n int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError("bad index " + strconv.Quote(s))
	}
	i := val - 1
	if val < 0 {
		i = n + val
	}
	if val == 0 || i < 0 || i >= n {
		return 0, dec.formatError("index " + s + " out of range")
	}
	return i, nil
}

func (dec *objDecoder) vertex(key objKey) uint32 {
	if i, ok := dec.index[key]; ok {
		return i
	}
	vtx := Vertex{Position: dec.positions[key.v]}
	if key.vn >= 0 {
		vtx.Normal = dec.normals[key.vn]
	}
	if key.vt >= 0 {
		vtx.UV = dec.uvs[key.vt]
	}
	i := uint32(len(dec.mesh.Vertices))
	dec.mesh.Vertices = append(dec.mesh.Vertices, vtx)
	dec.index[key] = i
	return i
}

func (dec *objDecoder) formatError(msg string) error {
	return errors.Errorf("obj: %s in line %d", msg, dec.line)
}
