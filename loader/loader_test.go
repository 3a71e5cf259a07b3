// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loader

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cogentcore.org/spacesim/base/iox/imagex"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quad = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl none
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJFan(t *testing.T) {
	md, err := ParseOBJ(strings.NewReader(quad))
	require.NoError(t, err)
	assert.Len(t, md.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, md.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, md.Vertices[2].Normal)
	assert.Equal(t, mgl32.Vec2{1, 0}, md.Vertices[2].UV, "v is flipped")
	assert.Equal(t, mgl32.Vec2{0, 1}, md.Vertices[0].UV)
}

func TestParseOBJShared(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	md, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, md.Vertices, 4, "identical corners are shared")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, md.Indices)
}

func TestParseOBJNegative(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
vn 0 0 1
f -3//-1 -2//-1 -1//-1
`
	md, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, md.Vertices, 3)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, md.Vertices[2].Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, md.Vertices[0].Normal)
}

func TestParseOBJErrors(t *testing.T) {
	tests := map[string]string{
		"zero index":    "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n",
		"out of range":  "v 0 0 0\nf 1 2 3\n",
		"short face":    "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":     "v 0 x 0\n",
		"short vertex":  "v 0 0\n",
		"no faces":      "v 0 0 0\n",
		"bad uv index":  "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/a 2 3\n",
		"missing uv ix": "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/1 2/1 3/1\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestParseOBJErrorLine(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("v 0 0 0\n\nf 1 1 9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCube(t *testing.T) {
	md := Cube()
	assert.Len(t, md.Vertices, 24)
	assert.Len(t, md.Indices, 36)
	for _, v := range md.Vertices {
		for k := range 3 {
			assert.InDelta(t, 0.5, abs(v.Position[k]), 1e-6)
		}
		// outward normals point the same way as the face center
		assert.Greater(t, v.Position.Dot(v.Normal), float32(0))
	}
	for i := 0; i < len(md.Indices); i += 3 {
		a, b, c := md.Vertices[md.Indices[i]], md.Vertices[md.Indices[i+1]], md.Vertices[md.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, n.Dot(a.Normal), float32(0), "counter-clockwise seen from outside")
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func writePNG(t *testing.T, fn string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(fn), 0o755))
	require.NoError(t, imagex.Save(img, fn))
}

func TestLoadCubemap(t *testing.T) {
	dir := t.TempDir()
	names := []string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"}
	for i, n := range names {
		size := 4
		if i == 3 {
			size = 8
		}
		writePNG(t, filepath.Join(dir, n), size, size, color.RGBA{uint8(10 * i), 0, 0, 255})
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	faces, err := LoadCubemap(dir)
	require.NoError(t, err)
	// lexical order: nx ny nz px py pz
	assert.Equal(t, uint8(10), faces[0].RGBAAt(0, 0).R)
	assert.InDelta(t, 30, float64(faces[1].RGBAAt(0, 0).R), 1, "resized face keeps its color")
	assert.Equal(t, uint8(0), faces[3].RGBAAt(0, 0).R)
	for _, f := range faces {
		assert.Equal(t, image.Pt(4, 4), f.Bounds().Size())
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "pz.png")))
	_, err = LoadCubemap(dir)
	assert.Error(t, err)
}

type fakeMesh struct{ md *MeshData }

func (fakeMesh) Draw(gpu.Commands) {}

type fakeMaterial struct{ textures [TextureSlots]*image.RGBA }

func (fakeMaterial) Bind(gpu.Commands) {}

type fakeSkybox struct{ faces [CubeFaces]*image.RGBA }

func (fakeSkybox) Draw(gpu.Commands) {}

type fakeUploader struct {
	meshes, materials int
	fail              error
}

func (up *fakeUploader) UploadMesh(md *MeshData) (scene.Mesh, error) {
	if up.fail != nil {
		return nil, up.fail
	}
	up.meshes++
	return fakeMesh{md}, nil
}

func (up *fakeUploader) UploadMaterial(tx [TextureSlots]*image.RGBA) (scene.Material, error) {
	up.materials++
	return fakeMaterial{tx}, nil
}

func (up *fakeUploader) UploadSkybox(cube *MeshData, faces [CubeFaces]*image.RGBA) (scene.Drawable, error) {
	return fakeSkybox{faces}, nil
}

const manifest = `objects:
  - name: spaceship
    model: models/ship.obj
    textures:
      albedo: textures/ship.png
    translation: [0, 5, -10]
    rotation: [0, 0, 180]
stars:
  - name: star
    model: models/ship.obj
    translation: [0, -1, -10]
    scale: [0.2, 0.2, 0.2]
skybox: skybox
`

func writeAssets(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "models", "ship.obj"), []byte(quad), 0o644))
	writePNG(t, filepath.Join(root, "textures", "ship.png"), 2, 2, color.RGBA{0, 255, 0, 255})
	for i := range CubeFaces {
		writePNG(t, filepath.Join(root, "skybox", fmt.Sprintf("%d.png", i)), 2, 2, color.RGBA{0, 0, 255, 255})
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "scene.yaml"), []byte(manifest), 0o644))
	return root
}

func TestLoadScene(t *testing.T) {
	root := writeAssets(t)
	mf, err := OpenManifest(filepath.Join(root, "scene.yaml"))
	require.NoError(t, err)
	require.Len(t, mf.Objects, 1)
	assert.Equal(t, mgl32.Vec3{0, 0, 180}, mf.Objects[0].Rotation)

	up := &fakeUploader{}
	ld := New(root, up)
	sc, err := ld.LoadScene(mf)
	require.NoError(t, err)
	assert.Equal(t, 2, up.meshes)
	assert.Equal(t, 2, up.materials)

	ship := sc.ByName("spaceship")
	require.NotNil(t, ship)
	assert.Equal(t, 1, ship.ID)
	assert.Equal(t, mgl32.Vec3{0, 5, -10}, ship.Transform.Translation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ship.Transform.Scale)

	mat := ship.Material.(fakeMaterial)
	assert.Equal(t, uint8(255), mat.textures[0].RGBAAt(0, 0).G)
	for _, tx := range mat.textures[1:] {
		assert.Equal(t, image.Pt(1, 1), tx.Bounds().Size(), "missing textures are white")
		assert.Equal(t, White, tx.RGBAAt(0, 0))
	}

	star := sc.Stars[2]
	require.NotNil(t, star)
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, star.Transform.Scale)
	assert.NotNil(t, sc.Skybox)
}

func TestLoadEntityErrors(t *testing.T) {
	root := writeAssets(t)
	ld := New(root, &fakeUploader{})
	_, err := ld.LoadEntity(&EntitySpec{Name: "gone", Model: "models/missing.obj"})
	assert.ErrorContains(t, err, "gone")

	_, err = ld.LoadEntity(&EntitySpec{Name: "badtex", Model: "models/ship.obj", Textures: Textures{Normal: "models/ship.obj"}})
	assert.Error(t, err, "an OBJ file is not an image")

	ld.Uploader = &fakeUploader{fail: assert.AnError}
	_, err = ld.LoadEntity(&EntitySpec{Name: "ship", Model: "models/ship.obj"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestIDGen(t *testing.T) {
	var g IDGen
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int]bool{}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
	assert.Equal(t, 801, g.Next())
}
