// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader reads the scene manifest and its assets from disk
// and hands the decoded geometry and pixels to an [Uploader] that
// turns them into GPU resources.
package loader

import (
	"image"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/base/iox/yamlx"
	"cogentcore.org/spacesim/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureSlots is the number of textures of a material, in binding
// order: albedo, normal, metallic, roughness.
const TextureSlots = 4

// Textures names the texture files of a material, relative to the
// asset root. Empty names get a [WhiteTexture].
type Textures struct {
	Albedo    string `yaml:"albedo"`
	Normal    string `yaml:"normal"`
	Metallic  string `yaml:"metallic"`
	Roughness string `yaml:"roughness"`
}

// Slots returns the texture names in binding order.
func (tx Textures) Slots() [TextureSlots]string {
	return [TextureSlots]string{tx.Albedo, tx.Normal, tx.Metallic, tx.Roughness}
}

// EntitySpec is one entity of the manifest.
type EntitySpec struct {
	Name     string   `yaml:"name"`
	Model    string   `yaml:"model"`
	Textures Textures `yaml:"textures"`

	Translation mgl32.Vec3 `yaml:"translation,flow"`

	// degrees about X, Y and Z
	Rotation mgl32.Vec3 `yaml:"rotation,flow"`

	// unit scale when omitted
	Scale *mgl32.Vec3 `yaml:"scale,flow"`
}

// Transform returns the placement of the entity.
func (es *EntitySpec) Transform() scene.Transform {
	tf := scene.NewTransform(es.Translation)
	tf.Rotation = es.Rotation
	if es.Scale != nil {
		tf.Scale = *es.Scale
	}
	return tf
}

// Manifest lists the entities of the scene and the skybox.
type Manifest struct {
	Objects []EntitySpec `yaml:"objects"`
	Stars   []EntitySpec `yaml:"stars"`

	// directory of the six cubemap faces, empty for no skybox
	Skybox string `yaml:"skybox"`
}

// OpenManifest reads the YAML manifest file.
func OpenManifest(filename string) (*Manifest, error) {
	mf := &Manifest{}
	if err := yamlx.Open(mf, filename); err != nil {
		return nil, errors.Errorf("loader: manifest: %w", err)
	}
	return mf, nil
}

// Uploader turns decoded assets into GPU resources. The returned
// handles stay valid until the uploader is destroyed.
type Uploader interface {
	UploadMesh(md *MeshData) (scene.Mesh, error)
	UploadMaterial(textures [TextureSlots]*image.RGBA) (scene.Material, error)
	UploadSkybox(cube *MeshData, faces [CubeFaces]*image.RGBA) (scene.Drawable, error)
}

// IDGen generates unique, increasing entity identifiers.
// It is safe for concurrent use.
type IDGen struct {
	last atomic.Int64
}

// Next returns the next identifier, starting at 1.
func (g *IDGen) Next() int {
	return int(g.last.Add(1))
}

// Loader loads entities relative to an asset root.
type Loader struct {
	Root     string
	Uploader Uploader
	IDs      IDGen
}

// New returns a loader for assets under root.
func New(root string, up Uploader) *Loader {
	return &Loader{Root: root, Uploader: up}
}

func (ld *Loader) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ld.Root, name)
}

// LoadEntity parses the entity's model, decodes its textures and
// uploads both, returning the entity with a new identifier.
func (ld *Loader) LoadEntity(es *EntitySpec) (*scene.Entity, error) {
	md, err := OpenOBJ(ld.path(es.Model))
	if err != nil {
		return nil, errors.Errorf("loader: entity %q: %w", es.Name, err)
	}
	var textures [TextureSlots]*image.RGBA
	for i, name := range es.Textures.Slots() {
		if name == "" {
			textures[i] = WhiteTexture()
			continue
		}
		if textures[i], err = LoadTexture(ld.path(name)); err != nil {
			return nil, errors.Errorf("loader: entity %q: %w", es.Name, err)
		}
	}
	mesh, err := ld.Uploader.UploadMesh(md)
	if err != nil {
		return nil, errors.Errorf("loader: entity %q: %w", es.Name, err)
	}
	mat, err := ld.Uploader.UploadMaterial(textures)
	if err != nil {
		return nil, errors.Errorf("loader: entity %q: %w", es.Name, err)
	}
	e := &scene.Entity{
		ID:        ld.IDs.Next(),
		Name:      es.Name,
		Transform: es.Transform(),
		Mesh:      mesh,
		Material:  mat,
	}
	slog.Info("loaded entity", "id", e.ID, "name", e.Name, "vertices", len(md.Vertices), "indices", len(md.Indices))
	return e, nil
}

// LoadSkybox decodes the cubemap faces in dir and uploads them with
// the skybox cube.
func (ld *Loader) LoadSkybox(dir string) (scene.Drawable, error) {
	faces, err := LoadCubemap(ld.path(dir))
	if err != nil {
		return nil, err
	}
	sb, err := ld.Uploader.UploadSkybox(Cube(), faces)
	if err != nil {
		return nil, errors.Errorf("loader: skybox: %w", err)
	}
	return sb, nil
}

// LoadScene loads every entity of the manifest into a new scene:
// objects first, then stars, each in manifest order.
func (ld *Loader) LoadScene(mf *Manifest) (*scene.Scene, error) {
	sc := scene.New()
	for i := range mf.Objects {
		e, err := ld.LoadEntity(&mf.Objects[i])
		if err != nil {
			return nil, err
		}
		sc.Add(e)
	}
	for i := range mf.Stars {
		e, err := ld.LoadEntity(&mf.Stars[i])
		if err != nil {
			return nil, err
		}
		sc.AddStar(e)
	}
	if mf.Skybox != "" {
		sb, err := ld.LoadSkybox(mf.Skybox)
		if err != nil {
			return nil, err
		}
		sc.Skybox = sb
	}
	return sc, nil
}
