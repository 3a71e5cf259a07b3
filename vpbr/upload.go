// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vpbr

import (
	"image"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/loader"
	"cogentcore.org/spacesim/scene"
	"cogentcore.org/spacesim/vgpu"
	vk "github.com/goki/vulkan"
)

var _ loader.Uploader = (*Drawer)(nil)

// Mesh is uploaded indexed geometry in device local buffers.
type Mesh struct {
	vertices *vgpu.Buffer
	indices  *vgpu.Buffer
	count    uint32
}

var _ scene.Mesh = (*Mesh)(nil)

// Draw binds the vertex and index buffers and draws every index.
func (ms *Mesh) Draw(cmd gpu.Commands) {
	c := vgpu.VkCmd(cmd)
	vk.CmdBindVertexBuffers(c, 0, 1, []vk.Buffer{ms.vertices.Buffer}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(c, ms.indices.Buffer, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(c, ms.count, 1, 0, 0, 0)
}

func (ms *Mesh) destroy() {
	if ms.vertices != nil {
		ms.vertices.Destroy()
	}
	if ms.indices != nil {
		ms.indices.Destroy()
	}
}

// Material is the set of four textures of an entity, bound as one
// descriptor set of the PBR pipeline.
type Material struct {
	dr       *Drawer
	textures []*vgpu.Texture
	set      vk.DescriptorSet
}

var _ scene.Material = (*Material)(nil)

// Bind binds the textures at [SetTextures] of the PBR pipeline.
func (mt *Material) Bind(cmd gpu.Commands) {
	mt.dr.pbr.BindSets(vgpu.VkCmd(cmd), SetTextures, mt.set)
}

func (mt *Material) destroy() {
	for _, tx := range mt.textures {
		tx.Destroy()
	}
}

// Skybox is the cube mesh textured with a cubemap.
type Skybox struct {
	dr      *Drawer
	mesh    *Mesh
	cubemap *vgpu.Texture
	set     vk.DescriptorSet
}

var _ scene.Drawable = (*Skybox)(nil)

// Draw binds the cubemap at [SetCubemap] of the skybox pipeline and
// draws the cube.
func (sb *Skybox) Draw(cmd gpu.Commands) {
	sb.dr.skybox.BindSets(vgpu.VkCmd(cmd), SetCubemap, sb.set)
	sb.mesh.Draw(cmd)
}

func (sb *Skybox) destroy() {
	if sb.cubemap != nil {
		sb.cubemap.Destroy()
	}
}

func (dr *Drawer) newMesh(md *loader.MeshData) (*Mesh, error) {
	if len(md.Vertices) == 0 || len(md.Indices) == 0 {
		return nil, errors.New("vpbr: empty mesh")
	}
	ms := &Mesh{count: uint32(len(md.Indices))}
	var err error
	if ms.vertices, err = vgpu.NewDeviceBuffer(dr.dev, vgpu.SliceBytes(md.Vertices), vk.BufferUsageVertexBufferBit); err != nil {
		return nil, err
	}
	if ms.indices, err = vgpu.NewDeviceBuffer(dr.dev, vgpu.SliceBytes(md.Indices), vk.BufferUsageIndexBufferBit); err != nil {
		ms.destroy()
		return nil, err
	}
	return ms, nil
}

// UploadMesh copies the geometry into device local buffers.
func (dr *Drawer) UploadMesh(md *loader.MeshData) (scene.Mesh, error) {
	ms, err := dr.newMesh(md)
	if err != nil {
		return nil, err
	}
	dr.meshes = append(dr.meshes, ms)
	return ms, nil
}

// UploadMaterial uploads the textures and writes their descriptor set.
func (dr *Drawer) UploadMaterial(textures [loader.TextureSlots]*image.RGBA) (scene.Material, error) {
	mt := &Material{dr: dr}
	for i, img := range textures {
		if img == nil {
			return nil, errors.Errorf("vpbr: material texture %d is missing", i)
		}
		tx, err := newTexture(dr.dev, []*image.RGBA{img}, false)
		if err != nil {
			mt.destroy()
			return nil, err
		}
		mt.textures = append(mt.textures, tx)
	}
	set, err := dr.pool.Allocate(dr.texturesLayout)
	if err != nil {
		mt.destroy()
		return nil, errors.Errorf("vpbr: material set (at most %d materials): %w", MaxMaterials, err)
	}
	mt.set = set
	dr.pool.WriteTextures(set, 0, mt.textures...)
	dr.materials = append(dr.materials, mt)
	return mt, nil
}

// UploadSkybox uploads the cube mesh and the six faces as a cubemap.
func (dr *Drawer) UploadSkybox(cube *loader.MeshData, faces [loader.CubeFaces]*image.RGBA) (scene.Drawable, error) {
	mesh, err := dr.UploadMesh(cube)
	if err != nil {
		return nil, err
	}
	sb := &Skybox{dr: dr, mesh: mesh.(*Mesh)}
	if sb.cubemap, err = newTexture(dr.dev, faces[:], true); err != nil {
		return nil, err
	}
	if sb.set, err = dr.pool.Allocate(dr.cubemapLayout); err != nil {
		sb.destroy()
		return nil, err
	}
	dr.pool.WriteTextures(sb.set, 0, sb.cubemap)
	dr.skyboxes = append(dr.skyboxes, sb)
	return sb, nil
}

// newTexture uploads same-sized RGBA layers as one texture.
func newTexture(dev *vgpu.Device, imgs []*image.RGBA, cube bool) (*vgpu.Texture, error) {
	size := imgs[0].Bounds().Size()
	layers := make([][]byte, len(imgs))
	for i, img := range imgs {
		if img.Bounds().Size() != size {
			return nil, errors.Errorf("vpbr: texture layer %d is %v, want %v", i, img.Bounds().Size(), size)
		}
		layers[i] = img.Pix
	}
	return vgpu.NewTexture(dev, size.X, size.Y, layers, cube)
}
