// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vpbr

import (
	"path/filepath"
	"unsafe"

	"cogentcore.org/spacesim/loader"
	"cogentcore.org/spacesim/scene"
	"cogentcore.org/spacesim/vgpu"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// PBRPush is the push constant block of the PBR pipeline.
type PBRPush struct {
	Model  mgl32.Mat4
	Normal mgl32.Mat4
}

// SkyboxPush is the push constant block of the skybox pipeline.
type SkyboxPush struct {
	Model mgl32.Mat4
}

// Descriptor set numbers of the PBR pipeline.
const (
	SetGlobals  = 0
	SetLights   = 1
	SetTextures = 2
)

// SetCubemap is the cubemap set number of the skybox pipeline,
// which shares [SetGlobals].
const SetCubemap = 1

// MaxMaterials bounds the number of materials the descriptor pool has room for.
const MaxMaterials = 64

// Shader file names under the shader directory.
const (
	PBRVertex      = "pbr.vert.spv"
	PBRFragment    = "pbr.frag.spv"
	SkyboxVertex   = "skybox.vert.spv"
	SkyboxFragment = "skybox.frag.spv"
)

// VertexStride is the size of one [loader.Vertex].
const VertexStride = uint32(unsafe.Sizeof(loader.Vertex{}))

// VertexAttributes is the vertex layout shared by both pipelines:
// position, normal and uv.
var VertexAttributes = []vgpu.VertexAttribute{
	{Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(loader.Vertex{}.Position))},
	{Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(loader.Vertex{}.Normal))},
	{Location: 2, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(loader.Vertex{}.UV))},
}

// Sizes of the uniform blocks.
var (
	GlobalsSize = int(unsafe.Sizeof(scene.Globals{}))
	LightsSize  = int(unsafe.Sizeof(scene.Lights{}))
)

// PoolSizes returns the number of descriptor sets and the descriptors
// of each type needed for flight frame slots, one skybox and
// materials materials.
func PoolSizes(flight, materials int) (uint32, map[vk.DescriptorType]uint32) {
	sets := uint32(2*flight + 1 + materials)
	return sets, map[vk.DescriptorType]uint32{
		vk.DescriptorTypeUniformBuffer:        uint32(2 * flight),
		vk.DescriptorTypeCombinedImageSampler: uint32(1 + loader.TextureSlots*materials),
	}
}

// shaderPaths returns the vertex and fragment shader files of a pipeline.
func shaderPaths(dir, vert, frag string) (string, string) {
	return filepath.Join(dir, vert), filepath.Join(dir, frag)
}

// pbrConfig returns the configuration of the PBR pipeline.
func pbrConfig(vert, frag []byte, layouts []vk.DescriptorSetLayout) *vgpu.PipelineConfig {
	cfg := &vgpu.PipelineConfig{
		Name:       "pbr",
		Vertex:     vert,
		Fragment:   frag,
		SetLayouts: layouts,
		PushSize:   uint32(unsafe.Sizeof(PBRPush{})),
		Stride:     VertexStride,
		Attributes: VertexAttributes,
	}
	cfg.Defaults()
	return cfg
}

// skyboxConfig returns the configuration of the skybox pipeline.
// The camera sits inside the cube, so nothing is culled, and the
// skybox never occludes the scene drawn after it.
func skyboxConfig(vert, frag []byte, layouts []vk.DescriptorSetLayout) *vgpu.PipelineConfig {
	cfg := &vgpu.PipelineConfig{
		Name:       "skybox",
		Vertex:     vert,
		Fragment:   frag,
		SetLayouts: layouts,
		PushSize:   uint32(unsafe.Sizeof(SkyboxPush{})),
		Stride:     VertexStride,
		Attributes: VertexAttributes,
	}
	cfg.Defaults()
	cfg.CullMode = vk.CullModeNone
	cfg.DepthWrite = false
	return cfg
}
