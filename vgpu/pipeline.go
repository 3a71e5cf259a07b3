// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"unsafe"

	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// VertexAttribute is one attribute of the interleaved vertex layout.
type VertexAttribute struct {
	Location uint32
	Format   vk.Format
	Offset   uint32
}

// PipelineConfig is everything a graphics pipeline is built from.
// The viewport and scissor are always dynamic.
type PipelineConfig struct {

	// Name is used in errors and logs.
	Name string

	// Vertex and Fragment are SPIR-V code.
	Vertex   []byte
	Fragment []byte

	// SetLayouts of the pipeline layout, by set number.
	SetLayouts []vk.DescriptorSetLayout

	// PushSize is the size of the push constant block, 0 for none.
	// It is visible to the vertex and fragment stages.
	PushSize uint32

	// Stride of one vertex, and its attributes. A zero stride means no
	// vertex input.
	Stride     uint32
	Attributes []VertexAttribute

	CullMode  vk.CullModeFlagBits
	FrontFace vk.FrontFace

	DepthTest    bool
	DepthWrite   bool
	DepthCompare vk.CompareOp

	// AlphaBlend enables source-alpha blending.
	AlphaBlend bool
}

// Defaults sets back face culling with counter-clockwise front faces, and
// depth testing and writing with less-or-equal.
func (pc *PipelineConfig) Defaults() {
	pc.CullMode = vk.CullModeBackBit
	pc.FrontFace = vk.FrontFaceCounterClockwise
	pc.DepthTest = true
	pc.DepthWrite = true
	pc.DepthCompare = vk.CompareOpLessOrEqual
}

// PushStages are the stages push constants are visible to.
const PushStages = vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit

// Pipeline is a graphics pipeline with its layout.
type Pipeline struct {
	dev      *Device
	Name     string
	Layout   vk.PipelineLayout
	Pipeline vk.Pipeline
}

// NewPipeline builds a graphics pipeline for the render pass.
func NewPipeline(dev *Device, pass vk.RenderPass, cfg *PipelineConfig) (*Pipeline, error) {
	pl := &Pipeline{dev: dev, Name: cfg.Name}
	if err := pl.makeLayout(cfg); err != nil {
		return nil, err
	}
	if err := pl.makePipeline(pass, cfg); err != nil {
		pl.Destroy()
		return nil, err
	}
	return pl, nil
}

func (pl *Pipeline) makeLayout(cfg *PipelineConfig) error {
	info := &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(cfg.SetLayouts)),
		PSetLayouts:    cfg.SetLayouts,
	}
	if cfg.PushSize > 0 {
		info.PushConstantRangeCount = 1
		info.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(PushStages),
			Offset:     0,
			Size:       cfg.PushSize,
		}}
	}
	var layout vk.PipelineLayout
	if err := opError("create pipeline layout", vk.CreatePipelineLayout(pl.dev.Device, info, nil, &layout)); err != nil {
		return errors.Errorf("%s: %w", cfg.Name, err)
	}
	pl.Layout = layout
	return nil
}

func (pl *Pipeline) makePipeline(pass vk.RenderPass, cfg *PipelineConfig) error {
	vert, err := NewShaderModule(pl.dev, cfg.Vertex)
	if err != nil {
		return errors.Errorf("%s vertex shader: %w", cfg.Name, err)
	}
	defer vk.DestroyShaderModule(pl.dev.Device, vert, nil)
	frag, err := NewShaderModule(pl.dev, cfg.Fragment)
	if err != nil {
		return errors.Errorf("%s fragment shader: %w", cfg.Name, err)
	}
	defer vk.DestroyShaderModule(pl.dev.Device, frag, nil)

	vertexInput := &vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	if cfg.Stride > 0 {
		attrs := make([]vk.VertexInputAttributeDescription, len(cfg.Attributes))
		for i, a := range cfg.Attributes {
			attrs[i] = vk.VertexInputAttributeDescription{Location: a.Location, Binding: 0, Format: a.Format, Offset: a.Offset}
		}
		vertexInput.VertexBindingDescriptionCount = 1
		vertexInput.PVertexBindingDescriptions = []vk.VertexInputBindingDescription{{
			Binding:   0,
			Stride:    cfg.Stride,
			InputRate: vk.VertexInputRateVertex,
		}}
		vertexInput.VertexAttributeDescriptionCount = uint32(len(attrs))
		vertexInput.PVertexAttributeDescriptions = attrs
	}

	blend := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	if cfg.AlphaBlend {
		blend.BlendEnable = vk.True
		blend.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blend.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blend.ColorBlendOp = vk.BlendOpAdd
		blend.SrcAlphaBlendFactor = vk.BlendFactorOne
		blend.DstAlphaBlendFactor = vk.BlendFactorZero
		blend.AlphaBlendOp = vk.BlendOpAdd
	}

	dynamic := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: 2,
		PStages: []vk.PipelineShaderStageCreateInfo{
			{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageVertexBit,
				Module: vert,
				PName:  SafeString("main"),
			},
			{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageFragmentBit,
				Module: frag,
				PName:  SafeString("main"),
			},
		},
		PVertexInputState: vertexInput,
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(cfg.CullMode),
			FrontFace:   cfg.FrontFace,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  vkBool(cfg.DepthTest),
			DepthWriteEnable: vkBool(cfg.DepthWrite),
			DepthCompareOp:   cfg.DepthCompare,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blend},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(dynamic)),
			PDynamicStates:    dynamic,
		},
		Layout:     pl.Layout,
		RenderPass: pass,
		Subpass:    0,
	}

	var cache vk.PipelineCache
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(pl.dev.Device, cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := opError("create graphics pipeline", ret); err != nil {
		return errors.Errorf("%s: %w", cfg.Name, err)
	}
	pl.Pipeline = pipelines[0]
	return nil
}

// Bind binds the pipeline for drawing.
func (pl *Pipeline) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pl.Pipeline)
}

// BindSets binds descriptor sets starting at set number first.
func (pl *Pipeline) BindSets(cmd vk.CommandBuffer, first uint32, sets ...vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, pl.Layout, first, uint32(len(sets)), sets, 0, nil)
}

// Push uploads the push constant block v.
func Push[T any](cmd vk.CommandBuffer, pl *Pipeline, v *T) {
	vk.CmdPushConstants(cmd, pl.Layout, vk.ShaderStageFlags(PushStages), 0, uint32(unsafe.Sizeof(*v)), unsafe.Pointer(v))
}

// Destroy destroys the pipeline and its layout.
func (pl *Pipeline) Destroy() {
	if pl.dev == nil {
		return
	}
	if pl.Pipeline != nil {
		vk.DestroyPipeline(pl.dev.Device, pl.Pipeline, nil)
		pl.Pipeline = nil
	}
	if pl.Layout != nil {
		vk.DestroyPipelineLayout(pl.dev.Device, pl.Layout, nil)
		pl.Layout = nil
	}
	pl.dev = nil
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
