// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	vk "github.com/goki/vulkan"
)

// CmdBuffer is the command buffer of one frame slot.
// It implements [gpu.Commands].
type CmdBuffer struct {
	dev   *Device
	frame int

	// Buff is the Vulkan command buffer.
	Buff vk.CommandBuffer
}

var _ gpu.Commands = (*CmdBuffer)(nil)

// Frame returns the frame slot of the buffer.
func (cb *CmdBuffer) Frame() int { return cb.frame }

// Begin resets the buffer and begins recording.
func (cb *CmdBuffer) Begin() error {
	if err := opError("reset command buffer", vk.ResetCommandBuffer(cb.Buff, 0)); err != nil {
		return err
	}
	return opError("begin command buffer", vk.BeginCommandBuffer(cb.Buff, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}))
}

// BeginRenderPass begins the render pass of the current swapchain on
// the framebuffer of the image, and sets the dynamic viewport and scissor
// to the full extent.
func (cb *CmdBuffer) BeginRenderPass(image uint32, extent gpu.Extent, clear gpu.ClearValues) {
	sc := cb.dev.swapchain
	errors.Assert(sc != nil && int(image) < len(sc.Framebuffers), "vgpu: render pass begun without a framebuffer for the image")

	clears := make([]vk.ClearValue, 2)
	clears[0].SetColor(clear.Color[:])
	clears[1].SetDepthStencil(clear.Depth, clear.Stencil)

	vk.CmdBeginRenderPass(cb.Buff, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  sc.RenderPass,
		Framebuffer: sc.Framebuffers[image],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)

	vk.CmdSetViewport(cb.Buff, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cb.Buff, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}})
}

// EndRenderPass ends the render pass. The color image is left in
// the present-src layout.
func (cb *CmdBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(cb.Buff)
}

// End ends recording.
func (cb *CmdBuffer) End() error {
	return opError("end command buffer", vk.EndCommandBuffer(cb.Buff))
}

// VkCmd returns the Vulkan command buffer behind cmd.
// It panics if cmd was not made by this package.
func VkCmd(cmd gpu.Commands) vk.CommandBuffer {
	return cmd.(*CmdBuffer).Buff
}
