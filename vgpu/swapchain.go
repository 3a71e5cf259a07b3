// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"log/slog"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/render"
	vk "github.com/goki/vulkan"
	"golang.org/x/exp/constraints"
)

// DepthFormats are the depth formats tried, in order of preference.
var DepthFormats = []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}

// Swapchain is the presentation surface of one window: the presentable
// images with their depth images and framebuffers, the render pass, and
// the semaphores and fences of every frame slot. It implements
// [render.Swapchain].
type Swapchain struct {
	dev *Device

	Swapchain   vk.Swapchain
	Format      vk.SurfaceFormat
	DepthFormat vk.Format
	RenderPass  vk.RenderPass

	extent gpu.Extent

	// per presentable image
	Images       []vk.Image
	Views        []vk.ImageView
	Depths       []*Image
	Framebuffers []vk.Framebuffer

	// per frame slot
	ImageAvailable []vk.Semaphore
	RenderFinished []vk.Semaphore
	InFlight       []vk.Fence

	// current frame slot
	current int
}

var _ render.Swapchain = (*Swapchain)(nil)

// newSwapchain makes a swapchain for the extent, chained to old when it
// is non-nil. The new swapchain continues at old's frame slot. The caller
// destroys old after the new one is made.
func newSwapchain(dev *Device, old *Swapchain, extent gpu.Extent) (*Swapchain, error) {
	sc := &Swapchain{dev: dev}
	if old != nil {
		sc.current = old.current
	}
	if err := sc.makeSwapchain(old, extent); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.makeImageViews(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.makeRenderPass(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.makeDepthImages(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.makeFramebuffers(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.makeSync(); err != nil {
		sc.Destroy()
		return nil, err
	}
	slog.Info("vulkan swapchain created", "extent", sc.extent, "format", sc.Format.Format,
		"depth", sc.DepthFormat, "images", len(sc.Images), "frames", sc.FlightCount())
	return sc, nil
}

func (sc *Swapchain) makeSwapchain(old *Swapchain, want gpu.Extent) error {
	gp := sc.dev.GPU
	surface := sc.dev.Surface

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gp.Physical, surface, &caps)
	if err := opError("get surface capabilities", ret); err != nil {
		return err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(gp.Physical, surface, &count, nil)
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(gp.Physical, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
	}
	format, err := ChooseSurfaceFormat(formats)
	if err != nil {
		return err
	}
	sc.Format = format

	sc.extent = ChooseExtent(
		gpu.Extent{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		gpu.Extent{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		gpu.Extent{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
		want)
	imageCount := ChooseImageCount(uint32(sc.dev.FlightCount()), caps.MinImageCount, caps.MaxImageCount)

	// transform and composite alpha as in every desktop sample:
	// identity when supported, opaque when supported
	preTransform := caps.CurrentTransform
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	}
	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, ca := range []vk.CompositeAlphaFlagBits{vk.CompositeAlphaOpaqueBit, vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit, vk.CompositeAlphaInheritBit} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(ca) != 0 {
			compositeAlpha = ca
			break
		}
	}

	info := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      vk.Extent2D{Width: sc.extent.Width, Height: sc.extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if sc.dev.GraphicsIndex != sc.dev.PresentIndex {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{sc.dev.GraphicsIndex, sc.dev.PresentIndex}
	}
	if old != nil {
		info.OldSwapchain = old.Swapchain
	}

	var swapchain vk.Swapchain
	if err := opError("create swapchain", vk.CreateSwapchain(sc.dev.Device, info, nil, &swapchain)); err != nil {
		return err
	}
	sc.Swapchain = swapchain

	ret = vk.GetSwapchainImages(sc.dev.Device, swapchain, &count, nil)
	if err := opError("get swapchain images", ret); err != nil {
		return err
	}
	sc.Images = make([]vk.Image, count)
	ret = vk.GetSwapchainImages(sc.dev.Device, swapchain, &count, sc.Images)
	return opError("get swapchain images", ret)
}

func (sc *Swapchain) makeImageViews() error {
	sc.Views = make([]vk.ImageView, 0, len(sc.Images))
	for _, img := range sc.Images {
		view, err := newView(sc.dev.Device, img, ImageFormat{
			Width: sc.extent.Width, Height: sc.extent.Height, Format: sc.Format.Format, Layers: 1,
		})
		if err != nil {
			return err
		}
		sc.Views = append(sc.Views, view)
	}
	return nil
}

func (sc *Swapchain) makeRenderPass() error {
	depth, err := ChooseDepthFormat(DepthFormats, func(f vk.Format) bool {
		return sc.dev.GPU.FormatSupports(f, vk.FormatFeatureDepthStencilAttachmentBit)
	})
	if err != nil {
		return err
	}
	sc.DepthFormat = depth

	attachments := []vk.AttachmentDescription{
		{
			Format:         sc.Format.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         depth,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)

	var pass vk.RenderPass
	ret := vk.CreateRenderPass(sc.dev.Device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vk.AttachmentReference{{
				Attachment: 0,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			}},
			PDepthStencilAttachment: &vk.AttachmentReference{
				Attachment: 1,
				Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
			},
		}},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  stages,
			DstStageMask:  stages,
			SrcAccessMask: 0,
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		}},
	}, nil, &pass)
	if err := opError("create render pass", ret); err != nil {
		return err
	}
	sc.RenderPass = pass
	return nil
}

func (sc *Swapchain) makeDepthImages() error {
	sc.Depths = make([]*Image, 0, len(sc.Images))
	for range sc.Images {
		im, err := NewImage(sc.dev, ImageFormat{
			Width:  sc.extent.Width,
			Height: sc.extent.Height,
			Format: sc.DepthFormat,
			Layers: 1,
		}, vk.ImageUsageDepthStencilAttachmentBit)
		if err != nil {
			return err
		}
		sc.Depths = append(sc.Depths, im)
	}
	return nil
}

func (sc *Swapchain) makeFramebuffers() error {
	sc.Framebuffers = make([]vk.Framebuffer, 0, len(sc.Images))
	for i := range sc.Images {
		views := []vk.ImageView{sc.Views[i], sc.Depths[i].View}
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(sc.dev.Device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      sc.RenderPass,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}, nil, &fb)
		if err := opError("create framebuffer", ret); err != nil {
			return err
		}
		sc.Framebuffers = append(sc.Framebuffers, fb)
	}
	return nil
}

// makeSync makes the semaphores and the in-flight fences of every frame
// slot. The fences start signalled so the first wait on each returns.
func (sc *Swapchain) makeSync() error {
	n := sc.dev.FlightCount()
	sc.ImageAvailable = make([]vk.Semaphore, 0, n)
	sc.RenderFinished = make([]vk.Semaphore, 0, n)
	sc.InFlight = make([]vk.Fence, 0, n)
	semInfo := &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	fenceInfo := &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	for range n {
		var avail, done vk.Semaphore
		var fence vk.Fence
		if err := opError("create semaphore", vk.CreateSemaphore(sc.dev.Device, semInfo, nil, &avail)); err != nil {
			return err
		}
		sc.ImageAvailable = append(sc.ImageAvailable, avail)
		if err := opError("create semaphore", vk.CreateSemaphore(sc.dev.Device, semInfo, nil, &done)); err != nil {
			return err
		}
		sc.RenderFinished = append(sc.RenderFinished, done)
		if err := opError("create fence", vk.CreateFence(sc.dev.Device, fenceInfo, nil, &fence)); err != nil {
			return err
		}
		sc.InFlight = append(sc.InFlight, fence)
	}
	return nil
}

// FlightCount returns the number of frame slots.
func (sc *Swapchain) FlightCount() int { return sc.dev.FlightCount() }

// CurrentFrame returns the frame slot of the next acquisition.
func (sc *Swapchain) CurrentFrame() int { return sc.current }

// ImageCount returns the number of presentable images.
func (sc *Swapchain) ImageCount() int { return len(sc.Images) }

// FramebufferCount returns the number of framebuffers.
func (sc *Swapchain) FramebufferCount() int { return len(sc.Framebuffers) }

// Extent returns the extent of the images.
func (sc *Swapchain) Extent() gpu.Extent { return sc.extent }

// AcquireNextImage waits on the in-flight fence of the current slot and
// acquires the next image, signalling the slot's image-available semaphore.
func (sc *Swapchain) AcquireNextImage() (uint32, gpu.Status, error) {
	dev := sc.dev.Device
	fence := sc.InFlight[sc.current]
	ret := vk.WaitForFences(dev, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
	if err := opError("wait for in-flight fence", ret); err != nil {
		return 0, gpu.StatusOK, err
	}
	var image uint32
	ret = vk.AcquireNextImage(dev, sc.Swapchain, vk.MaxUint64, sc.ImageAvailable[sc.current], vk.NullFence, &image)
	status, err := StatusOf(ret)
	if err != nil {
		return 0, status, errors.Errorf("vgpu: acquire next image: %w", err)
	}
	return image, status, nil
}

// SubmitCommandBuffers submits the recorded commands of the current slot
// and presents the image, then advances to the next slot.
func (sc *Swapchain) SubmitCommandBuffers(cmd gpu.Commands, image uint32) (gpu.Status, error) {
	dev := sc.dev.Device
	fence := sc.InFlight[sc.current]
	if err := opError("reset in-flight fence", vk.ResetFences(dev, 1, []vk.Fence{fence})); err != nil {
		return gpu.StatusOK, err
	}

	done := []vk.Semaphore{sc.RenderFinished[sc.current]}
	ret := vk.QueueSubmit(sc.dev.Graphics, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{sc.ImageAvailable[sc.current]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{VkCmd(cmd)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    done,
	}}, fence)
	if err := opError("submit draw command buffer", ret); err != nil {
		return gpu.StatusOK, err
	}

	ret = vk.QueuePresent(sc.dev.Present, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    done,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Swapchain},
		PImageIndices:      []uint32{image},
	})
	sc.current = (sc.current + 1) % sc.FlightCount()
	status, err := StatusOf(ret)
	if err != nil {
		return status, errors.Errorf("vgpu: present swapchain image: %w", err)
	}
	return status, nil
}

// CompareFormats returns whether other has the same color and depth formats.
func (sc *Swapchain) CompareFormats(other render.Swapchain) bool {
	o, ok := other.(*Swapchain)
	return ok && o.Format.Format == sc.Format.Format && o.DepthFormat == sc.DepthFormat
}

// Destroy destroys everything the swapchain owns. The device must be idle.
func (sc *Swapchain) Destroy() {
	if sc.dev == nil {
		return
	}
	dev := sc.dev.Device
	for _, fb := range sc.Framebuffers {
		vk.DestroyFramebuffer(dev, fb, nil)
	}
	sc.Framebuffers = nil
	for _, im := range sc.Depths {
		im.Destroy()
	}
	sc.Depths = nil
	for _, v := range sc.Views {
		vk.DestroyImageView(dev, v, nil)
	}
	sc.Views = nil
	if sc.RenderPass != nil {
		vk.DestroyRenderPass(dev, sc.RenderPass, nil)
		sc.RenderPass = nil
	}
	for i := range sc.InFlight {
		vk.DestroyFence(dev, sc.InFlight[i], nil)
	}
	for i := range sc.ImageAvailable {
		vk.DestroySemaphore(dev, sc.ImageAvailable[i], nil)
	}
	for i := range sc.RenderFinished {
		vk.DestroySemaphore(dev, sc.RenderFinished[i], nil)
	}
	sc.InFlight, sc.ImageAvailable, sc.RenderFinished = nil, nil, nil
	if sc.Swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(dev, sc.Swapchain, nil)
		sc.Swapchain = vk.NullSwapchain
	}
	sc.Images = nil
	if sc.dev.swapchain == sc {
		sc.dev.swapchain = nil
	}
	sc.dev = nil
}

// ChooseSurfaceFormat prefers B8G8R8A8 unorm with the sRGB non-linear
// color space, else the first format available. Formats must be
// dereferenced.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("vgpu: surface has no pixel formats")
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, nil
		}
	}
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: formats[0].ColorSpace}, nil
	}
	return formats[0], nil
}

// ChooseExtent returns the surface's current extent when it is defined,
// else the window extent clamped into the supported range.
func ChooseExtent(current, min, max, window gpu.Extent) gpu.Extent {
	if current.Width != vk.MaxUint32 {
		return current
	}
	return gpu.Extent{
		Width:  clamp(window.Width, min.Width, max.Width),
		Height: clamp(window.Height, min.Height, max.Height),
	}
}

// ChooseImageCount returns want raised to min and, when max is
// non-zero, lowered to max.
func ChooseImageCount(want, min, max uint32) uint32 {
	if max == 0 {
		return maxOf(want, min)
	}
	return clamp(want, min, max)
}

// ChooseDepthFormat returns the first candidate that supported accepts.
func ChooseDepthFormat(candidates []vk.Format, supported func(vk.Format) bool) (vk.Format, error) {
	for _, f := range candidates {
		if supported(f) {
			return f, nil
		}
	}
	return vk.FormatUndefined, errors.New("vgpu: no supported depth format")
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
