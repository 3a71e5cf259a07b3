// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// ImageFormat describes the size, format and layering of an image.
type ImageFormat struct {
	Width  uint32
	Height uint32
	Format vk.Format

	// Layers is the number of array layers: 1, or 6 for a cubemap.
	Layers uint32

	// Cube makes the image cube compatible and its view a cube view.
	Cube bool
}

// Aspect returns the image aspect of the format.
func (f ImageFormat) Aspect() vk.ImageAspectFlagBits {
	switch f.Format {
	case vk.FormatD32Sfloat:
		return vk.ImageAspectDepthBit
	case vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint:
		return vk.ImageAspectDepthBit | vk.ImageAspectStencilBit
	}
	return vk.ImageAspectColorBit
}

// ViewType returns the image view type of the format.
func (f ImageFormat) ViewType() vk.ImageViewType {
	if f.Cube {
		return vk.ImageViewTypeCube
	}
	return vk.ImageViewType2d
}

// Image is a device local Vulkan image with its own memory and view.
type Image struct {
	dev    *Device
	Format ImageFormat
	Image  vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
}

// NewImage makes an image with the given format and usage, in device
// local memory, with a standard view.
func NewImage(dev *Device, format ImageFormat, usage vk.ImageUsageFlagBits) (*Image, error) {
	if format.Layers == 0 {
		format.Layers = 1
	}
	im := &Image{dev: dev, Format: format}
	var flags vk.ImageCreateFlags
	if format.Cube {
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}
	var image vk.Image
	ret := vk.CreateImage(dev.Device, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: vk.ImageType2d,
		Format:    format.Format,
		Extent: vk.Extent3D{
			Width:  format.Width,
			Height: format.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   format.Layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if err := opError("create image", ret); err != nil {
		return nil, err
	}
	im.Image = image

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev.Device, image, &reqs)
	reqs.Deref()
	mem, err := dev.allocate(reqs, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		im.Destroy()
		return nil, err
	}
	im.Memory = mem
	if err := opError("bind image memory", vk.BindImageMemory(dev.Device, image, mem, 0)); err != nil {
		im.Destroy()
		return nil, err
	}
	view, err := newView(dev.Device, image, format)
	if err != nil {
		im.Destroy()
		return nil, err
	}
	im.View = view
	return im, nil
}

// newView makes the standard view of an image covering all its layers.
func newView(dev vk.Device, image vk.Image, format ImageFormat) (vk.ImageView, error) {
	layers := format.Layers
	if layers == 0 {
		layers = 1
	}
	var view vk.ImageView
	ret := vk.CreateImageView(dev, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: format.ViewType(),
		Format:   format.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(format.Aspect()),
			LevelCount: 1,
			LayerCount: layers,
		},
	}, nil, &view)
	if err := opError("create image view", ret); err != nil {
		return nil, err
	}
	return view, nil
}

// Upload copies the tightly packed pixels of every layer into the
// image and leaves it in the shader-read-only layout. Every layer must
// hold Width*Height*texelSize bytes.
func (im *Image) Upload(layers [][]byte) error {
	if uint32(len(layers)) != im.Format.Layers {
		return errors.Errorf("vgpu: upload of %d layers into an image of %d", len(layers), im.Format.Layers)
	}
	layerSize := len(layers[0])
	data := make([]byte, 0, layerSize*len(layers))
	for i, l := range layers {
		if len(l) != layerSize {
			return errors.Errorf("vgpu: layer %d has %d bytes, want %d", i, len(l), layerSize)
		}
		data = append(data, l...)
	}
	staging, err := NewBuffer(im.dev, len(data), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	defer staging.Destroy()
	if err := staging.Write(data); err != nil {
		return err
	}

	return im.dev.SubmitOnce(func(cmd vk.CommandBuffer) {
		im.transition(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		vk.CmdCopyBufferToImage(cmd, staging.Buffer, im.Image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: im.Format.Layers,
			},
			ImageExtent: vk.Extent3D{Width: im.Format.Width, Height: im.Format.Height, Depth: 1},
		}})
		im.transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
}

// transition records a layout transition barrier for every layer.
// Only the two upload transitions are supported.
func (im *Image) transition(cmd vk.CommandBuffer, from, to vk.ImageLayout) {
	var srcAccess, dstAccess vk.AccessFlagBits
	var srcStage, dstStage vk.PipelineStageFlagBits
	switch {
	case from == vk.ImageLayoutUndefined && to == vk.ImageLayoutTransferDstOptimal:
		dstAccess = vk.AccessTransferWriteBit
		srcStage, dstStage = vk.PipelineStageTopOfPipeBit, vk.PipelineStageTransferBit
	case from == vk.ImageLayoutTransferDstOptimal && to == vk.ImageLayoutShaderReadOnlyOptimal:
		srcAccess, dstAccess = vk.AccessTransferWriteBit, vk.AccessShaderReadBit
		srcStage, dstStage = vk.PipelineStageTransferBit, vk.PipelineStageFragmentShaderBit
	default:
		errors.Assert(false, "vgpu: unsupported image layout transition")
	}
	vk.CmdPipelineBarrier(cmd, vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage), 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(srcAccess),
			DstAccessMask:       vk.AccessFlags(dstAccess),
			OldLayout:           from,
			NewLayout:           to,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               im.Image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(im.Format.Aspect()),
				LevelCount: 1,
				LayerCount: im.Format.Layers,
			},
		}})
}

// Destroy destroys the view, the image and its memory.
func (im *Image) Destroy() {
	if im.dev == nil {
		return
	}
	dev := im.dev.Device
	if im.View != nil {
		vk.DestroyImageView(dev, im.View, nil)
		im.View = nil
	}
	if im.Image != nil {
		vk.DestroyImage(dev, im.Image, nil)
		im.Image = nil
	}
	if im.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(dev, im.Memory, nil)
		im.Memory = vk.NullDeviceMemory
	}
	im.dev = nil
}

// Texture is a sampled image: an uploaded [Image] with its sampler.
type Texture struct {
	*Image
	Sampler vk.Sampler
}

// NewTexture uploads RGBA8 sRGB pixel layers of the given size into a
// new sampled image. Six layers with cube set make a cubemap.
func NewTexture(dev *Device, width, height int, layers [][]byte, cube bool) (*Texture, error) {
	format := ImageFormat{
		Width:  uint32(width),
		Height: uint32(height),
		Format: vk.FormatR8g8b8a8Srgb,
		Layers: uint32(len(layers)),
		Cube:   cube,
	}
	if cube && format.Layers != 6 {
		return nil, errors.Errorf("vgpu: cubemap needs 6 layers, got %d", format.Layers)
	}
	im, err := NewImage(dev, format, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}
	if err := im.Upload(layers); err != nil {
		im.Destroy()
		return nil, err
	}
	mode := vk.SamplerAddressModeRepeat
	if cube {
		mode = vk.SamplerAddressModeClampToEdge
	}
	sampler, err := NewSampler(dev, mode)
	if err != nil {
		im.Destroy()
		return nil, err
	}
	return &Texture{Image: im, Sampler: sampler}, nil
}

// NewSampler makes a linear, anisotropic sampler with the address mode
// on all three axes.
func NewSampler(dev *Device, mode vk.SamplerAddressMode) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(dev.Device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            mode,
		AddressModeV:            mode,
		AddressModeW:            mode,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           dev.GPU.Properties.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}, nil, &sampler)
	if err := opError("create sampler", ret); err != nil {
		return nil, err
	}
	return sampler, nil
}

// Destroy destroys the sampler and the image.
func (tx *Texture) Destroy() {
	if tx.Image == nil {
		return
	}
	if tx.Sampler != nil && tx.dev != nil {
		vk.DestroySampler(tx.dev.Device, tx.Sampler, nil)
		tx.Sampler = nil
	}
	tx.Image.Destroy()
}
