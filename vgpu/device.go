// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/render"
	vk "github.com/goki/vulkan"
)

// Device is the logical device presenting to one window surface,
// with its graphics and present queues and the command buffers of
// every frame slot. It implements [render.Device].
type Device struct {
	GPU *GPU

	// Surface is the window surface presented to. The device owns it.
	Surface vk.Surface

	// Device is the logical device.
	Device vk.Device

	GraphicsIndex uint32
	PresentIndex  uint32
	Graphics      vk.Queue
	Present       vk.Queue

	// CmdPool holds the frame command buffers and one-time upload buffers.
	CmdPool vk.CommandPool

	// Frames are the command buffers, one per frame slot.
	Frames []*CmdBuffer

	// swapchain is the swapchain last made by NewSwapchain, whose render
	// pass and framebuffers the frame command buffers record into.
	swapchain *Swapchain
}

var _ render.Device = (*Device)(nil)

// NewDevice makes the logical device for the surface, with flightCount
// frame slots. It takes ownership of the surface.
func NewDevice(gp *GPU, surface vk.Surface, flightCount int) (*Device, error) {
	if flightCount < 1 {
		return nil, errors.Errorf("vgpu: invalid flight count %d", flightCount)
	}
	dv := &Device{GPU: gp, Surface: surface}
	if err := dv.findQueues(); err != nil {
		dv.Destroy()
		return nil, err
	}
	if err := dv.makeDevice(); err != nil {
		dv.Destroy()
		return nil, err
	}
	if err := dv.makeCommands(flightCount); err != nil {
		dv.Destroy()
		return nil, err
	}
	return dv, nil
}

// findQueues picks the first family with graphics support and the first
// family able to present to the surface, preferring one doing both.
func (dv *Device) findQueues() error {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dv.GPU.Physical, &count, nil)
	if count == 0 {
		return errors.New("vgpu: no queue families found on the physical device")
	}
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(dv.GPU.Physical, &count, families)

	graphics, present := -1, -1
	for i := range families {
		families[i].Deref()
		isGraphics := families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(dv.GPU.Physical, uint32(i), dv.Surface, &supported)
		canPresent := supported.B()
		if isGraphics && canPresent {
			graphics, present = i, i
			break
		}
		if isGraphics && graphics < 0 {
			graphics = i
		}
		if canPresent && present < 0 {
			present = i
		}
	}
	if graphics < 0 {
		return errors.New("vgpu: no queue family with graphics capabilities")
	}
	if present < 0 {
		return errors.New("vgpu: no queue family able to present to the surface")
	}
	dv.GraphicsIndex = uint32(graphics)
	dv.PresentIndex = uint32(present)
	return nil
}

func (dv *Device) makeDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: dv.GraphicsIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	if dv.PresentIndex != dv.GraphicsIndex {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: dv.PresentIndex,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	var device vk.Device
	ret := vk.CreateDevice(dv.GPU.Physical, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(dv.GPU.DeviceExts)),
		PpEnabledExtensionNames: SafeStrings(dv.GPU.DeviceExts),
		EnabledLayerCount:       uint32(len(dv.GPU.Layers)),
		PpEnabledLayerNames:     SafeStrings(dv.GPU.Layers),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.True,
		}},
	}, nil, &device)
	if err := opError("create device", ret); err != nil {
		return err
	}
	dv.Device = device

	var queue vk.Queue
	vk.GetDeviceQueue(dv.Device, dv.GraphicsIndex, 0, &queue)
	dv.Graphics = queue
	vk.GetDeviceQueue(dv.Device, dv.PresentIndex, 0, &queue)
	dv.Present = queue
	return nil
}

func (dv *Device) makeCommands(flightCount int) error {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(dv.Device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: dv.GraphicsIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := opError("create command pool", ret); err != nil {
		return err
	}
	dv.CmdPool = pool

	buffs := make([]vk.CommandBuffer, flightCount)
	ret = vk.AllocateCommandBuffers(dv.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        dv.CmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(flightCount),
	}, buffs)
	if err := opError("allocate command buffers", ret); err != nil {
		return err
	}
	dv.Frames = make([]*CmdBuffer, flightCount)
	for i, b := range buffs {
		dv.Frames[i] = &CmdBuffer{dev: dv, frame: i, Buff: b}
	}
	return nil
}

// FlightCount returns the number of frame slots.
func (dv *Device) FlightCount() int { return len(dv.Frames) }

// WaitIdle blocks until the device has finished all submitted work.
func (dv *Device) WaitIdle() error {
	return opError("device wait idle", vk.DeviceWaitIdle(dv.Device))
}

// NewSwapchain makes a swapchain for the extent, chained to old when
// it is non-nil. The frame command buffers record into the new one.
func (dv *Device) NewSwapchain(old render.Swapchain, extent gpu.Extent) (render.Swapchain, error) {
	var prev *Swapchain
	if old != nil {
		prev = old.(*Swapchain)
	}
	sc, err := newSwapchain(dv, prev, extent)
	if err != nil {
		return nil, err
	}
	dv.swapchain = sc
	return sc, nil
}

// Commands returns the command buffer of the frame slot.
func (dv *Device) Commands(frame int) gpu.Commands {
	return dv.Frames[frame]
}

// SubmitOnce records commands with fn into a one-time command buffer,
// submits it to the graphics queue and waits until it has completed.
func (dv *Device) SubmitOnce(fn func(cmd vk.CommandBuffer)) error {
	buffs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(dv.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        dv.CmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffs)
	if err := opError("allocate command buffer", ret); err != nil {
		return err
	}
	defer vk.FreeCommandBuffers(dv.Device, dv.CmdPool, 1, buffs)
	cmd := buffs[0]

	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := opError("begin command buffer", ret); err != nil {
		return err
	}
	fn(cmd)
	if err := opError("end command buffer", vk.EndCommandBuffer(cmd)); err != nil {
		return err
	}

	var fence vk.Fence
	ret = vk.CreateFence(dv.Device, &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}, nil, &fence)
	if err := opError("create fence", ret); err != nil {
		return err
	}
	defer vk.DestroyFence(dv.Device, fence, nil)

	ret = vk.QueueSubmit(dv.Graphics, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffs,
	}}, fence)
	if err := opError("queue submit", ret); err != nil {
		return err
	}
	return opError("wait for upload", vk.WaitForFences(dv.Device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64))
}

// allocate allocates device memory meeting the requirements.
func (dv *Device) allocate(reqs vk.MemoryRequirements, props vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	index, ok := FindMemoryType(dv.GPU.MemoryProperties, reqs.MemoryTypeBits, props)
	if !ok {
		return vk.NullDeviceMemory, errors.Errorf("vgpu: no memory type with properties %#x", uint32(props))
	}
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(dv.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	}, nil, &mem)
	if err := opError("allocate memory", ret); err != nil {
		return vk.NullDeviceMemory, err
	}
	return mem, nil
}

// Destroy destroys the command pool, the device and the surface.
// The swapchain and every resource made on the device must be
// destroyed first.
func (dv *Device) Destroy() {
	if dv.Device != nil {
		vk.DeviceWaitIdle(dv.Device)
		if dv.CmdPool != nil {
			vk.DestroyCommandPool(dv.Device, dv.CmdPool, nil)
			dv.CmdPool = nil
		}
		vk.DestroyDevice(dv.Device, nil)
		dv.Device = nil
	}
	dv.Frames = nil
	dv.swapchain = nil
	if dv.Surface != vk.NullSurface && dv.GPU != nil {
		vk.DestroySurface(dv.GPU.Instance, dv.Surface, nil)
		dv.Surface = vk.NullSurface
	}
}
