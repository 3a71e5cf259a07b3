// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"unsafe"

	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// Buffer is a Vulkan buffer bound to its own device memory.
// Host visible buffers stay mapped for their whole life.
type Buffer struct {
	dev    *Device
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   int

	// mapped is the host pointer of a host visible buffer, else nil.
	mapped unsafe.Pointer
}

// NewBuffer makes a buffer of the given size and usage, in memory with
// the given properties. Host visible memory is mapped.
func NewBuffer(dev *Device, size int, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("vgpu: invalid buffer size %d", size)
	}
	bf := &Buffer{dev: dev, Size: size}
	var buffer vk.Buffer
	ret := vk.CreateBuffer(dev.Device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Usage:       vk.BufferUsageFlags(usage),
		Size:        vk.DeviceSize(size),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if err := opError("create buffer", ret); err != nil {
		return nil, err
	}
	bf.Buffer = buffer

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev.Device, buffer, &reqs)
	reqs.Deref()
	mem, err := dev.allocate(reqs, props)
	if err != nil {
		bf.Destroy()
		return nil, err
	}
	bf.Memory = mem
	if err := opError("bind buffer memory", vk.BindBufferMemory(dev.Device, buffer, mem, 0)); err != nil {
		bf.Destroy()
		return nil, err
	}

	if props&vk.MemoryPropertyHostVisibleBit != 0 {
		var ptr unsafe.Pointer
		ret := vk.MapMemory(dev.Device, mem, 0, vk.DeviceSize(size), 0, &ptr)
		if err := opError("map memory", ret); err != nil {
			bf.Destroy()
			return nil, err
		}
		bf.mapped = ptr
	}
	return bf, nil
}

// NewUniformBuffer makes a host visible, coherent uniform buffer.
func NewUniformBuffer(dev *Device, size int) (*Buffer, error) {
	return NewBuffer(dev, size, vk.BufferUsageUniformBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
}

// NewDeviceBuffer makes a device local buffer with the given usage
// holding data, copied through a staging buffer.
func NewDeviceBuffer(dev *Device, data []byte, usage vk.BufferUsageFlagBits) (*Buffer, error) {
	staging, err := NewBuffer(dev, len(data), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()
	if err := staging.Write(data); err != nil {
		return nil, err
	}

	bf, err := NewBuffer(dev, len(data), usage|vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	err = dev.SubmitOnce(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, staging.Buffer, bf.Buffer, 1, []vk.BufferCopy{{Size: vk.DeviceSize(len(data))}})
	})
	if err != nil {
		bf.Destroy()
		return nil, err
	}
	return bf, nil
}

// Write copies data into the start of a host visible buffer.
func (bf *Buffer) Write(data []byte) error {
	if bf.mapped == nil {
		return errors.New("vgpu: write to a buffer that is not host visible")
	}
	if len(data) > bf.Size {
		return errors.Errorf("vgpu: write of %d bytes into a %d byte buffer", len(data), bf.Size)
	}
	vk.Memcopy(bf.mapped, data)
	return nil
}

// Destroy unmaps and frees the buffer.
func (bf *Buffer) Destroy() {
	if bf.dev == nil {
		return
	}
	dev := bf.dev.Device
	if bf.mapped != nil {
		vk.UnmapMemory(dev, bf.Memory)
		bf.mapped = nil
	}
	if bf.Buffer != vk.NullBuffer {
		vk.DestroyBuffer(dev, bf.Buffer, nil)
		bf.Buffer = vk.NullBuffer
	}
	if bf.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(dev, bf.Memory, nil)
		bf.Memory = vk.NullDeviceMemory
	}
	bf.dev = nil
}

// FindMemoryType returns the index of the first memory type allowed by
// typeBits that has all of the wanted properties.
func FindMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		flags := props.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(want) == vk.MemoryPropertyFlags(want) {
			return i, true
		}
	}
	return 0, false
}

// Bytes returns the memory of v as a byte slice, for uploading
// fixed layout values such as uniform blocks.
func Bytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// SliceBytes returns the memory of the elements of s as a byte slice.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
