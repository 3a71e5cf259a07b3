// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// Binding is one binding of a descriptor set layout.
type Binding struct {
	Binding uint32
	Type    vk.DescriptorType
	Count   uint32
	Stages  vk.ShaderStageFlagBits
}

// UniformBinding returns a binding of one uniform buffer.
func UniformBinding(binding uint32, stages vk.ShaderStageFlagBits) Binding {
	return Binding{Binding: binding, Type: vk.DescriptorTypeUniformBuffer, Count: 1, Stages: stages}
}

// SamplerBinding returns a binding of one combined image sampler.
func SamplerBinding(binding uint32, stages vk.ShaderStageFlagBits) Binding {
	return Binding{Binding: binding, Type: vk.DescriptorTypeCombinedImageSampler, Count: 1, Stages: stages}
}

// NewSetLayout makes a descriptor set layout with the bindings.
func NewSetLayout(dev *Device, bindings ...Binding) (vk.DescriptorSetLayout, error) {
	vb := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vb[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.Type,
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		}
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(dev.Device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vb)),
		PBindings:    vb,
	}, nil, &layout)
	if err := opError("create descriptor set layout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

// DestroySetLayout destroys a layout made by [NewSetLayout].
func DestroySetLayout(dev *Device, layout vk.DescriptorSetLayout) {
	if layout != nil {
		vk.DestroyDescriptorSetLayout(dev.Device, layout, nil)
	}
}

// DescriptorPool allocates descriptor sets. Sets are freed with the pool.
type DescriptorPool struct {
	dev  *Device
	Pool vk.DescriptorPool
}

// NewDescriptorPool makes a pool for up to maxSets sets, with the given
// number of descriptors of each type.
func NewDescriptorPool(dev *Device, maxSets uint32, sizes map[vk.DescriptorType]uint32) (*DescriptorPool, error) {
	ps := make([]vk.DescriptorPoolSize, 0, len(sizes))
	for _, tp := range []vk.DescriptorType{vk.DescriptorTypeUniformBuffer, vk.DescriptorTypeCombinedImageSampler} {
		if n := sizes[tp]; n > 0 {
			ps = append(ps, vk.DescriptorPoolSize{Type: tp, DescriptorCount: n})
		}
	}
	if len(ps) != len(sizes) {
		return nil, errors.New("vgpu: descriptor pool sizes for unsupported descriptor types")
	}
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(dev.Device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(ps)),
		PPoolSizes:    ps,
	}, nil, &pool)
	if err := opError("create descriptor pool", ret); err != nil {
		return nil, err
	}
	return &DescriptorPool{dev: dev, Pool: pool}, nil
}

// Allocate allocates one set with the layout.
func (dp *DescriptorPool) Allocate(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(dp.dev.Device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     dp.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if err := opError("allocate descriptor set", ret); err != nil {
		return nil, err
	}
	return set, nil
}

// WriteBuffer points the binding of the set at the whole buffer.
func (dp *DescriptorPool) WriteBuffer(set vk.DescriptorSet, binding uint32, buf *Buffer) {
	vk.UpdateDescriptorSets(dp.dev.Device, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buf.Buffer,
			Offset: 0,
			Range:  vk.DeviceSize(buf.Size),
		}},
	}}, 0, nil)
}

// WriteTextures points consecutive bindings of the set, starting at
// first, at the textures.
func (dp *DescriptorPool) WriteTextures(set vk.DescriptorSet, first uint32, textures ...*Texture) {
	writes := make([]vk.WriteDescriptorSet, len(textures))
	for i, tx := range textures {
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      first + uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     tx.Sampler,
				ImageView:   tx.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		}
	}
	vk.UpdateDescriptorSets(dp.dev.Device, uint32(len(writes)), writes, 0, nil)
}

// Destroy destroys the pool and every set allocated from it.
func (dp *DescriptorPool) Destroy() {
	if dp.Pool != nil {
		vk.DestroyDescriptorPool(dp.dev.Device, dp.Pool, nil)
		dp.Pool = nil
	}
}
