// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vgpu implements the presentation surface, the device and the
// GPU resources of the renderer on Vulkan, using the goki/vulkan bindings.
package vgpu

import (
	"log/slog"
	"strings"

	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// ValidationLayer is the standard Khronos validation layer.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// GPU is the Vulkan instance and the physical device chosen from it.
type GPU struct {

	// Name of the application, given to the instance.
	AppName string

	// Instance is the Vulkan instance.
	Instance vk.Instance

	// Physical is the physical device in use.
	Physical vk.PhysicalDevice

	// DeviceName is the name reported by the physical device.
	DeviceName string

	// Properties of the physical device, dereferenced.
	Properties vk.PhysicalDeviceProperties

	// MemoryProperties of the physical device, dereferenced.
	MemoryProperties vk.PhysicalDeviceMemoryProperties

	// InstanceExts are the instance extensions enabled.
	InstanceExts []string

	// DeviceExts are the device extensions required of the physical device.
	DeviceExts []string

	// Layers are the validation layers enabled, if any.
	Layers []string
}

// NewGPU creates the instance with the given instance extensions
// (typically from [WindowExtensions]) and picks a physical device,
// preferring a discrete GPU.
func NewGPU(appName string, instanceExts []string, validation bool) (*GPU, error) {
	gp := &GPU{
		AppName:      appName,
		InstanceExts: instanceExts,
		DeviceExts:   []string{"VK_KHR_swapchain"},
	}
	if validation {
		gp.Layers = []string{ValidationLayer}
	}
	if err := gp.createInstance(); err != nil {
		return nil, err
	}
	if err := gp.pickPhysical(); err != nil {
		gp.Destroy()
		return nil, err
	}
	return gp, nil
}

func (gp *GPU) createInstance() error {
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   SafeString(gp.AppName),
			PEngineName:        SafeString("spacesim"),
		},
		EnabledExtensionCount:   uint32(len(gp.InstanceExts)),
		PpEnabledExtensionNames: SafeStrings(gp.InstanceExts),
		EnabledLayerCount:       uint32(len(gp.Layers)),
		PpEnabledLayerNames:     SafeStrings(gp.Layers),
	}, nil, &instance)
	if err := opError("create instance", ret); err != nil {
		return err
	}
	gp.Instance = instance
	return errors.Wrap(vk.InitInstance(instance))
}

func (gp *GPU) pickPhysical() error {
	var count uint32
	if err := opError("enumerate physical devices", vk.EnumeratePhysicalDevices(gp.Instance, &count, nil)); err != nil {
		return err
	}
	if count == 0 {
		return errors.New("vgpu: no Vulkan physical device found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := opError("enumerate physical devices", vk.EnumeratePhysicalDevices(gp.Instance, &count, devices)); err != nil {
		return err
	}

	pick := 0
	for i, pd := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()
		if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			pick = i
			break
		}
	}
	gp.Physical = devices[pick]
	vk.GetPhysicalDeviceProperties(gp.Physical, &gp.Properties)
	gp.Properties.Deref()
	gp.Properties.Limits.Deref()
	vk.GetPhysicalDeviceMemoryProperties(gp.Physical, &gp.MemoryProperties)
	gp.MemoryProperties.Deref()
	gp.DeviceName = vk.ToString(gp.Properties.DeviceName[:])
	slog.Info("vulkan physical device", "name", gp.DeviceName, "candidates", count)
	return nil
}

// FormatSupports returns whether the format supports the given features
// with optimal tiling.
func (gp *GPU) FormatSupports(format vk.Format, features vk.FormatFeatureFlagBits) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(gp.Physical, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(features) == vk.FormatFeatureFlags(features)
}

// Destroy destroys the instance. Every device must be destroyed first.
func (gp *GPU) Destroy() {
	if gp.Instance == nil {
		return
	}
	vk.DestroyInstance(gp.Instance, nil)
	gp.Instance = nil
}

// SafeString returns s terminated with a null byte, as the
// bindings require for strings passed into Vulkan.
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// SafeStrings applies [SafeString] to every element.
func SafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = SafeString(s)
	}
	return out
}
