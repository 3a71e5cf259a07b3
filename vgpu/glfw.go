// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
)

// note: this file holds the glfw dependencies, for desktop platform builds.

// Init initializes glfw and loads the Vulkan entry points through it.
// Must be called before any other vgpu function.
// IMPORTANT: must be called on the main initial thread!
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Errorf("vgpu: glfw init: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("vgpu: glfw reports no Vulkan loader")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Errorf("vgpu: vulkan init: %w", err)
	}
	return nil
}

// Terminate shuts down glfw. Call as the last thing before quitting.
// IMPORTANT: must be called on the main initial thread!
func Terminate() {
	glfw.Terminate()
}

// WindowExtensions returns the instance extensions glfw needs
// to present to the given window.
func WindowExtensions(win *glfw.Window) []string {
	return win.GetRequiredInstanceExtensions()
}

// NewSurface creates the presentation surface of the window.
func NewSurface(gp *GPU, win *glfw.Window) (vk.Surface, error) {
	ptr, err := win.CreateWindowSurface(gp.Instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Errorf("vgpu: failed to create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(ptr), nil
}
