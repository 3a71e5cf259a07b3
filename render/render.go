// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render drives one presentation cycle per snapshot:
// image acquisition, render pass recording, submission and
// presentation, and the recreation of the swapchain when it
// goes stale or the window is resized.
package render

import (
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/scene"
)

// Swapchain is the presentation surface: the presentable images with
// their depth buffers and framebuffers, and the per-slot semaphores
// and in-flight fences.
type Swapchain interface {

	// FlightCount is the number of frame slots, each with its own
	// sync objects. It does not depend on the image count.
	FlightCount() int

	// CurrentFrame is the rotating slot used by the next acquisition.
	CurrentFrame() int

	ImageCount() int
	FramebufferCount() int
	Extent() gpu.Extent

	// AcquireNextImage waits on the current slot's in-flight fence and
	// acquires the next presentable image. Staleness is a Status, not an error.
	AcquireNextImage() (uint32, gpu.Status, error)

	// SubmitCommandBuffers submits the recorded commands, presents the image
	// and advances the current slot.
	SubmitCommandBuffers(cmd gpu.Commands, image uint32) (gpu.Status, error)

	// CompareFormats reports whether other uses the same color and depth formats.
	CompareFormats(other Swapchain) bool

	Destroy()
}

// Device is the GPU device the sequencer needs beyond the swapchain.
type Device interface {
	WaitIdle() error

	// NewSwapchain builds a swapchain for the given extent, chained to old
	// when it is non-nil. The caller destroys old afterwards.
	NewSwapchain(old Swapchain, extent gpu.Extent) (Swapchain, error)

	// Commands returns the command recording target of the given frame slot.
	Commands(frame int) gpu.Commands
}

// Window is the window being presented to.
type Window interface {

	// Extent is the framebuffer size in pixels, zero when minimized.
	Extent() gpu.Extent

	WasResized() bool
	ResetResized()

	ShouldClose() bool
}

// Drawer records the scene into a frame and owns the graphics pipelines.
type Drawer interface {

	// Rebuild recreates the graphics pipelines for the swapchain's
	// render pass and extent.
	Rebuild(sc Swapchain) error

	// Upload writes the per-frame uniform data of the given frame slot.
	// The slot's previous submission has completed when it is called.
	Upload(frame int, snap *scene.Snapshot) error

	DrawSkybox(cmd gpu.Commands, snap *scene.Snapshot)
	DrawEntities(cmd gpu.Commands, snap *scene.Snapshot)
}

// Overlay appends its own draws inside an open render pass.
// It must not begin or end the render pass.
type Overlay interface {
	Record(cmd gpu.Commands, snap *scene.Snapshot)
}
