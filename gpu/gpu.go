// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu holds the backend-neutral vocabulary shared by the
// frame sequencer and its Vulkan implementation: extents,
// presentation results and the command recording target.
package gpu

import "fmt"

// Extent is a size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero returns true if either dimension is zero, as it
// is for a minimized window.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// Aspect returns width / height, or 1 for a zero extent.
func (e Extent) Aspect() float32 {
	if e.IsZero() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Status is the outcome of an image acquisition or presentation.
// Staleness is reported as a Status, not as an error.
type Status int32

const (
	// StatusOK means the operation succeeded.
	StatusOK Status = iota

	// StatusSuboptimal means the image was acquired or presented but
	// the swapchain no longer matches the surface exactly.
	StatusSuboptimal

	// StatusOutOfDate means the swapchain can no longer be used
	// with the surface and must be recreated.
	StatusOutOfDate
)

// NeedsRecreate returns true for statuses that call for swapchain
// recreation after a presentation.
func (s Status) NeedsRecreate() bool {
	return s == StatusSuboptimal || s == StatusOutOfDate
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out-of-date"
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// ClearValues are the values the color and depth attachments are
// cleared to at the start of a render pass.
type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// Commands is the command recording target for one frame slot.
// Begin and End bracket recording; BeginRenderPass and EndRenderPass
// bracket the single render pass of a frame.
type Commands interface {
	// Frame returns the rotating frame slot this target records for.
	Frame() int

	Begin() error

	// BeginRenderPass begins the render pass on the framebuffer of the
	// given swapchain image and sets a full-extent dynamic viewport and scissor.
	BeginRenderPass(image uint32, extent Extent, clear ClearValues)

	EndRenderPass()

	End() error
}
