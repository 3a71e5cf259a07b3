// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"log/slog"
	"time"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/scene"
)

// DefaultClear is the near-black clear color with far-plane depth.
var DefaultClear = gpu.ClearValues{Color: [4]float32{0.01, 0.01, 0.01, 1}, Depth: 1}

// Sequencer drives the per-frame state machine
// Idle → Acquiring → Recording → Submitted → Idle, dropping the
// tick and recreating the swapchain when acquisition reports staleness.
// It is confined to the presentation thread.
type Sequencer struct {
	Device  Device
	Window  Window
	Drawer  Drawer
	Overlay Overlay

	Clear gpu.ClearValues

	// how long to sleep between extent polls while the window is minimized
	ExtentPoll time.Duration

	swapchain Swapchain

	// recording session
	frameIndex      int
	imageIndex      uint32
	frameInProgress bool

	recreations int
	dropped     int
}

// New returns a sequencer with its first swapchain and pipelines built.
// The overlay may be nil.
func New(dev Device, win Window, drawer Drawer, overlay Overlay) (*Sequencer, error) {
	sq := &Sequencer{
		Device:     dev,
		Window:     win,
		Drawer:     drawer,
		Overlay:    overlay,
		Clear:      DefaultClear,
		ExtentPoll: 10 * time.Millisecond,
	}
	if err := sq.RecreateSwapchain(); err != nil {
		return nil, err
	}
	if sq.swapchain == nil {
		return nil, errors.New("render: window closed before the first swapchain was built")
	}
	return sq, nil
}

// Swapchain returns the current swapchain.
func (sq *Sequencer) Swapchain() Swapchain { return sq.swapchain }

// FrameIndex returns the rotating frame slot of the next frame.
func (sq *Sequencer) FrameIndex() int { return sq.frameIndex }

// FrameInProgress returns whether a recording session is open.
func (sq *Sequencer) FrameInProgress() bool { return sq.frameInProgress }

// AspectRatio returns the aspect ratio of the swapchain extent.
func (sq *Sequencer) AspectRatio() float32 { return sq.swapchain.Extent().Aspect() }

// Recreations returns how many times the swapchain was built.
func (sq *Sequencer) Recreations() int { return sq.recreations }

// Dropped returns how many ticks were dropped without drawing.
func (sq *Sequencer) Dropped() int { return sq.dropped }

// Render runs one full presentation cycle for the snapshot, or drops
// it when the swapchain is stale or the window is minimized.
func (sq *Sequencer) Render(snap *scene.Snapshot) error {
	if sq.Window.Extent().IsZero() {
		// wait for a usable extent in recreation rather than acquire
		sq.dropped++
		return sq.RecreateSwapchain()
	}
	cmd, err := sq.beginFrame(snap)
	if err != nil || cmd == nil {
		return err
	}

	cmd.BeginRenderPass(sq.imageIndex, sq.swapchain.Extent(), sq.Clear)
	sq.Drawer.DrawSkybox(cmd, snap)
	sq.Drawer.DrawEntities(cmd, snap)
	if sq.Overlay != nil {
		sq.Overlay.Record(cmd, snap)
	}
	cmd.EndRenderPass()

	return sq.endFrame(cmd)
}

// beginFrame acquires the next image and begins recording. It returns
// a nil target, after recreating the swapchain, when the swapchain is stale.
func (sq *Sequencer) beginFrame(snap *scene.Snapshot) (gpu.Commands, error) {
	errors.Assert(!sq.frameInProgress, "render: beginFrame while a frame is in progress")
	errors.Assert(sq.frameIndex == sq.swapchain.CurrentFrame(), "render: frame slot out of step with the swapchain")

	image, status, err := sq.swapchain.AcquireNextImage()
	if err != nil {
		return nil, errors.Errorf("render: failed to acquire swapchain image: %w", err)
	}
	if status == gpu.StatusOutOfDate {
		slog.Debug("swapchain out of date on acquire, dropping frame", "frame", sq.frameIndex)
		sq.dropped++
		return nil, sq.RecreateSwapchain()
	}

	sq.imageIndex = image
	sq.frameInProgress = true
	if err := sq.Drawer.Upload(sq.frameIndex, snap); err != nil {
		return nil, err
	}
	cmd := sq.Device.Commands(sq.frameIndex)
	if err := cmd.Begin(); err != nil {
		return nil, errors.Errorf("render: failed to begin recording command buffer: %w", err)
	}
	return cmd, nil
}

// endFrame ends recording, submits and presents, and recreates the
// swapchain when presentation reports staleness or the window was resized.
func (sq *Sequencer) endFrame(cmd gpu.Commands) error {
	errors.Assert(sq.frameInProgress, "render: endFrame while no frame is in progress")
	errors.Assert(cmd.Frame() == sq.frameIndex, "render: commands recorded for another frame slot")

	if err := cmd.End(); err != nil {
		return errors.Errorf("render: failed to record command buffer: %w", err)
	}
	status, err := sq.swapchain.SubmitCommandBuffers(cmd, sq.imageIndex)
	if err != nil {
		return errors.Errorf("render: failed to present swapchain image: %w", err)
	}
	sq.frameInProgress = false
	sq.frameIndex = (sq.frameIndex + 1) % sq.swapchain.FlightCount()

	if status.NeedsRecreate() || sq.Window.WasResized() {
		slog.Debug("recreating swapchain after present", "status", status, "resized", sq.Window.WasResized())
		sq.Window.ResetResized()
		return sq.RecreateSwapchain()
	}
	return nil
}

// RecreateSwapchain blocks until the window has a nonzero extent, waits
// for the device to go idle, then rebuilds the swapchain chained to the
// previous one and rebuilds the graphics pipelines. It returns without
// rebuilding if the window is closed while waiting.
func (sq *Sequencer) RecreateSwapchain() error {
	ext := sq.Window.Extent()
	for ext.IsZero() {
		if sq.Window.ShouldClose() {
			slog.Info("window closing, swapchain not recreated")
			return nil
		}
		time.Sleep(sq.ExtentPoll)
		ext = sq.Window.Extent()
	}
	if err := sq.Device.WaitIdle(); err != nil {
		return errors.Errorf("render: wait idle: %w", err)
	}

	old := sq.swapchain
	sc, err := sq.Device.NewSwapchain(old, ext)
	if err != nil {
		return errors.Errorf("render: failed to create swapchain: %w", err)
	}
	if old != nil {
		same := old.CompareFormats(sc)
		old.Destroy()
		if !same {
			sq.swapchain = nil
			sc.Destroy()
			return errors.New("render: swapchain image or depth formats have changed")
		}
	}
	sq.swapchain = sc
	if err := sq.Drawer.Rebuild(sc); err != nil {
		return errors.Errorf("render: failed to rebuild pipelines: %w", err)
	}
	sq.recreations++
	slog.Info("swapchain built", "extent", sc.Extent(), "images", sc.ImageCount(), "frames", sc.FlightCount())
	return nil
}

// Destroy destroys the swapchain. The device must be idle.
func (sq *Sequencer) Destroy() {
	if sq.swapchain != nil {
		sq.swapchain.Destroy()
		sq.swapchain = nil
	}
}
