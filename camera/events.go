// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package camera

// Events accumulates window input between two ticks. The window
// callbacks feed it while events are pumped, on the producer's
// thread, and [Events.Apply] hands the result to the tick's
// [InputState].
type Events struct {
	held    [KeysN]bool
	pressed [KeysN]bool

	mouseHeld    bool
	mousePressed bool

	// pointer in framebuffer pixels
	x, y float32

	width, height float32
}

// Key records a key going down or up. Keys outside the bound set are ignored.
func (ev *Events) Key(k Key, down bool) {
	if k < 0 || k >= KeysN {
		return
	}
	if down && !ev.held[k] {
		ev.pressed[k] = true
	}
	ev.held[k] = down
}

// Mouse records the left mouse button going down or up.
func (ev *Events) Mouse(down bool) {
	if down && !ev.mouseHeld {
		ev.mousePressed = true
	}
	ev.mouseHeld = down
}

// Pointer records the pointer position in framebuffer pixels.
func (ev *Events) Pointer(x, y float32) {
	ev.x, ev.y = x, y
}

// Size records the framebuffer size used to center the cursor.
func (ev *Events) Size(width, height int) {
	ev.width, ev.height = float32(width), float32(height)
}

// Apply copies the accumulated input into in and starts a new tick:
// presses are reported once, held state carries over.
func (ev *Events) Apply(in *InputState) {
	in.Held = ev.held
	in.Pressed = ev.pressed
	in.MouseHeld = ev.mouseHeld
	in.MousePressed = ev.mousePressed
	in.PointerX, in.PointerY = ev.x, ev.y
	in.CursorX = ev.x - ev.width/2
	in.CursorY = ev.y - ev.height/2
	ev.pressed = [KeysN]bool{}
	ev.mousePressed = false
}
