// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package window

import (
	"sync/atomic"

	"cogentcore.org/spacesim/gpu"
)

// size is a framebuffer size read and written as one word, so a
// reader never sees the width of one resize with the height of another.
type size struct {
	v atomic.Uint64
}

// Store records the size. Negative dimensions store as zero.
func (s *size) Store(width, height int) {
	s.v.Store(uint64(uint32(max(0, width)))<<32 | uint64(uint32(max(0, height))))
}

// Load returns the last stored size.
func (s *size) Load() gpu.Extent {
	v := s.v.Load()
	return gpu.Extent{Width: uint32(v >> 32), Height: uint32(v)}
}
