// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	vk "github.com/goki/vulkan"
)

// NewError returns an error for a non-success Vulkan result,
// and nil for success.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Errorf("vulkan error: %s (%d)", vk.Error(ret).Error(), ret)
}

// opError wraps a non-success result with the name of the operation
// that produced it.
func opError(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Errorf("vgpu: %s: %w", op, NewError(ret))
}

// StatusOf maps the result of an acquisition or presentation to a
// [gpu.Status]. Staleness is not an error.
func StatusOf(ret vk.Result) (gpu.Status, error) {
	switch ret {
	case vk.Success:
		return gpu.StatusOK, nil
	case vk.Suboptimal:
		return gpu.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return gpu.StatusOutOfDate, nil
	}
	return gpu.StatusOK, NewError(ret)
}
