// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"encoding/binary"
	"testing"

	"cogentcore.org/spacesim/gpu"
	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormat(t *testing.T) {
	want := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	f, err := ChooseSurfaceFormat([]vk.SurfaceFormat{other, want})
	require.NoError(t, err)
	assert.Equal(t, want, f)

	f, err = ChooseSurfaceFormat([]vk.SurfaceFormat{other})
	require.NoError(t, err)
	assert.Equal(t, other, f, "falls back to the first format")

	f, err = ChooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatUndefined, ColorSpace: vk.ColorSpaceSrgbNonlinear}})
	require.NoError(t, err)
	assert.Equal(t, want, f, "an undefined only format leaves the choice free")

	_, err = ChooseSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestChooseExtent(t *testing.T) {
	lo := gpu.Extent{Width: 16, Height: 16}
	hi := gpu.Extent{Width: 4096, Height: 2048}

	cur := gpu.Extent{Width: 1600, Height: 900}
	assert.Equal(t, cur, ChooseExtent(cur, lo, hi, gpu.Extent{Width: 10, Height: 10}))

	undefined := gpu.Extent{Width: vk.MaxUint32, Height: vk.MaxUint32}
	assert.Equal(t, gpu.Extent{Width: 800, Height: 600}, ChooseExtent(undefined, lo, hi, gpu.Extent{Width: 800, Height: 600}))
	assert.Equal(t, gpu.Extent{Width: 4096, Height: 16}, ChooseExtent(undefined, lo, hi, gpu.Extent{Width: 9000, Height: 1}))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(2), ChooseImageCount(2, 2, 8))
	assert.Equal(t, uint32(3), ChooseImageCount(2, 3, 8), "raised to the minimum")
	assert.Equal(t, uint32(2), ChooseImageCount(3, 1, 2), "lowered to the maximum")
	assert.Equal(t, uint32(5), ChooseImageCount(5, 2, 0), "zero maximum means no limit")
}

func TestChooseDepthFormat(t *testing.T) {
	only := func(ok ...vk.Format) func(vk.Format) bool {
		return func(f vk.Format) bool {
			for _, o := range ok {
				if o == f {
					return true
				}
			}
			return false
		}
	}
	f, err := ChooseDepthFormat(DepthFormats, only(vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32SfloatS8Uint, f)

	f, err = ChooseDepthFormat(DepthFormats, only(vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32Sfloat, f)

	_, err = ChooseDepthFormat(DepthFormats, only())
	assert.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	st, err := StatusOf(vk.Success)
	require.NoError(t, err)
	assert.Equal(t, gpu.StatusOK, st)

	st, err = StatusOf(vk.Suboptimal)
	require.NoError(t, err)
	assert.Equal(t, gpu.StatusSuboptimal, st)

	st, err = StatusOf(vk.ErrorOutOfDate)
	require.NoError(t, err, "staleness is not an error")
	assert.Equal(t, gpu.StatusOutOfDate, st)

	_, err = StatusOf(vk.ErrorDeviceLost)
	assert.Error(t, err)
}

func TestNewError(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))
	err := opError("queue submit", vk.ErrorDeviceLost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue submit")
}

func TestImageFormatAspect(t *testing.T) {
	assert.Equal(t, vk.ImageAspectColorBit, ImageFormat{Format: vk.FormatR8g8b8a8Srgb}.Aspect())
	assert.Equal(t, vk.ImageAspectDepthBit, ImageFormat{Format: vk.FormatD32Sfloat}.Aspect())
	assert.Equal(t, vk.ImageAspectDepthBit|vk.ImageAspectStencilBit, ImageFormat{Format: vk.FormatD24UnormS8Uint}.Aspect())
	assert.Equal(t, vk.ImageViewTypeCube, ImageFormat{Cube: true, Layers: 6}.ViewType())
	assert.Equal(t, vk.ImageViewType2d, ImageFormat{Layers: 1}.ViewType())
}

func TestCheckSPIRV(t *testing.T) {
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, SPIRVMagic)
	assert.NoError(t, CheckSPIRV(code))
	assert.Len(t, SliceUint32(code), 5)

	assert.Error(t, CheckSPIRV(code[:18]), "not a whole number of words")
	bad := make([]byte, 20)
	assert.Error(t, CheckSPIRV(bad), "wrong magic")
}

func TestFindMemoryType(t *testing.T) {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	i, ok := FindMemoryType(props, 0b111, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), i, "all wanted properties are required")

	i, ok = FindMemoryType(props, 0b011, vk.MemoryPropertyHostVisibleBit)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), i)

	_, ok = FindMemoryType(props, 0b001, vk.MemoryPropertyHostVisibleBit)
	assert.False(t, ok, "type bits exclude the host visible types")
}

func TestBytes(t *testing.T) {
	v := struct{ A, B uint32 }{1, 2}
	b := Bytes(&v)
	require.Len(t, b, 8)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[4:]))

	assert.Len(t, SliceBytes([]float32{1, 2, 3}), 12)
	assert.Nil(t, SliceBytes([]float32{}))
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "main\x00", SafeString("main"))
	assert.Equal(t, "main\x00", SafeString("main\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, SafeStrings([]string{"a", "b"}))
}

func TestDevice(t *testing.T) {
	t.Skip("requires a Vulkan device and a window")
}
