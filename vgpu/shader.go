// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vgpu

import (
	"encoding/binary"
	"os"
	"unsafe"

	"cogentcore.org/spacesim/base/errors"
	vk "github.com/goki/vulkan"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// CheckSPIRV returns an error if code is not a plausible SPIR-V module.
func CheckSPIRV(code []byte) error {
	if len(code) < 20 || len(code)%4 != 0 {
		return errors.Errorf("vgpu: SPIR-V code of %d bytes is not a whole module", len(code))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != SPIRVMagic {
		return errors.Errorf("vgpu: bad SPIR-V magic number %#x", magic)
	}
	return nil
}

// OpenShader reads and checks a compiled SPIR-V file.
func OpenShader(filename string) ([]byte, error) {
	code, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	if err := CheckSPIRV(code); err != nil {
		return nil, errors.Errorf("%s: %w", filename, err)
	}
	return code, nil
}

// SliceUint32 returns the words of SPIR-V code without copying.
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// NewShaderModule makes a shader module from SPIR-V code.
func NewShaderModule(dev *Device, code []byte) (vk.ShaderModule, error) {
	if err := CheckSPIRV(code); err != nil {
		return nil, err
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(dev.Device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}, nil, &module)
	if err := opError("create shader module", ret); err != nil {
		return nil, err
	}
	return module, nil
}
