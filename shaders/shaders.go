// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaders holds the GLSL sources of the pipelines. The SPIR-V
// read at startup is compiled into spv/ with glslc, the shader
// compiler of the Vulkan SDK:
//
//	go generate ./shaders
package shaders

//go:generate glslc -fshader-stage=vertex pbr.vert -o spv/pbr.vert.spv
//go:generate glslc -fshader-stage=fragment pbr.frag -o spv/pbr.frag.spv
//go:generate glslc -fshader-stage=vertex skybox.vert -o spv/skybox.vert.spv
//go:generate glslc -fshader-stage=fragment skybox.frag -o spv/skybox.frag.spv
//go:generate glslc -fshader-stage=vertex fill.vert -o spv/fill.vert.spv
//go:generate glslc -fshader-stage=fragment fill.frag -o spv/fill.frag.spv
