// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vpbr draws the scene with the vgpu backend: a skybox
// pipeline and a physically based pipeline for the entities, the
// per-frame uniform buffers they read, and the upload of meshes,
// materials and the cubemap.
package vpbr

import (
	"log/slog"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/gpu"
	"cogentcore.org/spacesim/loader"
	"cogentcore.org/spacesim/render"
	"cogentcore.org/spacesim/scene"
	"cogentcore.org/spacesim/vgpu"
	vk "github.com/goki/vulkan"
)

// frame holds the uniform buffers and descriptor sets of one frame slot.
type frame struct {
	globals *vgpu.Buffer
	lights  *vgpu.Buffer

	globalSet vk.DescriptorSet
	lightsSet vk.DescriptorSet
}

// Drawer records the skybox and the entities of a snapshot. It owns
// both graphics pipelines and every resource it uploads.
type Drawer struct {
	dev *vgpu.Device

	globalLayout   vk.DescriptorSetLayout
	lightsLayout   vk.DescriptorSetLayout
	texturesLayout vk.DescriptorSetLayout
	cubemapLayout  vk.DescriptorSetLayout

	pool   *vgpu.DescriptorPool
	frames []frame

	// SPIR-V code, read once
	pbrVert, pbrFrag       []byte
	skyboxVert, skyboxFrag []byte

	pbr    *vgpu.Pipeline
	skybox *vgpu.Pipeline

	meshes    []*Mesh
	materials []*Material
	skyboxes  []*Skybox
}

var _ render.Drawer = (*Drawer)(nil)

// NewDrawer makes the set layouts, descriptor pool and per-frame uniform
// buffers, and reads the shaders in shaderDir. The pipelines are built
// by the first [Drawer.Rebuild].
func NewDrawer(dev *vgpu.Device, shaderDir string) (*Drawer, error) {
	dr := &Drawer{dev: dev}
	if err := dr.readShaders(shaderDir); err != nil {
		return nil, err
	}
	if err := dr.makeLayouts(); err != nil {
		dr.Destroy()
		return nil, err
	}
	if err := dr.makeFrames(dev.FlightCount()); err != nil {
		dr.Destroy()
		return nil, err
	}
	return dr, nil
}

func (dr *Drawer) readShaders(dir string) error {
	var err error
	vert, frag := shaderPaths(dir, PBRVertex, PBRFragment)
	if dr.pbrVert, err = vgpu.OpenShader(vert); err != nil {
		return err
	}
	if dr.pbrFrag, err = vgpu.OpenShader(frag); err != nil {
		return err
	}
	vert, frag = shaderPaths(dir, SkyboxVertex, SkyboxFragment)
	if dr.skyboxVert, err = vgpu.OpenShader(vert); err != nil {
		return err
	}
	dr.skyboxFrag, err = vgpu.OpenShader(frag)
	return err
}

func (dr *Drawer) makeLayouts() error {
	var err error
	const both = vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit
	if dr.globalLayout, err = vgpu.NewSetLayout(dr.dev, vgpu.UniformBinding(0, both)); err != nil {
		return err
	}
	if dr.lightsLayout, err = vgpu.NewSetLayout(dr.dev, vgpu.UniformBinding(0, vk.ShaderStageFragmentBit)); err != nil {
		return err
	}
	var textures []vgpu.Binding
	for i := range loader.TextureSlots {
		textures = append(textures, vgpu.SamplerBinding(uint32(i), vk.ShaderStageFragmentBit))
	}
	if dr.texturesLayout, err = vgpu.NewSetLayout(dr.dev, textures...); err != nil {
		return err
	}
	dr.cubemapLayout, err = vgpu.NewSetLayout(dr.dev, vgpu.SamplerBinding(0, vk.ShaderStageFragmentBit))
	return err
}

func (dr *Drawer) makeFrames(flight int) error {
	sets, sizes := PoolSizes(flight, MaxMaterials)
	pool, err := vgpu.NewDescriptorPool(dr.dev, sets, sizes)
	if err != nil {
		return err
	}
	dr.pool = pool
	dr.frames = make([]frame, flight)
	for i := range dr.frames {
		fr := &dr.frames[i]
		if fr.globals, err = vgpu.NewUniformBuffer(dr.dev, GlobalsSize); err != nil {
			return err
		}
		if fr.lights, err = vgpu.NewUniformBuffer(dr.dev, LightsSize); err != nil {
			return err
		}
		if fr.globalSet, err = pool.Allocate(dr.globalLayout); err != nil {
			return err
		}
		if fr.lightsSet, err = pool.Allocate(dr.lightsLayout); err != nil {
			return err
		}
		pool.WriteBuffer(fr.globalSet, 0, fr.globals)
		pool.WriteBuffer(fr.lightsSet, 0, fr.lights)
	}
	return nil
}

// Rebuild destroys the pipelines and builds them again for the render
// pass and extent of sc.
func (dr *Drawer) Rebuild(sc render.Swapchain) error {
	vs, ok := sc.(*vgpu.Swapchain)
	if !ok {
		return errors.Errorf("vpbr: swapchain %T is not a vgpu swapchain", sc)
	}
	dr.destroyPipelines()
	var err error
	cfg := skyboxConfig(dr.skyboxVert, dr.skyboxFrag, []vk.DescriptorSetLayout{dr.globalLayout, dr.cubemapLayout})
	if dr.skybox, err = vgpu.NewPipeline(dr.dev, vs.RenderPass, cfg); err != nil {
		return err
	}
	cfg = pbrConfig(dr.pbrVert, dr.pbrFrag, []vk.DescriptorSetLayout{dr.globalLayout, dr.lightsLayout, dr.texturesLayout})
	if dr.pbr, err = vgpu.NewPipeline(dr.dev, vs.RenderPass, cfg); err != nil {
		return err
	}
	slog.Debug("rebuilt pipelines", "extent", vs.Extent())
	return nil
}

// Upload writes the globals and lights of the snapshot into the
// uniform buffers of the frame slot.
func (dr *Drawer) Upload(frame int, snap *scene.Snapshot) error {
	errors.Assert(frame >= 0 && frame < len(dr.frames), "vpbr: upload to an unknown frame slot")
	fr := &dr.frames[frame]
	g := snap.Globals()
	if err := fr.globals.Write(vgpu.Bytes(&g)); err != nil {
		return err
	}
	return fr.lights.Write(vgpu.Bytes(&snap.Lights))
}

func (dr *Drawer) slot(cmd gpu.Commands) *frame {
	f := cmd.Frame()
	errors.Assert(f >= 0 && f < len(dr.frames), "vpbr: recording on an unknown frame slot")
	return &dr.frames[f]
}

// DrawSkybox draws the snapshot's skybox, if any, around the camera.
func (dr *Drawer) DrawSkybox(cmd gpu.Commands, snap *scene.Snapshot) {
	if snap.Skybox == nil {
		return
	}
	c := vgpu.VkCmd(cmd)
	dr.skybox.Bind(c)
	dr.skybox.BindSets(c, SetGlobals, dr.slot(cmd).globalSet)
	push := SkyboxPush{Model: snap.SkyboxModel}
	vgpu.Push(c, dr.skybox, &push)
	snap.Skybox.Draw(cmd)
}

// DrawEntities draws every item of the snapshot in order, each with
// its own model and normal matrices.
func (dr *Drawer) DrawEntities(cmd gpu.Commands, snap *scene.Snapshot) {
	if len(snap.Items) == 0 {
		return
	}
	c := vgpu.VkCmd(cmd)
	fr := dr.slot(cmd)
	dr.pbr.Bind(c)
	dr.pbr.BindSets(c, SetGlobals, fr.globalSet, fr.lightsSet)
	for i := range snap.Items {
		it := &snap.Items[i]
		push := PBRPush{Model: it.Model, Normal: it.Normal}
		vgpu.Push(c, dr.pbr, &push)
		it.Draw(cmd)
	}
}

func (dr *Drawer) destroyPipelines() {
	if dr.skybox != nil {
		dr.skybox.Destroy()
		dr.skybox = nil
	}
	if dr.pbr != nil {
		dr.pbr.Destroy()
		dr.pbr = nil
	}
}

// Destroy destroys the pipelines, the uploaded resources, the uniform
// buffers and the set layouts. The device must be idle.
func (dr *Drawer) Destroy() {
	dr.destroyPipelines()
	for _, m := range dr.meshes {
		m.destroy()
	}
	for _, m := range dr.materials {
		m.destroy()
	}
	for _, sb := range dr.skyboxes {
		sb.destroy()
	}
	dr.meshes, dr.materials, dr.skyboxes = nil, nil, nil
	for _, fr := range dr.frames {
		if fr.globals != nil {
			fr.globals.Destroy()
		}
		if fr.lights != nil {
			fr.lights.Destroy()
		}
	}
	dr.frames = nil
	if dr.pool != nil {
		dr.pool.Destroy()
		dr.pool = nil
	}
	for _, l := range []*vk.DescriptorSetLayout{&dr.globalLayout, &dr.lightsLayout, &dr.texturesLayout, &dr.cubemapLayout} {
		vgpu.DestroySetLayout(dr.dev, *l)
		*l = nil
	}
}
