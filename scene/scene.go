// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene holds the simulated world: entities with their
// transforms and GPU handles, the lights, and the per-tick
// [Snapshot] handed from the simulation to the presentation thread.
package scene

import (
	"maps"
	"slices"

	"cogentcore.org/spacesim/gpu"
)

// Mesh is uploaded geometry that binds its vertex and index
// buffers and issues its draw call.
type Mesh interface {
	Draw(cmd gpu.Commands)
}

// Material is an uploaded set of textures bound as one descriptor set.
type Material interface {
	Bind(cmd gpu.Commands)
}

// Drawable is anything that can record its own draw.
type Drawable interface {
	Draw(cmd gpu.Commands)
}

// Entity is a drawable object in the world. The GPU resources behind
// Mesh and Material are owned elsewhere and outlive every snapshot.
type Entity struct {

	// unique identifier, see loader.IDGen
	ID int

	Name string

	Transform Transform

	Mesh Mesh

	Material Material
}

// Scene is the set of entities keyed by their identifier.
// Objects are lit scene geometry; Stars are entities that
// also emit light, one light per star up to [MaxLights].
type Scene struct {
	Objects map[int]*Entity
	Stars   map[int]*Entity

	Skybox Drawable
}

// New returns a new empty scene.
func New() *Scene {
	return &Scene{
		Objects: map[int]*Entity{},
		Stars:   map[int]*Entity{},
	}
}

// Add adds an object entity.
func (sc *Scene) Add(e *Entity) {
	sc.Objects[e.ID] = e
}

// AddStar adds a light-emitting entity.
func (sc *Scene) AddStar(e *Entity) {
	sc.Stars[e.ID] = e
}

// ByName returns the first entity with the given name,
// searching objects then stars, or nil.
func (sc *Scene) ByName(name string) *Entity {
	for _, m := range []map[int]*Entity{sc.Objects, sc.Stars} {
		for _, e := range Sorted(m) {
			if e.Name == name {
				return e
			}
		}
	}
	return nil
}

// Sorted returns the entities of m in ascending ID order.
func Sorted(m map[int]*Entity) []*Entity {
	ids := slices.Sorted(maps.Keys(m))
	es := make([]*Entity, len(ids))
	for i, id := range ids {
		es[i] = m[id]
	}
	return es
}
