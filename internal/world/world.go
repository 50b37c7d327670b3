// Package world defines the collaborator interfaces the combat engine needs
// from the scene and terrain layers. The client core treats both as opaque:
// target ids come back from the scene, walkability from the terrain.
package world

import "arena-client/internal/protocol"

// TargetQuery resolves an attack intent into candidate target entity ids,
// typically by raycasting from the pointer into the scene.
type TargetQuery interface {
	RaycastTargets() []string
}

// Terrain answers walkability and height questions for movement.
type Terrain interface {
	IsWalkable(p protocol.Vec3) bool
	HeightAt(p protocol.Vec3) float64
	// AdjustToWalkable nudges target toward from until it lands on walkable
	// ground. ok is false when no walkable point exists on that line.
	AdjustToWalkable(target, from protocol.Vec3) (adjusted protocol.Vec3, ok bool)
}

// FlatTerrain is the trivial terrain: everything walkable at a fixed height.
// Used by the headless client and tests.
type FlatTerrain struct {
	Height float64
}

func (f FlatTerrain) IsWalkable(protocol.Vec3) bool { return true }

func (f FlatTerrain) HeightAt(protocol.Vec3) float64 { return f.Height }

func (f FlatTerrain) AdjustToWalkable(target, _ protocol.Vec3) (protocol.Vec3, bool) {
	target.Y = f.Height
	return target, true
}

// StaticTargets is a TargetQuery returning a fixed id list. Used by tests and
// the headless client, where no real scene exists to raycast against.
type StaticTargets []string

func (s StaticTargets) RaycastTargets() []string { return s }
