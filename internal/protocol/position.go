package protocol

import "math"

// SpawnHeight is the Y coordinate used when the authority omits a position.
// Keeps a newly spawned player above the ground plane instead of inside it.
const SpawnHeight = 0.5

// Vec3 is a world-space position or direction.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SpawnOrigin returns the documented default position for players whose
// position is missing from a remote payload.
func SpawnOrigin() Vec3 {
	return Vec3{X: 0, Y: SpawnHeight, Z: 0}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	return o.Sub(v).Length()
}
