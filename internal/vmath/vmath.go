// Package vmath holds the engine-convention vector and angle helpers shared by
// the leader core and the simulated host.
//
// Angles are mgl64.Vec3 values laid out as {pitch, yaw, roll} in degrees, with
// positive pitch looking down. Z is up.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var Up = mgl64.Vec3{0, 0, 1}

// AngleVectors returns the unit forward vector for the given view angles.
func AngleVectors(angles mgl64.Vec3) mgl64.Vec3 {
	pitch := mgl64.DegToRad(angles[0])
	yaw := mgl64.DegToRad(angles[1])
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)
	return mgl64.Vec3{cp * cy, cp * sy, -sp}
}

// VectorAngles converts a direction into {pitch, yaw, 0} with both components
// normalised into [0, 360).
func VectorAngles(forward mgl64.Vec3) mgl64.Vec3 {
	var pitch, yaw float64
	if forward[0] == 0 && forward[1] == 0 {
		yaw = 0
		if forward[2] > 0 {
			pitch = 270
		} else {
			pitch = 90
		}
		return mgl64.Vec3{pitch, yaw, 0}
	}

	yaw = mgl64.RadToDeg(math.Atan2(forward[1], forward[0]))
	if yaw < 0 {
		yaw += 360
	}
	flat := math.Hypot(forward[0], forward[1])
	pitch = mgl64.RadToDeg(math.Atan2(-forward[2], flat))
	if pitch < 0 {
		pitch += 360
	}
	return mgl64.Vec3{pitch, yaw, 0}
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v has
// no length.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Box is an axis-aligned bounding box in world space.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Translate returns the box moved by offset.
func (b Box) Translate(offset mgl64.Vec3) Box {
	return Box{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// RayBox intersects the segment start + t*(end-start), t in [0,1], with the
// box using the slab method. It returns the entry fraction and the outward
// normal of the face that was entered. Segments starting inside the box
// report no hit, matching a trace that begins in solid.
func RayBox(start, end mgl64.Vec3, box Box) (float64, mgl64.Vec3, bool) {
	if box.Contains(start) {
		return 0, mgl64.Vec3{}, false
	}

	dir := end.Sub(start)
	tMin, tMax := 0.0, 1.0
	var normal mgl64.Vec3

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-12 {
			if start[axis] < box.Min[axis] || start[axis] > box.Max[axis] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (box.Min[axis] - start[axis]) * inv
		t2 := (box.Max[axis] - start[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = mgl64.Vec3{}
			normal[axis] = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, mgl64.Vec3{}, false
		}
	}

	return tMin, normal, true
}
