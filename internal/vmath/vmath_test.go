package vmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAngleVectorsCardinal(t *testing.T) {
	assert.True(t, AngleVectors(mgl64.Vec3{0, 0, 0}).ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9))
	assert.True(t, AngleVectors(mgl64.Vec3{0, 90, 0}).ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9))
	assert.True(t, AngleVectors(mgl64.Vec3{90, 0, 0}).ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9))
	assert.True(t, AngleVectors(mgl64.Vec3{-90, 0, 0}).ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9))
}

func TestVectorAnglesRoundTrip(t *testing.T) {
	for _, ang := range []mgl64.Vec3{{10, 20, 0}, {45, 300, 0}, {350, 180, 0}} {
		back := VectorAngles(AngleVectors(ang))
		assert.InDelta(t, ang[0], back[0], 1e-6)
		assert.InDelta(t, ang[1], back[1], 1e-6)
	}
}

func TestVectorAnglesVertical(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{270, 0, 0}, VectorAngles(mgl64.Vec3{0, 0, 1}))
	assert.Equal(t, mgl64.Vec3{90, 0, 0}, VectorAngles(mgl64.Vec3{0, 0, -1}))
}

func TestRayBoxHitsNearFace(t *testing.T) {
	box := Box{Min: mgl64.Vec3{10, -1, -1}, Max: mgl64.Vec3{12, 1, 1}}
	frac, normal, ok := RayBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{20, 0, 0}, box)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, frac, 1e-9)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, normal)

	frac, normal, ok = RayBox(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{0, 0, 0}, box)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, frac, 1e-9)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, normal)
}

func TestRayBoxMisses(t *testing.T) {
	box := Box{Min: mgl64.Vec3{10, -1, -1}, Max: mgl64.Vec3{12, 1, 1}}
	_, _, ok := RayBox(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{20, 5, 0}, box)
	assert.False(t, ok)

	_, _, ok = RayBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0, 0}, box)
	assert.False(t, ok, "segment stops short")

	_, _, ok = RayBox(mgl64.Vec3{11, 0, 0}, mgl64.Vec3{30, 0, 0}, box)
	assert.False(t, ok, "start in solid")
}
