package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestObjectToWorld(t *testing.T) {
	tr := Transform{
		Position: mgl32.Vec3{10, -2, 3},
		Scale:    0.25,
		Angle:    mgl32.DegToRad(73),
	}
	m := tr.ObjectToWorld()

	assert.Equal(t, tr.Position, Translation(m))
	for i, s := range ScaleFactors(m) {
		assert.InDelta(t, 0.25, s, 1e-5, "column %d", i)
	}
	assert.InDelta(t, 0.25*0.25*0.25, LinearDet(m), 1e-6)

	// Rotation about the tumble axis leaves the axis itself fixed.
	axis := TumbleAxis.Normalize()
	moved := m.Mul4x1(axis.Vec4(0)).Vec3()
	assert.True(t, moved.ApproxEqualThreshold(axis.Mul(0.25), 1e-5), "axis moved to %v", moved)
}
