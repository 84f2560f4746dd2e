package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceTransform is one instance's model matrix. mgl32 stores it column-major,
// which is what the instance vertex attributes feed to the shader.
type InstanceTransform = mgl32.Mat4

// TumbleAxis is the fixed axis every asteroid's initial random rotation uses.
var TumbleAxis = mgl32.Vec3{0.4, 0.6, 0.8}

type Transform struct {
	Position mgl32.Vec3
	Scale    float32
	Angle    float32 // radians about TumbleAxis
}

// ObjectToWorld composes M = T * S * R, so rotation and scale happen in local
// space before the instance is moved onto its orbit.
func (t Transform) ObjectToWorld() InstanceTransform {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale, t.Scale, t.Scale)
	rotate := mgl32.HomogRotate3D(t.Angle, TumbleAxis.Normalize())

	return translate.Mul4(scale).Mul4(rotate)
}

// ScaleFactors returns the lengths of the three basis columns of m.
func ScaleFactors(m InstanceTransform) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// LinearDet is the determinant of the upper-left 3x3 block.
func LinearDet(m InstanceTransform) float32 {
	return m.Mat3().Det()
}

func Translation(m InstanceTransform) mgl32.Vec3 {
	return m.Col(3).Vec3()
}
