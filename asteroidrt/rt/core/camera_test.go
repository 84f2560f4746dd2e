package core

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCameraState()
	assert.Equal(t, mgl32.Vec3{-275, 165, 200}, c.Position)
	assert.Equal(t, float32(250), c.Speed)

	f := c.GetForward()
	assert.InDelta(t, 1, f.Len(), 1e-5)
	assert.Less(t, f.Y(), float32(0), "default view looks down at the belt")
}

func TestCameraPitchClamped(t *testing.T) {
	c := NewCameraState()
	c.ProcessMouseMovement(0, 10000)
	assert.Equal(t, float32(89), c.Pitch)
	c.ProcessMouseMovement(0, -20000)
	assert.Equal(t, float32(-89), c.Pitch)

	yaw := c.Yaw
	c.ProcessMouseMovement(50, 0)
	assert.InDelta(t, yaw+5, c.Yaw, 1e-4)
}

func TestCameraScrollSpeed(t *testing.T) {
	c := NewCameraState()

	// 250/20 = 12.5 per notch
	c.ProcessScroll(1)
	assert.InDelta(t, 262.5, c.Speed, 1e-4)

	c.ProcessScroll(1000)
	assert.Equal(t, float32(500), c.Speed)

	c.ProcessScroll(-1000)
	assert.Equal(t, float32(2.5), c.Speed)

	// Slow speeds still move by at least one unit per notch.
	c.ProcessScroll(1)
	assert.InDelta(t, 3.5, c.Speed, 1e-4)
}

func TestCameraKeyboard(t *testing.T) {
	c := NewCameraState()
	c.Speed = 10
	start := c.Position
	forward := c.GetForward()

	c.ProcessKeyboard(MoveForward, 0.5)
	assert.True(t, c.Position.ApproxEqualThreshold(start.Add(forward.Mul(5)), 1e-3))

	c.ProcessKeyboard(MoveBackward, 0.5)
	assert.True(t, c.Position.ApproxEqualThreshold(start, 1e-3))

	c.ProcessKeyboard(MoveRight, 1)
	c.ProcessKeyboard(MoveLeft, 1)
	assert.True(t, c.Position.ApproxEqualThreshold(start, 1e-3))
}

func TestCameraViewLooksForward(t *testing.T) {
	c := NewCameraState()
	target := c.Position.Add(c.GetForward().Mul(10))

	// The view matrix puts points straight ahead on the -Z axis.
	v := c.GetViewMatrix().Mul4x1(target.Vec4(1))
	assert.InDelta(t, 0, v.X(), 1e-3)
	assert.InDelta(t, 0, v.Y(), 1e-3)
	assert.InDelta(t, -10, v.Z(), 1e-3)
}

func TestTimeTick(t *testing.T) {
	start := time.Unix(100, 0)
	clock := NewTime(start)
	assert.Zero(t, clock.Dt)

	clock.Tick(start.Add(16 * time.Millisecond))
	assert.Equal(t, 16*time.Millisecond, clock.Dt)
	assert.InDelta(t, 0.016, clock.Seconds(), 1e-6)
}
