package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraMovement int

const (
	MoveForward CameraMovement = iota
	MoveBackward
	MoveLeft
	MoveRight
)

const (
	minMoveSpeed = 2.5
	maxMoveSpeed = 500.0
	maxPitch     = 89.0
)

// CameraState is a Y-up fly camera. Yaw and Pitch are in degrees.
type CameraState struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32
	Sensitivity float32
	Fov         float32
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position:    mgl32.Vec3{-275, 165, 200},
		Yaw:         -36,
		Pitch:       -26,
		Speed:       250,
		Sensitivity: 0.1,
		Fov:         45,
	}
}

func (c *CameraState) GetForward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *CameraState) GetRight() mgl32.Vec3 {
	return c.GetForward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *CameraState) GetViewMatrix() mgl32.Mat4 {
	forward := c.GetForward()
	up := c.GetRight().Cross(forward).Normalize()
	return mgl32.LookAtV(c.Position, c.Position.Add(forward), up)
}

func (c *CameraState) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, 0.1, 1000.0)
}

// ProcessKeyboard moves the camera for dt seconds.
func (c *CameraState) ProcessKeyboard(dir CameraMovement, dt float32) {
	velocity := c.Speed * dt
	switch dir {
	case MoveForward:
		c.Position = c.Position.Add(c.GetForward().Mul(velocity))
	case MoveBackward:
		c.Position = c.Position.Sub(c.GetForward().Mul(velocity))
	case MoveLeft:
		c.Position = c.Position.Sub(c.GetRight().Mul(velocity))
	case MoveRight:
		c.Position = c.Position.Add(c.GetRight().Mul(velocity))
	}
}

// ProcessMouseMovement applies a cursor delta; dy grows upwards.
func (c *CameraState) ProcessMouseMovement(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// ProcessScroll adjusts movement speed proportionally to the current speed.
func (c *CameraState) ProcessScroll(dy float32) {
	delta := mgl32.Clamp(c.Speed/20, 1, 100) * dy
	c.Speed = mgl32.Clamp(c.Speed+delta, minMoveSpeed, maxMoveSpeed)
}
