package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("invalid field config")
	ErrRingRadius       = errors.New("innermost ring radius must be positive")
	ErrUnevenGroups     = errors.New("instance count must divide evenly into rotate groups")
	ErrRangeOutOfBounds = errors.New("instance range out of bounds")
)

// FieldConfig describes the asteroid belt layout and its rotate groups.
type FieldConfig struct {
	Amount      int     // N, number of instances
	Groups      int     // G, number of rotate groups (rings)
	Radius      float32 // outer ring radius
	GapSize     float32 // radial distance between neighbouring rings
	Offset      float32 // max positional jitter on each axis
	RotateLimit int     // initial number of outer groups that rotate
	Step        float32 // yaw applied to rotating instances each frame, radians
}

func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Amount:      100000,
		Groups:      8,
		Radius:      150,
		GapSize:     15,
		Offset:      4,
		RotateLimit: 1,
		Step:        0.002,
	}
}

func (c FieldConfig) Validate() error {
	if c.Amount <= 0 {
		return fmt.Errorf("%w: amount %d must be positive", ErrInvalidConfig, c.Amount)
	}
	if c.Groups <= 0 {
		return fmt.Errorf("%w: groups %d must be positive", ErrInvalidConfig, c.Groups)
	}
	if c.Amount < c.Groups {
		return fmt.Errorf("%w: amount %d is smaller than groups %d", ErrInvalidConfig, c.Amount, c.Groups)
	}
	if c.Amount%c.Groups != 0 {
		return fmt.Errorf("%w: %d instances over %d groups leaves %d over", ErrUnevenGroups, c.Amount, c.Groups, c.Amount%c.Groups)
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: offset %v must not be negative", ErrInvalidConfig, c.Offset)
	}
	if inner := c.RingRadius(c.Groups - 1); inner <= 0 {
		return fmt.Errorf("%w: radius %v - %d*%v = %v", ErrRingRadius, c.Radius, c.Groups-1, c.GapSize, inner)
	}
	if c.RotateLimit < 0 || c.RotateLimit > c.Groups {
		return fmt.Errorf("%w: rotate limit %d outside [0, %d]", ErrInvalidConfig, c.RotateLimit, c.Groups)
	}
	return nil
}

// GroupSize is the number of instances per ring.
func (c FieldConfig) GroupSize() int {
	if c.Groups <= 0 {
		return 0
	}
	return c.Amount / c.Groups
}

// GroupOf returns the ring index of instance i. Group 0 is the outermost ring.
func (c FieldConfig) GroupOf(i int) int {
	size := c.GroupSize()
	if size == 0 {
		return 0
	}
	return i / size
}

func (c FieldConfig) RingRadius(group int) float32 {
	return c.Radius - float32(group)*c.GapSize
}
