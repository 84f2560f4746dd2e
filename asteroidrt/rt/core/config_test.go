package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldConfigIsValid(t *testing.T) {
	cfg := DefaultFieldConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 12500, cfg.GroupSize())
	assert.Equal(t, float32(150), cfg.RingRadius(0))
	assert.Equal(t, float32(45), cfg.RingRadius(7))
}

func TestFieldConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FieldConfig)
		target error
	}{
		{"zero amount", func(c *FieldConfig) { c.Amount = 0 }, ErrInvalidConfig},
		{"zero groups", func(c *FieldConfig) { c.Groups = 0 }, ErrInvalidConfig},
		{"fewer instances than groups", func(c *FieldConfig) { c.Amount = 4 }, ErrInvalidConfig},
		{"uneven groups", func(c *FieldConfig) { c.Amount = 100001 }, ErrUnevenGroups},
		{"negative offset", func(c *FieldConfig) { c.Offset = -1 }, ErrInvalidConfig},
		{"inner ring collapses", func(c *FieldConfig) { c.GapSize = 30 }, ErrRingRadius},
		{"limit above groups", func(c *FieldConfig) { c.RotateLimit = 9 }, ErrInvalidConfig},
		{"negative limit", func(c *FieldConfig) { c.RotateLimit = -1 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFieldConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.target)
		})
	}
}

func TestGroupOf(t *testing.T) {
	cfg := FieldConfig{Amount: 800, Groups: 8, Radius: 150, GapSize: 15}
	assert.Equal(t, 0, cfg.GroupOf(0))
	assert.Equal(t, 0, cfg.GroupOf(99))
	assert.Equal(t, 1, cfg.GroupOf(100))
	assert.Equal(t, 7, cfg.GroupOf(799))
}
