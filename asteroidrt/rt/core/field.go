package core

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minAsteroidScale   = 0.05
	asteroidScaleRange = 0.20
	verticalSquash     = 0.4
)

// GenerateField places cfg.Amount asteroids on cfg.Groups concentric rings.
// Output depends only on cfg and seed.
func GenerateField(cfg FieldConfig, seed int64) ([]InstanceTransform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	jitter := func() float32 {
		return (rng.Float32()*2 - 1) * cfg.Offset
	}

	transforms := make([]InstanceTransform, cfg.Amount)
	for i := range transforms {
		radius := cfg.RingRadius(cfg.GroupOf(i))

		// Angle follows the global index, so every ring covers the full circle.
		angle := float64(i) / float64(cfg.Amount) * 2 * math.Pi
		sin, cos := math.Sincos(angle)

		x := float32(sin)*radius + jitter()
		y := jitter() * verticalSquash
		z := float32(cos)*radius + jitter()

		scale := minAsteroidScale + rng.Float32()*asteroidScaleRange
		rot := mgl32.DegToRad(rng.Float32() * 360)

		transforms[i] = Transform{
			Position: mgl32.Vec3{x, y, z},
			Scale:    scale,
			Angle:    rot,
		}.ObjectToWorld()
	}

	return transforms, nil
}
