package shaders

import (
	_ "embed"
)

//go:embed asteroids.wgsl
var AsteroidsWGSL string

//go:embed planet.wgsl
var PlanetWGSL string

//go:embed text.wgsl
var TextWGSL string
