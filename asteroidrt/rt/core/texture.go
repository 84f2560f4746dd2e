package core

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

// RockTexture is a grey speckled texture, size x size.
func RockTexture(size int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	// Coarse value grid, bilinearly sampled, plus per-texel grain.
	const cells = 8
	grid := make([]float64, (cells+1)*(cells+1))
	for i := range grid {
		grid[i] = rng.Float64()
	}
	sample := func(x, y float64) float64 {
		gx, gy := x*cells, y*cells
		x0, y0 := int(gx), int(gy)
		fx, fy := gx-float64(x0), gy-float64(y0)
		at := func(cx, cy int) float64 { return grid[cy*(cells+1)+cx] }
		top := at(x0, y0)*(1-fx) + at(x0+1, y0)*fx
		bottom := at(x0, y0+1)*(1-fx) + at(x0+1, y0+1)*fx
		return top*(1-fy) + bottom*fy
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 0.35 + 0.35*sample(float64(x)/float64(size), float64(y)/float64(size)) + 0.15*rng.Float64()
			g := uint8(math.Min(v, 1) * 255)
			img.SetRGBA(x, y, color.RGBA{R: g, G: uint8(float64(g) * 0.95), B: uint8(float64(g) * 0.9), A: 255})
		}
	}
	return img
}

// PlanetTexture is a banded gas giant texture. Bands run along v.
func PlanetTexture(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bands := []color.RGBA{
		{R: 196, G: 160, B: 120, A: 255},
		{R: 222, G: 196, B: 160, A: 255},
		{R: 170, G: 120, B: 90, A: 255},
		{R: 230, G: 214, B: 186, A: 255},
	}

	for y := 0; y < height; y++ {
		v := float64(y) / float64(height)
		// Wobble the band edges a little so they do not look ruled.
		for x := 0; x < width; x++ {
			u := float64(x) / float64(width)
			t := v*12 + 0.3*math.Sin(u*2*math.Pi*3+v*20)
			idx := int(math.Floor(t)) % len(bands)
			if idx < 0 {
				idx += len(bands)
			}
			img.SetRGBA(x, y, bands[idx])
		}
	}
	return img
}
