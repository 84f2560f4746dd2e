package core

import (
	"image"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// Vertex layout (32 bytes):
// position (12), normal (12), uv (8)
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

type Mesh struct {
	Id       AssetId
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Model is a set of sub-meshes sharing one diffuse texture.
type Model struct {
	Id      AssetId
	Name    string
	Meshes  []Mesh
	Texture *image.RGBA
}

// NewRockModel builds a lumpy icosphere. The shape is fixed by seed.
func NewRockModel(seed int64) *Model {
	mesh := icosphere(2)
	rng := rand.New(rand.NewSource(seed))
	for i := range mesh.Vertices {
		p := mgl32.Vec3(mesh.Vertices[i].Position)
		p = p.Mul(0.75 + rng.Float32()*0.5)
		mesh.Vertices[i].Position = [3]float32(p)
	}
	recomputeNormals(&mesh)

	return &Model{
		Id:      makeAssetId(),
		Name:    "rock",
		Meshes:  []Mesh{mesh},
		Texture: RockTexture(128, seed),
	}
}

// NewPlanetModel builds a UV sphere of the given radius.
func NewPlanetModel(radius float32, stacks, slices int) *Model {
	mesh := Mesh{Id: makeAssetId()}
	for st := 0; st <= stacks; st++ {
		v := float32(st) / float32(stacks)
		phi := float64(v) * math.Pi
		for sl := 0; sl <= slices; sl++ {
			u := float32(sl) / float32(slices)
			theta := float64(u) * 2 * math.Pi
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32(n.Mul(radius)),
				Normal:   [3]float32(n),
				UV:       [2]float32{u, v},
			})
		}
	}

	row := uint32(slices + 1)
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint32(st)*row + uint32(sl)
			b := a + row
			mesh.Indices = append(mesh.Indices, a, a+1, b, a+1, b+1, b)
		}
	}

	return &Model{
		Id:      makeAssetId(),
		Name:    "planet",
		Meshes:  []Mesh{mesh},
		Texture: PlanetTexture(256, 128),
	}
}

func icosphere(subdivisions int) Mesh {
	t := float32((1 + math.Sqrt(5)) / 2)
	positions := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}
	faces := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			p := positions[a].Add(positions[b]).Mul(0.5).Normalize()
			positions = append(positions, p)
			idx := uint32(len(positions) - 1)
			midpoints[key] = idx
			return idx
		}

		next := make([]uint32, 0, len(faces)*4)
		for f := 0; f < len(faces); f += 3 {
			a, b, c := faces[f], faces[f+1], faces[f+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		faces = next
	}

	mesh := Mesh{Id: makeAssetId(), Indices: faces}
	mesh.Vertices = make([]Vertex, len(positions))
	for i, p := range positions {
		u := 0.5 + float32(math.Atan2(float64(p.Z()), float64(p.X())))/(2*math.Pi)
		v := 0.5 - float32(math.Asin(float64(p.Y())))/math.Pi
		mesh.Vertices[i] = Vertex{
			Position: [3]float32(p),
			Normal:   [3]float32(p),
			UV:       [2]float32{u, v},
		}
	}
	return mesh
}

func recomputeNormals(mesh *Mesh) {
	acc := make([]mgl32.Vec3, len(mesh.Vertices))
	for f := 0; f+2 < len(mesh.Indices); f += 3 {
		ia, ib, ic := mesh.Indices[f], mesh.Indices[f+1], mesh.Indices[f+2]
		a := mgl32.Vec3(mesh.Vertices[ia].Position)
		b := mgl32.Vec3(mesh.Vertices[ib].Position)
		c := mgl32.Vec3(mesh.Vertices[ic].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		acc[ia] = acc[ia].Add(n)
		acc[ib] = acc[ib].Add(n)
		acc[ic] = acc[ic].Add(n)
	}
	for i := range mesh.Vertices {
		if acc[i].Len() > 0 {
			mesh.Vertices[i].Normal = [3]float32(acc[i].Normalize())
		}
	}
}
