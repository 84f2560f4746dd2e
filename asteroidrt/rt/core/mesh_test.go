package core

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexSize(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Vertex{}))
}

func checkMesh(t *testing.T, mesh Mesh) {
	t.Helper()
	require.NotEmpty(t, mesh.Vertices)
	require.NotZero(t, mesh.IndexCount())
	assert.Zero(t, mesh.IndexCount()%3)
	for _, idx := range mesh.Indices {
		require.Less(t, int(idx), len(mesh.Vertices))
	}
	for i, v := range mesh.Vertices {
		n := mgl32.Vec3(v.Normal)
		assert.InDelta(t, 1, n.Len(), 1e-3, "vertex %d normal", i)
	}
}

func TestNewRockModel(t *testing.T) {
	a := NewRockModel(5)
	b := NewRockModel(5)

	require.Len(t, a.Meshes, 1)
	checkMesh(t, a.Meshes[0])
	assert.NotEqual(t, a.Id, b.Id)
	assert.Equal(t, a.Meshes[0].Vertices, b.Meshes[0].Vertices)

	// 20 faces, each subdivision quadruples them.
	assert.Equal(t, 20*16*3, a.Meshes[0].IndexCount())

	for _, v := range a.Meshes[0].Vertices {
		r := mgl32.Vec3(v.Position).Len()
		assert.GreaterOrEqual(t, r, float32(0.75-1e-4))
		assert.LessOrEqual(t, r, float32(1.25+1e-4))
	}

	require.NotNil(t, a.Texture)
	assert.Equal(t, 128, a.Texture.Bounds().Dx())
}

func TestNewPlanetModel(t *testing.T) {
	m := NewPlanetModel(2, 16, 32)
	require.Len(t, m.Meshes, 1)
	mesh := m.Meshes[0]
	checkMesh(t, mesh)

	assert.Len(t, mesh.Vertices, 17*33)
	assert.Equal(t, 16*32*6, mesh.IndexCount())
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 2, mgl32.Vec3(v.Position).Len(), 1e-4)
	}

	require.NotNil(t, m.Texture)
	assert.Equal(t, 256, m.Texture.Bounds().Dx())
	assert.Equal(t, 128, m.Texture.Bounds().Dy())
}

func TestRockTextureDeterministic(t *testing.T) {
	assert.Equal(t, RockTexture(32, 3).Pix, RockTexture(32, 3).Pix)
}
