package gpu

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/gekko3d/asteroids/asteroidrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice hands out nil buffers and remembers the requested descriptor.
type fakeDevice struct {
	descriptors []wgpu.BufferDescriptor
}

func (d *fakeDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	d.descriptors = append(d.descriptors, *desc)
	return nil, nil
}

// mirrorQueue applies writes to a host byte slice standing in for the buffer.
type mirrorQueue struct {
	mem    []byte
	writes int
}

func (q *mirrorQueue) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	if int(offset)+len(data) > len(q.mem) {
		grown := make([]byte, int(offset)+len(data))
		copy(grown, q.mem)
		q.mem = grown
	}
	copy(q.mem[offset:], data)
	q.writes++
	return nil
}

func (q *mirrorQueue) transform(i int) core.InstanceTransform {
	var m core.InstanceTransform
	base := i * int(InstanceStride)
	for k := range m {
		m[k] = math.Float32frombits(binary.LittleEndian.Uint32(q.mem[base+k*4:]))
	}
	return m
}

func randomTransforms(rng *rand.Rand, n int) []core.InstanceTransform {
	out := make([]core.InstanceTransform, n)
	for i := range out {
		out[i] = core.Transform{
			Position: mgl32.Vec3{rng.Float32() * 100, rng.Float32(), rng.Float32() * 100},
			Scale:    0.1 + rng.Float32(),
			Angle:    rng.Float32() * 6,
		}.ObjectToWorld()
	}
	return out
}

func TestInstanceStride(t *testing.T) {
	assert.Equal(t, uint64(64), InstanceStride)
}

func TestNewInstanceBufferUploadsEverything(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	initial := randomTransforms(rng, 50)
	dev := &fakeDevice{}
	q := &mirrorQueue{}

	ib, err := NewInstanceBuffer(dev, q, initial)
	require.NoError(t, err)

	require.Len(t, dev.descriptors, 1)
	desc := dev.descriptors[0]
	assert.Equal(t, uint64(50*64), desc.Size)
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, desc.Usage)

	assert.Equal(t, 50, ib.Capacity())
	assert.Equal(t, uint64(50*64), ib.Size())
	assert.Equal(t, 1, q.writes)
	for i := range initial {
		assert.Equal(t, initial[i], q.transform(i))
	}
}

func TestNewInstanceBufferRejectsEmpty(t *testing.T) {
	_, err := NewInstanceBuffer(&fakeDevice{}, &mirrorQueue{}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestUpdateRangeTouchesOnlyRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	initial := randomTransforms(rng, 64)
	q := &mirrorQueue{}
	ib, err := NewInstanceBuffer(&fakeDevice{}, q, initial)
	require.NoError(t, err)

	for round := 0; round < 20; round++ {
		offset := rng.Intn(64)
		count := rng.Intn(64 - offset + 1)
		before := append([]byte(nil), q.mem...)
		data := randomTransforms(rng, count)

		require.NoError(t, ib.UpdateRange(offset, count, data))

		for i := 0; i < 64; i++ {
			lo, hi := i*64, (i+1)*64
			if i >= offset && i < offset+count {
				assert.Equal(t, data[i-offset], q.transform(i))
			} else {
				assert.Equal(t, before[lo:hi], q.mem[lo:hi], "round %d slot %d changed", round, i)
			}
		}
	}
}

func TestUpdateRangeOutOfBounds(t *testing.T) {
	initial := randomTransforms(rand.New(rand.NewSource(3)), 10)
	q := &mirrorQueue{}
	ib, err := NewInstanceBuffer(&fakeDevice{}, q, initial)
	require.NoError(t, err)
	writes := q.writes

	tests := []struct {
		name          string
		offset, count int
		data          []core.InstanceTransform
	}{
		{"past end", 8, 3, initial[:3]},
		{"negative offset", -1, 2, initial[:2]},
		{"negative count", 0, -1, nil},
		{"short data", 0, 5, initial[:4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ib.UpdateRange(tt.offset, tt.count, tt.data), core.ErrRangeOutOfBounds)
		})
	}

	assert.NoError(t, ib.UpdateRange(10, 0, nil))
	assert.Equal(t, writes, q.writes, "rejected and empty updates must not write")
}

func TestInstanceVertexLayout(t *testing.T) {
	layout := InstanceVertexLayout(InstanceLocation)
	assert.Equal(t, uint64(64), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layout.StepMode)
	require.Len(t, layout.Attributes, 4)
	for col, attr := range layout.Attributes {
		assert.Equal(t, wgpu.VertexFormatFloat32x4, attr.Format)
		assert.Equal(t, uint64(col*16), attr.Offset)
		assert.Equal(t, uint32(InstanceLocation+col), attr.ShaderLocation)
	}
}
