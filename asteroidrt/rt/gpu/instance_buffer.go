package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/asteroids/asteroidrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

// InstanceStride is the byte size of one InstanceTransform (mat4x4<f32>).
const InstanceStride = uint64(unsafe.Sizeof(core.InstanceTransform{}))

// BufferAllocator creates device buffers. *wgpu.Device implements it.
type BufferAllocator interface {
	CreateBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
}

// BufferWriter queues a write into a device buffer. *wgpu.Queue implements it.
type BufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

// InstanceBuffer is the device mirror of the instance set. It is sized once
// and afterwards only written in sub-ranges.
type InstanceBuffer struct {
	buf      *wgpu.Buffer
	queue    BufferWriter
	capacity int
}

// NewInstanceBuffer allocates room for len(initial) transforms and uploads
// them all once.
func NewInstanceBuffer(device BufferAllocator, queue BufferWriter, initial []core.InstanceTransform) (*InstanceBuffer, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: instance buffer needs at least one transform", core.ErrInvalidConfig)
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "InstanceTransformsBuf",
		Size:             uint64(len(initial)) * InstanceStride,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create instance buffer: %w", err)
	}

	ib := &InstanceBuffer{
		buf:      buf,
		queue:    queue,
		capacity: len(initial),
	}
	if err := ib.UpdateRange(0, len(initial), initial); err != nil {
		ib.Release()
		return nil, err
	}
	return ib, nil
}

func (ib *InstanceBuffer) Capacity() int {
	return ib.capacity
}

func (ib *InstanceBuffer) Buffer() *wgpu.Buffer {
	return ib.buf
}

// Size is the buffer size in bytes.
func (ib *InstanceBuffer) Size() uint64 {
	return uint64(ib.capacity) * InstanceStride
}

// UpdateRange overwrites count transforms starting at offset with data[:count].
// Out-of-range requests fail; nothing is clamped.
func (ib *InstanceBuffer) UpdateRange(offset, count int, data []core.InstanceTransform) error {
	if offset < 0 || count < 0 || offset+count > ib.capacity {
		return fmt.Errorf("%w: [%d, %d) exceeds capacity %d", core.ErrRangeOutOfBounds, offset, offset+count, ib.capacity)
	}
	if len(data) < count {
		return fmt.Errorf("%w: %d transforms supplied for a range of %d", core.ErrRangeOutOfBounds, len(data), count)
	}
	if count == 0 {
		return nil
	}

	if err := ib.queue.WriteBuffer(ib.buf, uint64(offset)*InstanceStride, transformBytes(data[:count])); err != nil {
		return fmt.Errorf("write instance range [%d, %d): %w", offset, offset+count, err)
	}
	return nil
}

// VertexLayout describes the buffer as four vec4 columns per instance,
// occupying shader locations start..start+3.
func (ib *InstanceBuffer) VertexLayout(start uint32) wgpu.VertexBufferLayout {
	return InstanceVertexLayout(start)
}

func InstanceVertexLayout(start uint32) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 4)
	for col := range attrs {
		attrs[col] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(col) * 16,
			ShaderLocation: start + uint32(col),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

func (ib *InstanceBuffer) Release() {
	if ib.buf != nil {
		ib.buf.Release()
		ib.buf = nil
	}
}

// transformBytes views the matrices as raw bytes without copying.
func transformBytes(ms []core.InstanceTransform) []byte {
	if len(ms) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&ms[0])), uint64(len(ms))*InstanceStride)
}
