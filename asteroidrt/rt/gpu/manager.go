package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/gekko3d/asteroids/asteroidrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// CameraUniformSize holds projection (64) and view (64).
	CameraUniformSize = 128
	ModelUniformSize  = 64

	// InstanceLocation is the first shader location of the instance matrix,
	// after position, normal and uv.
	InstanceLocation = 3
)

// MeshBuffers is the device side of one core.Mesh.
type MeshBuffers struct {
	Id           core.AssetId
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	indexCount   uint32
}

func (m *MeshBuffers) IndexCount() uint32 {
	return m.indexCount
}

// VertexLayouts returns the mesh's own vertex layout followed by any extra
// per-instance layouts the caller wants to attach.
func (m *MeshBuffers) VertexLayouts(extra ...wgpu.VertexBufferLayout) []wgpu.VertexBufferLayout {
	return append([]wgpu.VertexBufferLayout{MeshVertexLayout()}, extra...)
}

func MeshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(core.Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

func (m *MeshBuffers) Release() {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
	}
}

// ModelBuffers is the device side of one core.Model.
type ModelBuffers struct {
	Id          core.AssetId
	Meshes      []*MeshBuffers
	Texture     *wgpu.Texture
	TextureView *wgpu.TextureView
}

func (m *ModelBuffers) Release() {
	for _, mesh := range m.Meshes {
		mesh.Release()
	}
	if m.TextureView != nil {
		m.TextureView.Release()
	}
	if m.Texture != nil {
		m.Texture.Release()
	}
}

type GpuBufferManager struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	CameraBuf      *wgpu.Buffer
	PlanetModelBuf *wgpu.Buffer
	TextVertexBuf  *wgpu.Buffer

	Instances *InstanceBuffer
	Models    map[core.AssetId]*ModelBuffers
}

func NewGpuBufferManager(device *wgpu.Device) *GpuBufferManager {
	return &GpuBufferManager{
		Device: device,
		Queue:  device.GetQueue(),
		Models: make(map[core.AssetId]*ModelBuffers),
	}
}

// ensureBuffer grows buf to fit data if needed and writes data at offset 0.
// It reports whether the buffer was recreated.
func (m *GpuBufferManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	neededSize := uint64(len(data))
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	recreated := false
	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}

		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            name,
			Size:             neededSize,
			Usage:            usage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return false, fmt.Errorf("create %s: %w", name, err)
		}
		*buf = newBuf
		recreated = true
	}

	if len(data) > 0 {
		if err := m.Queue.WriteBuffer(*buf, 0, data); err != nil {
			return recreated, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return recreated, nil
}

// UpdateCamera writes the projection and view shared by the planet and
// asteroid pipelines.
func (m *GpuBufferManager) UpdateCamera(proj, view mgl32.Mat4) error {
	_, err := m.ensureBuffer("CameraUB", &m.CameraBuf, cameraUniformBytes(proj, view), wgpu.BufferUsageUniform)
	return err
}

func (m *GpuBufferManager) UpdatePlanetModel(model mgl32.Mat4) error {
	_, err := m.ensureBuffer("PlanetModelUB", &m.PlanetModelBuf, mat4ToBytes(model), wgpu.BufferUsageUniform)
	return err
}

// UpdateTextVertices returns true when the buffer was recreated.
func (m *GpuBufferManager) UpdateTextVertices(vertices []core.TextVertex) (bool, error) {
	if len(vertices) == 0 {
		return false, nil
	}
	size := uint64(len(vertices)) * uint64(unsafe.Sizeof(core.TextVertex{}))
	data := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), size)
	return m.ensureBuffer("TextVB", &m.TextVertexBuf, data, wgpu.BufferUsageVertex)
}

// CreateInstanceBuffer uploads the initial instance set.
func (m *GpuBufferManager) CreateInstanceBuffer(transforms []core.InstanceTransform) (*InstanceBuffer, error) {
	ib, err := NewInstanceBuffer(m.Device, m.Queue, transforms)
	if err != nil {
		return nil, err
	}
	if m.Instances != nil {
		m.Instances.Release()
	}
	m.Instances = ib
	return ib, nil
}

// UploadModel creates vertex, index and texture resources for model.
func (m *GpuBufferManager) UploadModel(model *core.Model) (*ModelBuffers, error) {
	if existing, ok := m.Models[model.Id]; ok {
		return existing, nil
	}

	mb := &ModelBuffers{Id: model.Id}
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		gm, err := m.uploadMesh(model.Name, mesh)
		if err != nil {
			mb.Release()
			return nil, err
		}
		mb.Meshes = append(mb.Meshes, gm)
	}

	if model.Texture != nil {
		w, h := model.Texture.Bounds().Dx(), model.Texture.Bounds().Dy()
		tex, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         model.Name + " Texture",
			Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension:     wgpu.TextureDimension2D,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			mb.Release()
			return nil, fmt.Errorf("create %s texture: %w", model.Name, err)
		}
		mb.Texture = tex
		m.Queue.WriteTexture(tex.AsImageCopy(), model.Texture.Pix, &wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(model.Texture.Stride),
			RowsPerImage: uint32(h),
		}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

		mb.TextureView, err = tex.CreateView(nil)
		if err != nil {
			mb.Release()
			return nil, fmt.Errorf("create %s texture view: %w", model.Name, err)
		}
	}

	m.Models[model.Id] = mb
	return mb, nil
}

func (m *GpuBufferManager) uploadMesh(name string, mesh *core.Mesh) (*MeshBuffers, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("%w: mesh %s of %s is empty", core.ErrInvalidConfig, mesh.Id, name)
	}

	gm := &MeshBuffers{Id: mesh.Id, indexCount: uint32(len(mesh.Indices))}

	vSize := uint64(len(mesh.Vertices)) * uint64(unsafe.Sizeof(core.Vertex{}))
	vData := unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Vertices[0])), vSize)
	if _, err := m.ensureBuffer(name+" VB "+string(mesh.Id), &gm.VertexBuffer, vData, wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}

	iSize := uint64(len(mesh.Indices)) * 4
	iData := unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Indices[0])), iSize)
	if _, err := m.ensureBuffer(name+" IB "+string(mesh.Id), &gm.IndexBuffer, iData, wgpu.BufferUsageIndex); err != nil {
		gm.Release()
		return nil, err
	}
	return gm, nil
}

func (m *GpuBufferManager) Release() {
	for id, mb := range m.Models {
		mb.Release()
		delete(m.Models, id)
	}
	if m.Instances != nil {
		m.Instances.Release()
		m.Instances = nil
	}
	for _, buf := range []**wgpu.Buffer{&m.CameraBuf, &m.PlanetModelBuf, &m.TextVertexBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}

// Struct CameraData {
//   projection: mat4x4<f32>; -- 64
//   view: mat4x4<f32>;       -- 128
// }
func cameraUniformBytes(proj, view mgl32.Mat4) []byte {
	buf := make([]byte, CameraUniformSize)
	writeMat(buf, 0, proj)
	writeMat(buf, 64, view)
	return buf
}

func mat4ToBytes(mat mgl32.Mat4) []byte {
	buf := make([]byte, ModelUniformSize)
	writeMat(buf, 0, mat)
	return buf
}

func writeMat(buf []byte, offset int, mat mgl32.Mat4) {
	for i, v := range mat {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}
