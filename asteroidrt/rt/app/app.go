package app

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gekko3d/asteroids/asteroidrt/rt/core"
	"github.com/gekko3d/asteroids/asteroidrt/rt/gpu"
	"github.com/gekko3d/asteroids/asteroidrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	depthFormat  = wgpu.TextureFormatDepth24Plus
	planetRadius = 8
)

type Options struct {
	Field core.FieldConfig
	Seed  int64
	VSync bool
	Debug bool
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Options Options
	Logger  core.Logger

	AsteroidPipeline *wgpu.RenderPipeline
	PlanetPipeline   *wgpu.RenderPipeline

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
	Sampler      *wgpu.Sampler

	AsteroidCameraBG  *wgpu.BindGroup
	AsteroidTextureBG *wgpu.BindGroup
	PlanetUniformBG   *wgpu.BindGroup
	PlanetTextureBG   *wgpu.BindGroup

	BufferManager *gpu.GpuBufferManager
	State         *State

	Rock          *core.Model
	Planet        *core.Model
	RockBuffers   *gpu.ModelBuffers
	PlanetBuffers *gpu.ModelBuffers

	TextRenderer    *core.TextRenderer
	TextPipeline    *wgpu.RenderPipeline
	TextAtlas       *wgpu.Texture
	TextAtlasView   *wgpu.TextureView
	TextBindGroup   *wgpu.BindGroup
	TextItems       []core.TextItem
	TextVertexCount uint32

	cursorCaptured bool
}

func NewApp(window *glfw.Window, opts Options, logger core.Logger) *App {
	return &App{
		Window:  window,
		Options: opts,
		Logger:  core.LoggerOrNop(logger),
	}
}

func (a *App) Init() error {
	if err := a.Options.Field.Validate(); err != nil {
		return err
	}

	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	presentMode := wgpu.PresentModeFifo
	if !a.Options.VSync {
		presentMode = wgpu.PresentModeImmediate
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.BufferManager = gpu.NewGpuBufferManager(a.Device)

	if err := a.setupModels(); err != nil {
		return err
	}
	if err := a.setupField(); err != nil {
		return err
	}

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	if err := a.setupDepth(width, height); err != nil {
		return err
	}

	// Uniforms must exist before bind groups reference them.
	if err := a.updateCamera(); err != nil {
		return err
	}
	planetModel := mgl32.Translate3D(0, -3, 0).Mul4(mgl32.Scale3D(4, 4, 4))
	if err := a.BufferManager.UpdatePlanetModel(planetModel); err != nil {
		return err
	}

	if err := a.setupPipelines(); err != nil {
		return err
	}
	if err := a.setupBindGroups(); err != nil {
		return err
	}

	a.TextRenderer, err = core.NewDefaultTextRenderer(20)
	if err != nil {
		a.Logger.Warnf("Failed to initialize text renderer: %v", err)
	} else if err := a.setupTextResources(); err != nil {
		a.Logger.Warnf("Text overlay disabled: %v", err)
		a.TextPipeline = nil
	}

	a.State.ShowStats = a.Options.Debug
	a.Logger.Infof("asteroid field ready: %d instances in %d rings, seed %d", a.Options.Field.Amount, a.Options.Field.Groups, a.Options.Seed)
	return nil
}

func (a *App) setupModels() error {
	a.Rock = core.NewRockModel(a.Options.Seed)
	a.Planet = core.NewPlanetModel(planetRadius, 32, 64)

	var err error
	a.RockBuffers, err = a.BufferManager.UploadModel(a.Rock)
	if err != nil {
		return fmt.Errorf("upload rock: %w", err)
	}
	a.PlanetBuffers, err = a.BufferManager.UploadModel(a.Planet)
	if err != nil {
		return fmt.Errorf("upload planet: %w", err)
	}
	return nil
}

func (a *App) setupField() error {
	transforms, err := core.GenerateField(a.Options.Field, a.Options.Seed)
	if err != nil {
		return err
	}
	instances, err := a.BufferManager.CreateInstanceBuffer(transforms)
	if err != nil {
		return err
	}
	a.State = NewState(a.Options.Field, transforms, instances, a.Logger, time.Now())
	a.Logger.Debugf("instance buffer: %d bytes", instances.Size())
	return nil
}

func (a *App) setupDepth(w, h int) error {
	if w == 0 || h == 0 {
		return nil
	}
	if a.DepthView != nil {
		a.DepthView.Release()
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
	}

	var err error
	a.DepthTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Tex",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	a.DepthView, err = a.DepthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}
	return nil
}

func (a *App) createMeshPipeline(label, code string, layouts []wgpu.VertexBufferLayout) (*wgpu.RenderPipeline, error) {
	module, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	defer module.Release()

	pipeline, err := a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: label + " Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    a.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

func (a *App) setupPipelines() error {
	var err error

	a.PlanetPipeline, err = a.createMeshPipeline("Planet", shaders.PlanetWGSL, []wgpu.VertexBufferLayout{gpu.MeshVertexLayout()})
	if err != nil {
		return err
	}

	// Every rock sub-mesh shares the vertex format, so one pipeline serves all
	// of them with the instance matrix attached at slot 1.
	instanceLayout := a.BufferManager.Instances.VertexLayout(gpu.InstanceLocation)
	a.AsteroidPipeline, err = a.createMeshPipeline("Asteroids", shaders.AsteroidsWGSL, a.RockBuffers.Meshes[0].VertexLayouts(instanceLayout))
	return err
}

func (a *App) setupBindGroups() error {
	var err error

	a.AsteroidCameraBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.AsteroidPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: a.BufferManager.CameraBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("asteroid camera bind group: %w", err)
	}

	a.AsteroidTextureBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.AsteroidPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.RockBuffers.TextureView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("asteroid texture bind group: %w", err)
	}

	a.PlanetUniformBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.PlanetPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: a.BufferManager.CameraBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: a.BufferManager.PlanetModelBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("planet uniform bind group: %w", err)
	}

	a.PlanetTextureBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.PlanetPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.PlanetBuffers.TextureView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("planet texture bind group: %w", err)
	}
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	if err := a.setupDepth(w, h); err != nil {
		a.Logger.Errorf("resize: %v", err)
	}
}

func (a *App) HandleClick(button glfw.MouseButton, action glfw.Action) {
	if button == glfw.MouseButtonLeft && action == glfw.Press {
		a.State.CaptureMouse()
		x, y := a.Window.GetCursorPos()
		a.Logger.Debugf("Click at %.0f : %.0f", x, y)
	}
}

func (a *App) HandleCursor(x, y float64) {
	a.State.HandleCursor(x, y)
}

func (a *App) HandleScroll(dy float64) {
	a.State.HandleScroll(dy)
}

// Update polls input, advances the rotate groups and queues every buffer
// write for this frame. It must run before Render.
func (a *App) Update() error {
	if err := a.State.Frame(time.Now(), a.Window); err != nil {
		return err
	}

	if a.State.ExitRequested {
		a.Window.SetShouldClose(true)
	}
	if a.State.MouseCaptured != a.cursorCaptured {
		a.cursorCaptured = a.State.MouseCaptured
		if a.cursorCaptured {
			a.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else {
			a.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	}

	if err := a.updateCamera(); err != nil {
		return err
	}

	a.ClearText()
	if a.State.ShowStats {
		a.DrawText(a.State.StatsText(), 10, 10, 1.0, [4]float32{1, 1, 0, 1})
	}
	if len(a.TextItems) > 0 && a.TextRenderer != nil {
		vertices := a.TextRenderer.BuildVertices(a.TextItems, int(a.Config.Width), int(a.Config.Height))
		if _, err := a.BufferManager.UpdateTextVertices(vertices); err != nil {
			return err
		}
		a.TextVertexCount = uint32(len(vertices))
	}
	return nil
}

func (a *App) updateCamera() error {
	aspect := float32(1)
	if a.Config != nil && a.Config.Height > 0 {
		aspect = float32(a.Config.Width) / float32(a.Config.Height)
	}
	cam := a.State.Camera
	return a.BufferManager.UpdateCamera(cam.GetProjectionMatrix(aspect), cam.GetViewMatrix())
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
	a.TextVertexCount = 0
}

func (a *App) DrawText(text string, x, y float32, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, core.TextItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

// Render records and submits one frame. Buffer writes queued in Update are
// ordered before this submit, so the draw sees this frame's transforms.
func (a *App) Render() {
	a.State.Profiler.BeginScope("render")
	defer a.State.Profiler.EndScope("render")

	// Minimized windows have no depth target.
	if a.DepthView == nil {
		return
	}

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Warnf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            a.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	// Planet
	rPass.SetPipeline(a.PlanetPipeline)
	rPass.SetBindGroup(0, a.PlanetUniformBG, nil)
	rPass.SetBindGroup(1, a.PlanetTextureBG, nil)
	for _, mesh := range a.PlanetBuffers.Meshes {
		rPass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
		rPass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		rPass.DrawIndexed(mesh.IndexCount(), 1, 0, 0, 0)
	}

	// Asteroids: one instanced draw per sub-mesh.
	instances := a.BufferManager.Instances
	rPass.SetPipeline(a.AsteroidPipeline)
	rPass.SetBindGroup(0, a.AsteroidCameraBG, nil)
	rPass.SetBindGroup(1, a.AsteroidTextureBG, nil)
	rPass.SetVertexBuffer(1, instances.Buffer(), 0, wgpu.WholeSize)
	for _, mesh := range a.RockBuffers.Meshes {
		rPass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
		rPass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		rPass.DrawIndexed(mesh.IndexCount(), uint32(instances.Capacity()), 0, 0, 0)
	}

	// Text
	if a.TextVertexCount > 0 && a.BufferManager.TextVertexBuf != nil && a.TextPipeline != nil {
		rPass.SetPipeline(a.TextPipeline)
		rPass.SetBindGroup(0, a.TextBindGroup, nil)
		rPass.SetVertexBuffer(0, a.BufferManager.TextVertexBuf, 0, wgpu.WholeSize)
		rPass.Draw(a.TextVertexCount, 1, 0, 0)
	}

	if err := rPass.End(); err != nil {
		a.Logger.Errorf("Render pass End failed: %v", err)
	}
	rPass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("Encoder Finish failed: %v", err)
		return
	}
	defer cmd.Release()

	a.Queue.Submit(cmd)
	a.Surface.Present()
}

func (a *App) setupTextResources() error {
	tr := a.TextRenderer
	w, h := tr.AtlasImage.Bounds().Dx(), tr.AtlasImage.Bounds().Dy()
	tex, err := a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	a.TextAtlas = tex
	a.Queue.WriteTexture(tex.AsImageCopy(), tr.AtlasImage.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(tr.AtlasImage.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	a.TextAtlasView, err = tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create atlas view: %w", err)
	}

	textMod, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("compile text shader: %w", err)
	}
	defer textMod.Release()

	a.TextPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: a.Config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		// The overlay shares the 3D pass, so it must name the depth format.
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create text pipeline: %w", err)
	}

	a.TextBindGroup, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.TextPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.TextAtlasView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create text bind group: %w", err)
	}
	return nil
}

// Release frees device resources in reverse order of creation.
func (a *App) Release() {
	for _, bg := range []*wgpu.BindGroup{a.TextBindGroup, a.PlanetTextureBG, a.PlanetUniformBG, a.AsteroidTextureBG, a.AsteroidCameraBG} {
		if bg != nil {
			bg.Release()
		}
	}
	for _, p := range []*wgpu.RenderPipeline{a.TextPipeline, a.AsteroidPipeline, a.PlanetPipeline} {
		if p != nil {
			p.Release()
		}
	}
	if a.TextAtlasView != nil {
		a.TextAtlasView.Release()
	}
	if a.TextAtlas != nil {
		a.TextAtlas.Release()
	}
	if a.BufferManager != nil {
		a.BufferManager.Release()
	}
	if a.Sampler != nil {
		a.Sampler.Release()
	}
	if a.DepthView != nil {
		a.DepthView.Release()
	}
	if a.DepthTexture != nil {
		a.DepthTexture.Release()
	}
	if a.Queue != nil {
		a.Queue.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
