package gpu

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
	"github.com/gekko3d/snowfall/snowrt/rt/host"
	"github.com/gekko3d/snowfall/snowrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

// NewDisplayEngine opens the overlay for display and builds its surface,
// buffers, bind groups and pipelines on the context's device. Any failure
// releases what was already built and returns a *BuildError.
func NewDisplayEngine(gc *GraphicsContext, particleCount int, display host.Display) (engine *DisplayEngine, err error) {
	logger := gc.logger.Named(fmt.Sprintf("display-%d", display.Index))
	fail := func(stage BuildStage, err error) error {
		return &BuildError{Display: display.String(), Stage: stage, Err: err}
	}

	e := &DisplayEngine{
		display:       display,
		logger:        logger,
		source:        gc.source,
		clock:         snowfall.NewFrameClock(),
		particleCount: particleCount,
		maxRects:      snowfall.MaxWindowRects,
	}
	defer func() {
		if err != nil {
			e.Release()
		}
	}()

	title := fmt.Sprintf("%s-%d", gc.cfg.Title, display.Index)
	e.window, err = gc.opener.Open(display, title)
	if err != nil {
		return nil, fail(StageWindow, err)
	}
	e.id = e.window.ID()
	e.width, e.height = e.window.FramebufferSize()

	if err := e.buildSurface(gc); err != nil {
		return nil, fail(StageSurface, err)
	}

	e.frame, err = NewUniform(gc.device, core.FrameData{
		Gravity: gc.cfg.Gravity,
		Aspect:  float32(e.width) / float32(e.height),
		MaxAge:  gc.cfg.MaxAge,
	}, "snow frame "+e.id.String())
	if err != nil {
		return nil, fail(StageBuffer, err)
	}
	if err := e.buildBuffers(gc.device); err != nil {
		return nil, fail(StageBuffer, err)
	}

	frameLayout, particleLayout, err := e.buildBindGroups(gc.device)
	if err != nil {
		return nil, fail(StageBindGroup, err)
	}
	if err := e.buildPipelines(gc.device, frameLayout, particleLayout); err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			be.Display = display.String()
			return nil, be
		}
		return nil, fail(StagePipeline, err)
	}

	logger.Infof("engine %s ready: %dx%d px, format %v, %d particles", e.id, e.width, e.height, e.surfaceConfig.Format, particleCount)

	// One-off startup dump of what the compositor reports.
	if logger.DebugEnabled() {
		if err := host.WriteSnapshot(os.Stderr, e.source.OnScreenWindows()); err != nil {
			logger.Warnf("dump window snapshot: %v", err)
		}
	}

	e.running = true
	return e, nil
}

func (e *DisplayEngine) buildSurface(gc *GraphicsContext) error {
	e.surface = gc.instance.CreateSurface(e.window.SurfaceDescriptor())
	if e.surface == nil {
		return fmt.Errorf("no surface for window %s", e.id)
	}

	caps := e.surface.GetCapabilities(gc.adapter)
	if len(caps.Formats) == 0 {
		return fmt.Errorf("surface reports no formats")
	}

	e.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      pickSurfaceFormat(caps.Formats),
		Width:       uint32(e.width),
		Height:      uint32(e.height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   wgpu.CompositeAlphaModeUnpremultiplied,
	}
	if len(caps.PresentModes) > 0 {
		e.surfaceConfig.PresentMode = caps.PresentModes[0]
	}
	e.surface.Configure(gc.adapter, gc.device, e.surfaceConfig)
	return nil
}

// pickSurfaceFormat prefers an sRGB format and falls back to the first one
// the surface offers.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		switch f {
		case wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb:
			return f
		}
	}
	return formats[0]
}

func (e *DisplayEngine) buildBuffers(device *wgpu.Device) error {
	var err error
	label := e.id.String()

	e.quadBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "snow quad " + label,
		Contents: wgpu.ToBytes(core.QuadMesh),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("quad buffer: %w", err)
	}

	particles := core.NewParticles(e.particleCount, rand.New(rand.NewSource(rand.Int63())))
	if len(particles) == 0 {
		// Bindings cannot be empty. Nothing is dispatched for zero particles.
		particles = make([]core.Particle, 1)
	}
	e.particleBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "snow particles " + label,
		Contents: wgpu.ToBytes(particles),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("particle buffer: %w", err)
	}

	e.rectBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "snow window rects " + label,
		Contents: wgpu.ToBytes(make([]core.RectInstance, e.maxRects)),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("window rect buffer: %w", err)
	}
	return nil
}

func (e *DisplayEngine) buildBindGroups(device *wgpu.Device) (frameLayout, particleLayout *wgpu.BindGroupLayout, err error) {
	frameLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "snow frame layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageVertex,
			Buffer:     e.frame.BindingLayout(),
		}},
	})
	if err != nil {
		return nil, nil, err
	}
	e.owned = append(e.owned, frameLayout)

	particleLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "snow particle layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageCompute,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeStorage,
				MinBindingSize: core.ParticleBytes,
			},
		}},
	})
	if err != nil {
		return nil, nil, err
	}
	e.owned = append(e.owned, particleLayout)

	e.frameBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "snow frame bind group",
		Layout: frameLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  e.frame.Buffer(),
			Size:    e.frame.Size(),
		}},
	})
	if err != nil {
		return nil, nil, err
	}

	e.particleBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "snow particle bind group",
		Layout: particleLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  e.particleBuffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return nil, nil, err
	}
	return frameLayout, particleLayout, nil
}

func (e *DisplayEngine) shaderModule(device *wgpu.Device, label, code string) (*wgpu.ShaderModule, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, &BuildError{Stage: StageShader, Err: fmt.Errorf("%s: %w", label, err)}
	}
	e.owned = append(e.owned, module)
	return module, nil
}

func (e *DisplayEngine) pipelineLayout(device *wgpu.Device, label string, groups ...*wgpu.BindGroupLayout) (*wgpu.PipelineLayout, error) {
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, &BuildError{Stage: StagePipeline, Err: fmt.Errorf("%s: %w", label, err)}
	}
	e.owned = append(e.owned, layout)
	return layout, nil
}

func alphaBlendTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format: format,
		Blend: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
		WriteMask: wgpu.ColorWriteMaskAll,
	}
}

func (e *DisplayEngine) buildPipelines(device *wgpu.Device, frameLayout, particleLayout *wgpu.BindGroupLayout) error {
	renderModule, err := e.shaderModule(device, "snow render shader", shaders.RenderWGSL)
	if err != nil {
		return err
	}
	simModule, err := e.shaderModule(device, "snow simulate shader", shaders.SimulateWGSL)
	if err != nil {
		return err
	}
	rectModule, err := e.shaderModule(device, "snow rect shader", shaders.RectWGSL)
	if err != nil {
		return err
	}

	renderLayout, err := e.pipelineLayout(device, "snow render layout", frameLayout)
	if err != nil {
		return err
	}
	simLayout, err := e.pipelineLayout(device, "snow simulate layout", frameLayout, particleLayout)
	if err != nil {
		return err
	}
	rectLayout, err := e.pipelineLayout(device, "snow rect layout")
	if err != nil {
		return err
	}

	quadLayout := vertexLayout(core.QuadVertex{}, wgpu.VertexStepModeVertex)
	format := e.surfaceConfig.Format
	primitive := wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	}
	multisample := wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF}

	e.particlePipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "snow particle pipeline",
		Layout: renderLayout,
		Vertex: wgpu.VertexState{
			Module:     renderModule,
			EntryPoint: "vertex_main",
			Buffers: []wgpu.VertexBufferLayout{
				quadLayout,
				vertexLayout(core.Particle{}, wgpu.VertexStepModeInstance),
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     renderModule,
			EntryPoint: "fragment_main",
			Targets:    []wgpu.ColorTargetState{alphaBlendTarget(format)},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return &BuildError{Stage: StagePipeline, Err: fmt.Errorf("particle pipeline: %w", err)}
	}

	e.rectPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "snow rect pipeline",
		Layout: rectLayout,
		Vertex: wgpu.VertexState{
			Module:     rectModule,
			EntryPoint: "vertex_main",
			Buffers: []wgpu.VertexBufferLayout{
				quadLayout,
				vertexLayout(core.RectInstance{}, wgpu.VertexStepModeInstance),
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     rectModule,
			EntryPoint: "fragment_main",
			Targets:    []wgpu.ColorTargetState{alphaBlendTarget(format)},
		},
		Primitive:   primitive,
		Multisample: multisample,
	})
	if err != nil {
		return &BuildError{Stage: StagePipeline, Err: fmt.Errorf("rect pipeline: %w", err)}
	}

	e.simPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "snow simulate pipeline",
		Layout: simLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     simModule,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return &BuildError{Stage: StagePipeline, Err: fmt.Errorf("simulate pipeline: %w", err)}
	}
	return nil
}
