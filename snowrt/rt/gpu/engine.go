package gpu

import (
	"fmt"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
	"github.com/gekko3d/snowfall/snowrt/rt/host"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// DisplayEngine owns everything needed to simulate and draw snow on one
// display: its overlay window, surface, particle buffers, pipelines and the
// latest window snapshot.
type DisplayEngine struct {
	id      core.WindowID
	display host.Display
	window  *host.OverlayWindow
	logger  snowfall.Logger
	source  host.WindowSource
	clock   *snowfall.FrameClock

	running        bool
	redrawRequests int

	width, height int
	particleCount int
	maxRects      int
	rectCount     int
	windows       map[int64]core.Window

	frame *Uniform[core.FrameData]

	surface       *wgpu.Surface
	surfaceConfig *wgpu.SurfaceConfiguration

	quadBuffer     *wgpu.Buffer
	particleBuffer *wgpu.Buffer
	rectBuffer     *wgpu.Buffer

	frameBindGroup    *wgpu.BindGroup
	particleBindGroup *wgpu.BindGroup

	particlePipeline *wgpu.RenderPipeline
	rectPipeline     *wgpu.RenderPipeline
	simPipeline      *wgpu.ComputePipeline

	// layouts and shader modules, released with the engine
	owned []releaser
}

type releaser interface{ Release() }

func (e *DisplayEngine) ID() core.WindowID                { return e.id }
func (e *DisplayEngine) Display() host.Display            { return e.display }
func (e *DisplayEngine) Window() *host.OverlayWindow      { return e.window }
func (e *DisplayEngine) Running() bool                    { return e.running }
func (e *DisplayEngine) ParticleCount() int               { return e.particleCount }
func (e *DisplayEngine) RectCount() int                   { return e.rectCount }
func (e *DisplayEngine) Windows() map[int64]core.Window   { return e.windows }
func (e *DisplayEngine) FrameData() core.FrameData        { return e.frame.Data }
func (e *DisplayEngine) SurfaceSize() (width, height int) { return e.width, e.height }

// SetRunning pauses or resumes the engine. Resuming asks for a redraw right
// away so the overlay does not wait for an unrelated event.
func (e *DisplayEngine) SetRunning(running bool) {
	e.logger.Infof("set running: %t", running)
	e.running = running
	if running {
		e.RequestRedraw()
	}
}

// RequestRedraw marks the engine for drawing. Paused engines ignore it.
func (e *DisplayEngine) RequestRedraw() {
	if !e.running {
		return
	}
	e.redrawRequests++
}

// TakeRedraw returns the number of redraw requests since the last call and
// clears them.
func (e *DisplayEngine) TakeRedraw() int {
	n := e.redrawRequests
	e.redrawRequests = 0
	return n
}

// HandleEvent reacts to an event addressed to this engine's window.
func (e *DisplayEngine) HandleEvent(ev core.Event) {
	switch ev.Kind {
	case core.EventOccluded:
		e.SetRunning(!ev.Flag)
	case core.EventResized:
		// TODO: reconfigure the surface and re-run the aspect correction on resize.
		e.logger.Debugf("resize to %dx%d ignored", ev.X, ev.Y)
	default:
		e.logger.Debugf("unhandled window event: %s", ev)
	}
}

// SetSimulation changes the gravity and max age used from the next
// rendered frame on.
func (e *DisplayEngine) SetSimulation(gravity mgl32.Vec2, maxAge float32) {
	e.frame.Data.Gravity = gravity
	e.frame.Data.MaxAge = maxAge
}

// RefreshWindowSnapshot queries the window source, mirrors up to maxRects
// base-layer windows into the rect buffer and replaces the cached windows.
func (e *DisplayEngine) RefreshWindowSnapshot(queue BufferWriter) {
	windows := core.BaseLayerWindows(e.source.OnScreenWindows())
	rects := core.WindowRects(windows, float32(e.width), float32(e.height), e.maxRects)
	if len(rects) > 0 {
		if err := queue.WriteBuffer(e.rectBuffer, 0, wgpu.ToBytes(rects)); err != nil {
			e.logger.Warnf("upload %d window rects: %v", len(rects), err)
		}
	}
	e.rectCount = len(rects)
	e.windows = core.WindowsByNumber(windows)
}

// Tick advances the frame clock and refreshes the window snapshot. It does
// not touch the GPU copy of the frame uniform; Render uploads it.
func (e *DisplayEngine) Tick(queue BufferWriter) {
	elapsed, dt := e.clock.Advance()
	e.frame.Data.Time = float32(elapsed.Seconds())
	e.frame.Data.Dt = float32(dt.Seconds())
	e.RefreshWindowSnapshot(queue)
}

// Render uploads the frame uniform, runs one simulation dispatch over every
// particle, draws them as instanced quads over the clear color and presents.
func (e *DisplayEngine) Render(device *wgpu.Device, queue *wgpu.Queue) error {
	if err := e.frame.Write(queue); err != nil {
		return fmt.Errorf("write frame uniform: %w", err)
	}

	nextTexture, err := e.surface.GetCurrentTexture()
	if err != nil {
		return newSurfaceError(e.display.String(), err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return newSurfaceError(e.display.String(), err)
	}
	defer view.Release()

	encoder, err := device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "snow encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	cPass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: "snow simulate"})
	defer cPass.Release()
	cPass.SetPipeline(e.simPipeline)
	cPass.SetBindGroup(0, e.frameBindGroup, nil)
	cPass.SetBindGroup(1, e.particleBindGroup, nil)
	if groups := core.WorkgroupCount(e.particleCount, snowfall.WorkgroupSize); groups > 0 {
		cPass.DispatchWorkgroups(groups, 1, 1)
	}
	if err := cPass.End(); err != nil {
		return fmt.Errorf("end simulate pass: %w", err)
	}

	c := snowfall.ClearColor
	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "snow draw",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
		}},
	})
	defer rPass.Release()
	if e.particleCount > 0 {
		rPass.SetPipeline(e.particlePipeline)
		rPass.SetBindGroup(0, e.frameBindGroup, nil)
		rPass.SetVertexBuffer(0, e.quadBuffer, 0, e.quadBuffer.GetSize())
		rPass.SetVertexBuffer(1, e.particleBuffer, 0, e.particleBuffer.GetSize())
		rPass.Draw(uint32(len(core.QuadMesh)), uint32(e.particleCount), 0, 0)
	}
	if err := rPass.End(); err != nil {
		return fmt.Errorf("end draw pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()
	queue.Submit(cmd)
	e.surface.Present()
	return nil
}

// DrawWindowRects records the on-screen window rectangles into an open
// render pass. The frame loop does not call it; the overlay only shows snow.
func (e *DisplayEngine) DrawWindowRects(pass *wgpu.RenderPassEncoder) {
	if e.rectCount == 0 {
		return
	}
	pass.SetPipeline(e.rectPipeline)
	pass.SetVertexBuffer(0, e.quadBuffer, 0, e.quadBuffer.GetSize())
	pass.SetVertexBuffer(1, e.rectBuffer, 0, e.rectBuffer.GetSize())
	pass.Draw(uint32(len(core.QuadMesh)), uint32(e.rectCount), 0, 0)
}

// Release frees the engine's GPU objects, surface and window.
func (e *DisplayEngine) Release() {
	for _, r := range []releaser{
		e.simPipeline, e.rectPipeline, e.particlePipeline,
		e.particleBindGroup, e.frameBindGroup,
		e.rectBuffer, e.particleBuffer, e.quadBuffer,
	} {
		releaseIfSet(r)
	}
	e.simPipeline, e.rectPipeline, e.particlePipeline = nil, nil, nil
	e.particleBindGroup, e.frameBindGroup = nil, nil
	e.rectBuffer, e.particleBuffer, e.quadBuffer = nil, nil, nil

	for i := len(e.owned) - 1; i >= 0; i-- {
		releaseIfSet(e.owned[i])
	}
	e.owned = nil

	if e.frame != nil {
		e.frame.Release()
	}
	if e.surface != nil {
		e.surface.Release()
		e.surface = nil
	}
	if e.window != nil {
		e.window.Destroy()
		e.window = nil
	}
}

// releaseIfSet skips typed nil pointers stored in the interface.
func releaseIfSet(r releaser) {
	switch v := r.(type) {
	case nil:
	case *wgpu.Buffer:
		if v != nil {
			v.Release()
		}
	case *wgpu.BindGroup:
		if v != nil {
			v.Release()
		}
	case *wgpu.RenderPipeline:
		if v != nil {
			v.Release()
		}
	case *wgpu.ComputePipeline:
		if v != nil {
			v.Release()
		}
	default:
		v.Release()
	}
}
