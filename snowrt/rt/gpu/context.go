package gpu

import (
	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
	"github.com/gekko3d/snowfall/snowrt/rt/host"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// engine is what the context needs from a display engine.
type engine interface {
	ID() core.WindowID
	Window() *host.OverlayWindow
	RequestRedraw()
	TakeRedraw() int
	HandleEvent(ev core.Event)
	Tick(queue BufferWriter)
	SetSimulation(gravity mgl32.Vec2, maxAge float32)
	Render(device *wgpu.Device, queue *wgpu.Queue) error
	Release()
}

// GraphicsContext holds the shared GPU instance, adapter, device and queue
// and one DisplayEngine per display.
type GraphicsContext struct {
	cfg    snowfall.Config
	logger snowfall.Logger
	opener host.OverlayOpener
	source host.WindowSource

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	engines []engine
	byID    map[core.WindowID]engine
}

// NewGraphicsContext acquires the GPU and builds an engine for every
// display, in order. Nothing is returned on failure; engines already built
// are released.
func NewGraphicsContext(cfg snowfall.Config, displays []host.Display, opener host.OverlayOpener, source host.WindowSource, logger snowfall.Logger) (*GraphicsContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gc := &GraphicsContext{
		cfg:    cfg,
		logger: snowfall.OrNop(logger).Named("gpu"),
		opener: opener,
		source: source,
		byID:   make(map[core.WindowID]engine),
	}

	gc.instance = wgpu.CreateInstance(nil)
	adapter, err := gc.instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		gc.Release()
		return nil, &BuildError{Stage: StageAdapter, Err: err}
	}
	gc.adapter = adapter

	gc.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "snow device"})
	if err != nil {
		gc.Release()
		return nil, &BuildError{Stage: StageDevice, Err: err}
	}
	gc.queue = gc.device.GetQueue()

	for _, d := range displays {
		e, err := NewDisplayEngine(gc, cfg.ParticleCount, d)
		if err != nil {
			gc.Release()
			return nil, err
		}
		gc.addEngine(e)
	}
	gc.logger.Infof("graphics context ready with %d engines", len(gc.engines))
	return gc, nil
}

func (gc *GraphicsContext) addEngine(e engine) {
	gc.engines = append(gc.engines, e)
	gc.byID[e.ID()] = e
}

// Windows returns each engine's overlay window in display order.
func (gc *GraphicsContext) Windows() []*host.OverlayWindow {
	out := make([]*host.OverlayWindow, 0, len(gc.engines))
	for _, e := range gc.engines {
		if w := e.Window(); w != nil {
			out = append(out, w)
		}
	}
	return out
}

func (gc *GraphicsContext) Engines() int { return len(gc.engines) }

// RequestRedraw forwards a redraw request to every engine.
func (gc *GraphicsContext) RequestRedraw() {
	for _, e := range gc.engines {
		e.RequestRedraw()
	}
}

// TakeRedrawRequests drains the engines' pending requests and reports
// whether any engine asked to be drawn.
func (gc *GraphicsContext) TakeRedrawRequests() bool {
	pending := false
	for _, e := range gc.engines {
		if e.TakeRedraw() > 0 {
			pending = true
		}
	}
	return pending
}

// DispatchWindowEvent hands ev to the engine owning ev.Window. Events for
// unknown windows are dropped.
func (gc *GraphicsContext) DispatchWindowEvent(ev core.Event) {
	e, ok := gc.byID[ev.Window]
	if !ok {
		gc.logger.Warnf("dropping %s for unknown window %s", ev, ev.Window)
		return
	}
	e.HandleEvent(ev)
}

// ApplyConfig pushes gravity and max age to every engine. Particle count and
// title only take effect on restart.
func (gc *GraphicsContext) ApplyConfig(cfg snowfall.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.ParticleCount != gc.cfg.ParticleCount {
		gc.logger.Warnf("particle count %d takes effect on restart", cfg.ParticleCount)
	}
	gc.cfg.Gravity = cfg.Gravity
	gc.cfg.MaxAge = cfg.MaxAge
	for _, e := range gc.engines {
		e.SetSimulation(cfg.Gravity, cfg.MaxAge)
	}
	return nil
}

// Tick advances every engine by one frame.
func (gc *GraphicsContext) Tick() {
	for _, e := range gc.engines {
		e.Tick(gc.queue)
	}
}

// RenderFrame renders every engine in order and stops at the first error.
func (gc *GraphicsContext) RenderFrame() error {
	for _, e := range gc.engines {
		if err := e.Render(gc.device, gc.queue); err != nil {
			return err
		}
	}
	return nil
}

// Release frees the engines, then the shared GPU objects.
func (gc *GraphicsContext) Release() {
	for i := len(gc.engines) - 1; i >= 0; i-- {
		gc.engines[i].Release()
	}
	gc.engines = nil
	gc.byID = make(map[core.WindowID]engine)

	if gc.queue != nil {
		gc.queue.Release()
		gc.queue = nil
	}
	if gc.device != nil {
		gc.device.Release()
		gc.device = nil
	}
	if gc.adapter != nil {
		gc.adapter.Release()
		gc.adapter = nil
	}
	if gc.instance != nil {
		gc.instance.Release()
		gc.instance = nil
	}
}
