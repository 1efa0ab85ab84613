package app

import (
	"errors"
	"time"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
	"github.com/gekko3d/snowfall/snowrt/rt/gpu"
	"github.com/gekko3d/snowfall/snowrt/rt/host"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// DefaultIdleWait bounds how long the loop sleeps while every engine is
// paused, so occlusion polling keeps running.
const DefaultIdleWait = 250 * time.Millisecond

var ErrNoDisplays = errors.New("no displays attached")

// graphics is the part of *gpu.GraphicsContext the loop drives.
type graphics interface {
	Windows() []*host.OverlayWindow
	RequestRedraw()
	TakeRedrawRequests() bool
	DispatchWindowEvent(ev core.Event)
	ApplyConfig(cfg snowfall.Config) error
	Tick()
	RenderFrame() error
	Release()
}

// eventPump delivers host window events into the registered callbacks.
type eventPump interface {
	Poll()
	Wait(timeout time.Duration)
}

type glfwPump struct{}

func (glfwPump) Poll()                      { glfw.PollEvents() }
func (glfwPump) Wait(timeout time.Duration) { glfw.WaitEventsTimeout(timeout.Seconds()) }

type App struct {
	Config   snowfall.Config
	Logger   snowfall.Logger
	IdleWait time.Duration

	gfx     graphics
	pump    eventPump
	windows []*host.OverlayWindow
	events  []core.Event
	idle    bool
	frames  uint64

	profiler  *Profiler
	lastFrame time.Time
	now       func() time.Time

	configUpdates <-chan snowfall.Config
}

func NewApp(cfg snowfall.Config, logger snowfall.Logger) *App {
	return &App{
		Config:   cfg,
		Logger:   snowfall.OrNop(logger).Named("app"),
		IdleWait: DefaultIdleWait,
		pump:     glfwPump{},
		profiler: NewProfiler(),
		now:      time.Now,
	}
}

// Init builds the graphics context for displays and routes every overlay
// window's events into the loop's queue.
func (a *App) Init(displays []host.Display, opener host.OverlayOpener, source host.WindowSource) error {
	if len(displays) == 0 {
		return ErrNoDisplays
	}
	for _, d := range displays {
		a.Logger.Infof("found %s", d)
	}

	gc, err := gpu.NewGraphicsContext(a.Config, displays, opener, source, a.Logger)
	if err != nil {
		return err
	}
	a.attach(gc)
	return nil
}

func (a *App) attach(gfx graphics) {
	a.gfx = gfx
	a.windows = gfx.Windows()
	for _, w := range a.windows {
		w.SetEventHandler(a.enqueue)
	}
}

func (a *App) enqueue(ev core.Event) {
	a.events = append(a.events, ev)
}

// SetConfigUpdates makes the loop apply configs received on updates,
// typically from a ConfigWatcher.
func (a *App) SetConfigUpdates(updates <-chan snowfall.Config) {
	a.configUpdates = updates
}

func (a *App) applyConfig(cfg snowfall.Config) {
	if err := a.gfx.ApplyConfig(cfg); err != nil {
		a.Logger.Warnf("config not applied: %v", err)
		return
	}
	a.Config.Gravity = cfg.Gravity
	a.Config.MaxAge = cfg.MaxAge
	a.Config.Debug = cfg.Debug
	a.Logger.SetDebug(cfg.Debug)
	a.Logger.Infof("config reloaded: gravity %v, max age %v", cfg.Gravity, cfg.MaxAge)
}

// Step runs one loop iteration: pump host events, route them, request a
// redraw everywhere, then tick and render if any engine wants a frame. It
// reports done on a close request or an out-of-memory surface error.
func (a *App) Step() (done bool, err error) {
	if a.idle {
		a.pump.Wait(a.IdleWait)
	} else {
		a.pump.Poll()
	}
	for _, w := range a.windows {
		w.PollOcclusion()
	}
	select {
	case cfg := <-a.configUpdates:
		a.applyConfig(cfg)
	default:
	}

	events := a.events
	a.events = nil
	for _, ev := range events {
		if ev.Kind == core.EventCloseRequested {
			a.Logger.Infof("close requested by window %s", ev.Window)
			return true, nil
		}
		a.gfx.DispatchWindowEvent(ev)
	}

	a.gfx.RequestRedraw()
	if !a.gfx.TakeRedrawRequests() {
		a.idle = true
		return false, nil
	}
	a.idle = false

	start := a.now()
	a.gfx.Tick()
	ticked := a.now()
	err = a.gfx.RenderFrame()
	rendered := a.now()
	if err != nil {
		if gpu.IsOutOfMemory(err) {
			return true, err
		}
		a.Logger.Errorf("frame %d: %v", a.frames, err)
		return false, nil
	}
	a.frames++
	a.recordFrame(ticked.Sub(start), rendered.Sub(ticked), rendered)
	return false, nil
}

func (a *App) recordFrame(tick, render time.Duration, at time.Time) {
	var since time.Duration
	if !a.lastFrame.IsZero() {
		since = at.Sub(a.lastFrame)
	}
	a.lastFrame = at
	if a.profiler.Frame(tick, render, since) {
		a.Logger.Debugf("%.1f fps, tick %s, render %s", a.profiler.FPS, a.profiler.AvgTick(), a.profiler.AvgRender())
		a.profiler.Reset()
	}
}

// Run loops until a window asks to close or rendering runs out of memory.
func (a *App) Run() error {
	for {
		done, err := a.Step()
		if done {
			a.Logger.Infof("exiting after %d frames", a.frames)
			return err
		}
	}
}

func (a *App) Release() {
	if a.gfx != nil {
		a.gfx.Release()
		a.gfx = nil
	}
	a.windows = nil
}
