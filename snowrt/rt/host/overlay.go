package host

import (
	"fmt"

	"github.com/gekko3d/snowfall/snowrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// OverlayOpener creates the click-through overlay window for a display.
type OverlayOpener interface {
	Open(d Display, title string) (*OverlayWindow, error)
}

// OverlayWindow is a borderless, transparent, always-on-top window that
// ignores pointer input and covers one display.
type OverlayWindow struct {
	id       core.WindowID
	win      *glfw.Window
	display  Display
	occluded bool
	handler  func(core.Event)
}

func (o *OverlayWindow) ID() core.WindowID { return o.id }
func (o *OverlayWindow) FramebufferSize() (int, int) {
	if o.win == nil {
		return o.display.PixelSize()
	}
	return o.win.GetFramebufferSize()
}

// SurfaceDescriptor describes the native window a GPU surface binds to.
func (o *OverlayWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(o.win)
}

func (o *OverlayWindow) emit(e core.Event) {
	if o.handler == nil {
		return
	}
	e.Window = o.id
	o.handler(e)
}

func (o *OverlayWindow) setOccluded(v bool) {
	if v == o.occluded {
		return
	}
	o.occluded = v
	o.emit(core.Event{Kind: core.EventOccluded, Flag: v})
}

// PollOcclusion asks the host whether the window is still visible and emits
// an Occluded event when that changed. Hosts without an occlusion query rely
// on iconify callbacks instead.
func (o *OverlayWindow) PollOcclusion() {
	if o.win == nil {
		return
	}
	if occluded, ok := nativeOccluded(o.win); ok {
		o.setOccluded(occluded)
	}
}

// SetEventHandler routes the window's glfw callbacks to h as core events
// tagged with this window's id.
func (o *OverlayWindow) SetEventHandler(h func(core.Event)) {
	o.handler = h
	if o.win == nil {
		return
	}
	o.win.SetCloseCallback(func(w *glfw.Window) {
		o.emit(core.Event{Kind: core.EventCloseRequested})
	})
	o.win.SetFocusCallback(func(w *glfw.Window, focused bool) {
		o.emit(core.Event{Kind: core.EventFocused, Flag: focused})
	})
	o.win.SetIconifyCallback(func(w *glfw.Window, iconified bool) {
		o.setOccluded(iconified)
	})
	o.win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		o.emit(core.Event{Kind: core.EventResized, X: width, Y: height})
	})
	o.win.SetPosCallback(func(w *glfw.Window, x, y int) {
		o.emit(core.Event{Kind: core.EventMoved, X: x, Y: y})
	})
	o.win.SetRefreshCallback(func(w *glfw.Window) {
		o.emit(core.Event{Kind: core.EventRefresh})
	})
	o.win.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		o.emit(core.Event{Kind: core.EventCursorEntered, Flag: entered})
	})
}

func (o *OverlayWindow) Destroy() {
	if o.win != nil {
		o.win.Destroy()
		o.win = nil
	}
}

// GLFWOpener opens overlay windows through glfw and finishes the setup with
// native window-system calls.
type GLFWOpener struct{}

func (GLFWOpener) Open(d Display, title string) (*OverlayWindow, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // surface comes from wgpu, no GL context
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	glfw.WindowHint(glfw.Floating, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.False)
	glfw.WindowHint(glfw.FocusOnShow, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)

	win, err := glfw.CreateWindow(d.Width, d.Height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create overlay window for %s: %w", d, err)
	}
	win.SetPos(d.X, d.Y)

	if err := configureNative(win); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("configure overlay window for %s: %w", d, err)
	}
	win.Show()

	return &OverlayWindow{
		id:      core.NewWindowID(),
		win:     win,
		display: d,
	}, nil
}
