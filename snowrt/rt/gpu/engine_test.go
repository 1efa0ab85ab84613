package gpu

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
	"time"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
	"github.com/gekko3d/snowfall/snowrt/rt/host"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	windows []core.Window
	calls   int
}

func (s *fakeSource) OnScreenWindows() []core.Window {
	s.calls++
	return s.windows
}

func windows(n int, layer int64, firstNumber int64) []core.Window {
	out := make([]core.Window, n)
	for i := range out {
		out[i] = core.Window{
			X: 100, Y: 50, Width: 500, Height: 250,
			Layer:  layer,
			Number: firstNumber + int64(i),
		}
	}
	return out
}

func newTestEngine(src host.WindowSource, now *time.Time) *DisplayEngine {
	return &DisplayEngine{
		id:            core.NewWindowID(),
		display:       host.Display{Width: 1000, Height: 500, Scale: 1},
		logger:        snowfall.NewNopLogger(),
		source:        src,
		clock:         snowfall.NewFrameClockAt(func() time.Time { return *now }),
		running:       true,
		width:         1000,
		height:        500,
		particleCount: 1000,
		maxRects:      snowfall.MaxWindowRects,
		frame: newHostUniform(core.FrameData{
			Gravity: snowfall.DefaultGravity,
			Aspect:  2,
			MaxAge:  snowfall.DefaultMaxAge,
		}),
	}
}

func TestDisplayEngine_PausedIgnoresRedraw(t *testing.T) {
	now := time.Unix(0, 0)
	e := newTestEngine(&fakeSource{}, &now)

	e.SetRunning(false)
	e.RequestRedraw()
	e.RequestRedraw()
	assert.Equal(t, 0, e.TakeRedraw())
}

func TestDisplayEngine_ResumeRequestsOneRedraw(t *testing.T) {
	now := time.Unix(0, 0)
	e := newTestEngine(&fakeSource{}, &now)

	e.SetRunning(false)
	e.SetRunning(true)
	assert.Equal(t, 1, e.TakeRedraw())
	assert.Equal(t, 0, e.TakeRedraw())
}

func TestDisplayEngine_OcclusionEvents(t *testing.T) {
	now := time.Unix(0, 0)
	e := newTestEngine(&fakeSource{}, &now)

	e.HandleEvent(core.Event{Window: e.ID(), Kind: core.EventOccluded, Flag: true})
	assert.False(t, e.Running())
	e.RequestRedraw()
	assert.Equal(t, 0, e.TakeRedraw())

	e.HandleEvent(core.Event{Window: e.ID(), Kind: core.EventOccluded, Flag: false})
	assert.True(t, e.Running())
	assert.Equal(t, 1, e.TakeRedraw())

	// other events change nothing
	e.HandleEvent(core.Event{Window: e.ID(), Kind: core.EventResized, X: 10, Y: 10})
	e.HandleEvent(core.Event{Window: e.ID(), Kind: core.EventFocused, Flag: true})
	assert.True(t, e.Running())
	assert.Equal(t, 0, e.TakeRedraw())
	w, h := e.SurfaceSize()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)
}

func TestDisplayEngine_RefreshWindowSnapshotCaps(t *testing.T) {
	for _, m := range []int{1, 99, 100, 101, 250} {
		now := time.Unix(0, 0)
		src := &fakeSource{windows: append(windows(m, core.BaseLayer, 1), windows(5, 25, 10000)...)}
		e := newTestEngine(src, &now)
		w := &recordingWriter{}

		e.RefreshWindowSnapshot(w)

		want := min(m, snowfall.MaxWindowRects)
		require.Len(t, w.writes, 1, "m=%d", m)
		assert.Equal(t, uint64(0), w.writes[0].offset)
		assert.Len(t, w.writes[0].data, want*16, "m=%d", m)
		assert.Equal(t, want, e.RectCount())
		assert.Len(t, e.Windows(), m, "cache keeps every base-layer window")

		first := w.writes[0].data
		assert.Equal(t, float32(0.1), f32At(first, 0))
		assert.Equal(t, float32(0.1), f32At(first, 4))
		assert.Equal(t, float32(0.5), f32At(first, 8))
		assert.Equal(t, float32(0.5), f32At(first, 12))
	}
}

func TestDisplayEngine_RefreshReplacesCache(t *testing.T) {
	now := time.Unix(0, 0)
	src := &fakeSource{windows: windows(3, core.BaseLayer, 1)}
	e := newTestEngine(src, &now)
	w := &recordingWriter{}

	e.RefreshWindowSnapshot(w)
	require.Len(t, e.Windows(), 3)
	assert.Contains(t, e.Windows(), int64(2))

	src.windows = windows(1, core.BaseLayer, 50)
	e.RefreshWindowSnapshot(w)
	require.Len(t, e.Windows(), 1)
	assert.NotContains(t, e.Windows(), int64(2))
	assert.Contains(t, e.Windows(), int64(50))

	src.windows = nil
	e.RefreshWindowSnapshot(w)
	assert.Empty(t, e.Windows())
	assert.Equal(t, 0, e.RectCount())
	assert.Len(t, w.writes, 2, "empty snapshot writes nothing")
}

func TestDisplayEngine_TickUpdatesTiming(t *testing.T) {
	now := time.Unix(100, 0)
	src := &fakeSource{}
	e := newTestEngine(src, &now)
	w := &recordingWriter{}

	now = now.Add(2 * time.Second)
	e.Tick(w)
	assert.InDelta(t, 2.0, e.FrameData().Time, 1e-6)
	assert.InDelta(t, 2.0, e.FrameData().Dt, 1e-6)

	now = now.Add(500 * time.Millisecond)
	e.Tick(w)
	assert.InDelta(t, 2.5, e.FrameData().Time, 1e-6)
	assert.InDelta(t, 0.5, e.FrameData().Dt, 1e-6)

	assert.Equal(t, 2, src.calls)
	assert.Empty(t, w.writes, "tick leaves the uniform upload to render")
	assert.Equal(t, snowfall.DefaultGravity, e.FrameData().Gravity)
}

func TestDisplayEngine_SetSimulation(t *testing.T) {
	now := time.Unix(0, 0)
	e := newTestEngine(&fakeSource{}, &now)
	w := &recordingWriter{}

	e.SetSimulation(mgl32.Vec2{0.3, -0.2}, 42)
	e.Tick(w)
	assert.Equal(t, mgl32.Vec2{0.3, -0.2}, e.FrameData().Gravity)
	assert.Equal(t, float32(42), e.FrameData().MaxAge)
	assert.Equal(t, float32(2), e.FrameData().Aspect)
}

// renderFunc parses engine.go and returns the body of DisplayEngine.Render.
func renderFunc(t *testing.T) *ast.FuncDecl {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "engine.go", nil, 0)
	require.NoError(t, err)
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Recv != nil && fn.Name.Name == "Render" {
			return fn
		}
	}
	t.Fatal("Render not found in engine.go")
	return nil
}

// Every per-frame wgpu handle Render creates is released before it returns.
func TestDisplayEngine_RenderReleasesFrameHandles(t *testing.T) {
	creators := map[string]bool{
		"GetCurrentTexture":    true,
		"CreateView":           true,
		"CreateCommandEncoder": true,
		"BeginComputePass":     true,
		"BeginRenderPass":      true,
		"Finish":               true,
	}
	created := map[string]string{}
	released := map[string]bool{}

	ast.Inspect(renderFunc(t).Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			call, ok := n.Rhs[0].(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || !creators[sel.Sel.Name] {
				return true
			}
			if id, ok := n.Lhs[0].(*ast.Ident); ok {
				created[id.Name] = sel.Sel.Name
			}
		case *ast.DeferStmt:
			sel, ok := n.Call.Fun.(*ast.SelectorExpr)
			if !ok || sel.Sel.Name != "Release" {
				return true
			}
			if id, ok := sel.X.(*ast.Ident); ok {
				released[id.Name] = true
			}
		}
		return true
	})

	require.Len(t, created, len(creators))
	for name, via := range created {
		assert.True(t, released[name], "%s from %s is never released", name, via)
	}
}

func TestDisplayEngine_RenderClearColorIsKeyed(t *testing.T) {
	found := false
	ast.Inspect(renderFunc(t).Body, func(n ast.Node) bool {
		lit, ok := n.(*ast.CompositeLit)
		if !ok {
			return true
		}
		sel, ok := lit.Type.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "Color" {
			return true
		}
		found = true
		for _, elt := range lit.Elts {
			assert.IsType(t, &ast.KeyValueExpr{}, elt)
		}
		return true
	})
	assert.True(t, found)
}
