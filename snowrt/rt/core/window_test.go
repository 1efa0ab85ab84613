package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWindows(n int, layer int64) []Window {
	out := make([]Window, n)
	for i := range out {
		out[i] = Window{
			X: float64(i), Y: float64(2 * i),
			Width: 100, Height: 50,
			Layer:  layer,
			Number: int64(1000 + i),
		}
	}
	return out
}

func TestWindowRects_Normalizes(t *testing.T) {
	rects := WindowRects([]Window{{X: 960, Y: 270, Width: 480, Height: 540}}, 1920, 1080, 100)
	require.Len(t, rects, 1)
	assert.Equal(t, [2]float32{0.5, 0.25}, rects[0].Pos)
	assert.Equal(t, [2]float32{0.25, 0.5}, rects[0].Dim)
}

func TestWindowRects_Cap(t *testing.T) {
	for _, m := range []int{0, 1, 99, 100, 101, 250} {
		windows := makeWindows(m, BaseLayer)
		rects := WindowRects(windows, 1000, 1000, 100)
		want := min(m, 100)
		require.Len(t, rects, want, "m=%d", m)
		for i, r := range rects {
			// first-N in host order
			assert.Equal(t, float32(i)/1000, r.Pos[0])
		}
	}
}

func TestWindowRects_ZeroDisplay(t *testing.T) {
	assert.Empty(t, WindowRects(makeWindows(3, 0), 0, 1080, 100))
}

func TestBaseLayerWindows_KeepsOrder(t *testing.T) {
	all := []Window{
		{Number: 1, Layer: 0},
		{Number: 2, Layer: 25},
		{Number: 3, Layer: 0},
		{Number: 4, Layer: -1},
		{Number: 5, Layer: 0},
	}
	base := BaseLayerWindows(all)
	require.Len(t, base, 3)
	assert.Equal(t, []int64{1, 3, 5}, []int64{base[0].Number, base[1].Number, base[2].Number})
}

func TestWindowsByNumber(t *testing.T) {
	m := WindowsByNumber(makeWindows(3, 0))
	assert.Len(t, m, 3)
	assert.Equal(t, float64(2), m[1002].X)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "Occluded(true)", Event{Kind: EventOccluded, Flag: true}.String())
	assert.Equal(t, "Resized(800, 600)", Event{Kind: EventResized, X: 800, Y: 600}.String())
	assert.Equal(t, "CloseRequested", Event{Kind: EventCloseRequested}.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}

func TestWindowID_Unique(t *testing.T) {
	a, b := NewWindowID(), NewWindowID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 36)
}
