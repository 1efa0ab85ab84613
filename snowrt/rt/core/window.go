package core

// Window is one on-screen host window as reported by the compositor.
// OwnerName and Name are nil when the host withholds them.
type Window struct {
	OwnerName *string `yaml:"owner,omitempty"`
	Name      *string `yaml:"name,omitempty"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Layer     int64   `yaml:"layer"`
	Number    int64   `yaml:"number"`
}

// BaseLayer is the compositor layer of ordinary application windows.
const BaseLayer = 0

// RectInstance is a window rectangle normalized to the display, matching
// the instance input of rect.wgsl.
type RectInstance struct {
	Pos [2]float32 `location:"10" format:"float2"`
	Dim [2]float32 `location:"11" format:"float2"`
}

// BaseLayerWindows keeps ordinary application windows in host order.
func BaseLayerWindows(windows []Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Layer == BaseLayer {
			out = append(out, w)
		}
	}
	return out
}

// WindowRects maps windows to rects normalized by the display pixel size
// and truncates to limit, keeping the first entries in host order.
func WindowRects(windows []Window, width, height float32, limit int) []RectInstance {
	n := len(windows)
	if limit >= 0 && n > limit {
		n = limit
	}
	if width <= 0 || height <= 0 {
		return []RectInstance{}
	}
	rects := make([]RectInstance, n)
	for i, w := range windows[:n] {
		rects[i] = RectInstance{
			Pos: [2]float32{float32(w.X) / width, float32(w.Y) / height},
			Dim: [2]float32{float32(w.Width) / width, float32(w.Height) / height},
		}
	}
	return rects
}

// WindowsByNumber indexes windows by their per-session window number.
func WindowsByNumber(windows []Window) map[int64]Window {
	m := make(map[int64]Window, len(windows))
	for _, w := range windows {
		m[w.Number] = w
	}
	return m
}
