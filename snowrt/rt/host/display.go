package host

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Display is one physical screen. Position and size are in screen
// coordinates; Scale converts them to framebuffer pixels.
type Display struct {
	Index  int
	Name   string
	X, Y   int
	Width  int
	Height int
	Scale  float32
}

func (d Display) String() string {
	return fmt.Sprintf("display-%d(%s %dx%d@%d,%d x%.1f)", d.Index, d.Name, d.Width, d.Height, d.X, d.Y, d.Scale)
}

// PixelSize is the framebuffer size the display is expected to back.
func (d Display) PixelSize() (int, int) {
	s := d.Scale
	if !(s >= 1) {
		s = 1
	}
	return int(float32(d.Width) * s), int(float32(d.Height) * s)
}

// Displays enumerates attached monitors in glfw order. Monitors that report
// no video mode are skipped. glfw must be initialized.
func Displays() []Display {
	mons := glfw.GetMonitors()
	out := make([]Display, 0, len(mons))
	for _, mon := range mons {
		vm := mon.GetVideoMode()
		if vm == nil || vm.Width == 0 || vm.Height == 0 {
			continue
		}
		x, y := mon.GetPos()
		scale, _ := mon.GetContentScale()
		out = append(out, Display{
			Index:  len(out),
			Name:   mon.GetName(),
			X:      x,
			Y:      y,
			Width:  vm.Width,
			Height: vm.Height,
			Scale:  scale,
		})
	}
	return out
}
