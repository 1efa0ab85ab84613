//go:build !darwin

package host

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// configureNative is a no-op off macOS; the glfw hints already give an
// undecorated, floating, transparent window.
func configureNative(win *glfw.Window) error {
	return nil
}

// nativeOccluded has no host query off macOS; iconify callbacks stand in.
func nativeOccluded(win *glfw.Window) (occluded bool, ok bool) {
	return false, false
}
