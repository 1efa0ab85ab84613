//go:build darwin

package host

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#import <Cocoa/Cocoa.h>

static int snowConfigureOverlay(void *ptr) {
	NSWindow *win = (NSWindow *)ptr;
	if (win == nil) {
		return 0;
	}
	[win setMovable:NO];
	[win setHasShadow:NO];
	[win setIgnoresMouseEvents:YES];
	[win setOpaque:NO];
	[win setBackgroundColor:[NSColor clearColor]];
	[win setCollectionBehavior:NSWindowCollectionBehaviorCanJoinAllSpaces
		| NSWindowCollectionBehaviorIgnoresCycle
		| NSWindowCollectionBehaviorStationary
		| NSWindowCollectionBehaviorFullScreenNone];
	NSScreen *screen = [win screen];
	if (screen != nil) {
		// glfw keeps windows below the menu bar; cover the whole frame.
		[win setFrame:[screen frame] display:YES];
	}
	return 1;
}

static int snowIsOccluded(void *ptr) {
	NSWindow *win = (NSWindow *)ptr;
	if (win == nil) {
		return -1;
	}
	return ([win occlusionState] & NSWindowOcclusionStateVisible) == 0 ? 1 : 0;
}
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNoNativeWindow = errors.New("no NSWindow behind glfw window")

func configureNative(win *glfw.Window) error {
	ptr := unsafe.Pointer(win.GetCocoaWindow())
	if C.snowConfigureOverlay(ptr) == 0 {
		return errNoNativeWindow
	}
	return nil
}

func nativeOccluded(win *glfw.Window) (occluded bool, ok bool) {
	switch C.snowIsOccluded(unsafe.Pointer(win.GetCocoaWindow())) {
	case 1:
		return true, true
	case 0:
		return false, true
	default:
		return false, false
	}
}
