package gpu

import (
	"errors"
	"fmt"
	"strings"
)

type BuildStage string

const (
	StageAdapter   BuildStage = "adapter"
	StageDevice    BuildStage = "device"
	StageWindow    BuildStage = "window"
	StageSurface   BuildStage = "surface"
	StageBuffer    BuildStage = "buffer"
	StageShader    BuildStage = "shader"
	StageBindGroup BuildStage = "bind group"
	StagePipeline  BuildStage = "pipeline"
)

// BuildError is a startup failure. Any BuildError aborts initialization.
type BuildError struct {
	Display string
	Stage   BuildStage
	Err     error
}

func (e *BuildError) Error() string {
	if e.Display == "" {
		return fmt.Sprintf("build %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("build %s for %s: %v", e.Stage, e.Display, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

type SurfaceErrorKind int

const (
	SurfaceOther SurfaceErrorKind = iota
	SurfaceTimeout
	SurfaceOutdated
	SurfaceLost
	SurfaceOutOfMemory
)

func (k SurfaceErrorKind) String() string {
	switch k {
	case SurfaceTimeout:
		return "timeout"
	case SurfaceOutdated:
		return "outdated"
	case SurfaceLost:
		return "lost"
	case SurfaceOutOfMemory:
		return "out of memory"
	default:
		return "other"
	}
}

// SurfaceError is a per-frame failure to acquire, render to or present a
// display's surface. It is never retried inside the engine.
type SurfaceError struct {
	Kind    SurfaceErrorKind
	Display string
	Err     error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("surface %s on %s: %v", e.Kind, e.Display, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

func newSurfaceError(display string, err error) *SurfaceError {
	return &SurfaceError{Kind: classifySurfaceError(err), Display: display, Err: err}
}

// classifySurfaceError maps the binding's texture-acquire status text onto
// a kind. The binding reports the status by name only.
func classifySurfaceError(err error) SurfaceErrorKind {
	if err == nil {
		return SurfaceOther
	}
	s := strings.ToLower(err.Error())
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch {
	case strings.Contains(s, "outofmemory"):
		return SurfaceOutOfMemory
	case strings.Contains(s, "outdated"):
		return SurfaceOutdated
	case strings.Contains(s, "lost"):
		return SurfaceLost
	case strings.Contains(s, "timeout"):
		return SurfaceTimeout
	default:
		return SurfaceOther
	}
}

// IsOutOfMemory reports whether err is a surface out-of-memory failure,
// the only render error that ends the process.
func IsOutOfMemory(err error) bool {
	var se *SurfaceError
	return errors.As(err, &se) && se.Kind == SurfaceOutOfMemory
}
