package host

import (
	"errors"
	"fmt"

	"github.com/gekko3d/snowfall"
	"github.com/gekko3d/snowfall/snowrt/rt/core"
)

// WindowSource lists the windows currently on screen, in host order.
type WindowSource interface {
	OnScreenWindows() []core.Window
}

// rawWindowRecord is one compositor record before validation. Nil fields
// were missing or of the wrong type on the host side.
type rawWindowRecord struct {
	Valid  bool
	Owner  *string
	Name   *string
	Bounds *[4]float64
	Layer  *int64
	Number *int64
}

var (
	ErrNotARecord    = errors.New("record is not a dictionary")
	ErrMissingBounds = errors.New("missing bounds")
	ErrMissingLayer  = errors.New("missing layer")
	ErrMissingNumber = errors.New("missing window number")
)

// DecodeError reports a record that was skipped.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("window record %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeWindow(index int, raw rawWindowRecord) (core.Window, error) {
	fail := func(err error) (core.Window, error) {
		return core.Window{}, &DecodeError{Index: index, Err: err}
	}
	switch {
	case !raw.Valid:
		return fail(ErrNotARecord)
	case raw.Bounds == nil:
		return fail(ErrMissingBounds)
	case raw.Layer == nil:
		return fail(ErrMissingLayer)
	case raw.Number == nil:
		return fail(ErrMissingNumber)
	}
	b := *raw.Bounds
	return core.Window{
		OwnerName: raw.Owner,
		Name:      raw.Name,
		X:         b[0],
		Y:         b[1],
		Width:     b[2],
		Height:    b[3],
		Layer:     *raw.Layer,
		Number:    *raw.Number,
	}, nil
}

func decodeWindows(raws []rawWindowRecord, logger snowfall.Logger) []core.Window {
	out := make([]core.Window, 0, len(raws))
	for i, raw := range raws {
		w, err := decodeWindow(i, raw)
		if err != nil {
			logger.Debugf("skipping unreadable window record: %v", err)
			continue
		}
		out = append(out, w)
	}
	return out
}

// CompositorWindows queries the host compositor for on-screen windows of
// every layer. Off macOS it always reports no windows.
type CompositorWindows struct {
	Logger snowfall.Logger
}

func (c CompositorWindows) OnScreenWindows() []core.Window {
	return decodeWindows(copyWindowRecords(), snowfall.OrNop(c.Logger))
}
