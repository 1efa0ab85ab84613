package core

import (
	"fmt"

	"github.com/google/uuid"
)

// WindowID identifies one overlay window for the lifetime of the process.
type WindowID uuid.UUID

func NewWindowID() WindowID { return WindowID(uuid.New()) }

func (id WindowID) String() string { return uuid.UUID(id).String() }

type EventKind int

const (
	EventOccluded EventKind = iota
	EventCloseRequested
	EventFocused
	EventResized
	EventMoved
	EventRefresh
	EventCursorEntered
)

func (k EventKind) String() string {
	switch k {
	case EventOccluded:
		return "Occluded"
	case EventCloseRequested:
		return "CloseRequested"
	case EventFocused:
		return "Focused"
	case EventResized:
		return "Resized"
	case EventMoved:
		return "Moved"
	case EventRefresh:
		return "Refresh"
	case EventCursorEntered:
		return "CursorEntered"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one host window event. Flag carries the boolean payload of
// Occluded/Focused/CursorEntered; X and Y carry sizes and positions.
type Event struct {
	Window WindowID
	Kind   EventKind
	Flag   bool
	X, Y   int
}

func (e Event) String() string {
	switch e.Kind {
	case EventOccluded, EventFocused, EventCursorEntered:
		return fmt.Sprintf("%s(%t)", e.Kind, e.Flag)
	case EventResized, EventMoved:
		return fmt.Sprintf("%s(%d, %d)", e.Kind, e.X, e.Y)
	default:
		return e.Kind.String()
	}
}
