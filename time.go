package snowfall

import (
	"time"
)

// FrameClock tracks the two timestamps a display engine needs: when it was
// created and when it last ticked.
type FrameClock struct {
	Created  time.Time
	LastTick time.Time

	now func() time.Time
}

func NewFrameClock() *FrameClock {
	return NewFrameClockAt(time.Now)
}

// NewFrameClockAt builds a clock reading time from now. Tests pass a fake.
func NewFrameClockAt(now func() time.Time) *FrameClock {
	t := now()
	return &FrameClock{
		Created:  t,
		LastTick: t,
		now:      now,
	}
}

// Advance returns the time since creation and since the previous Advance,
// then restarts the frame interval.
func (c *FrameClock) Advance() (elapsed, dt time.Duration) {
	t := c.now()
	elapsed = t.Sub(c.Created)
	dt = t.Sub(c.LastTick)
	c.LastTick = t
	return elapsed, dt
}
