package app

import (
	"time"
)

// Profiler accumulates per-frame costs and reports a frame rate once per
// report interval.
type Profiler struct {
	TickTime   time.Duration
	RenderTime time.Duration

	FrameCount int
	FPS        float64
	FPSTime    time.Duration
	Interval   time.Duration
}

func NewProfiler() *Profiler {
	return &Profiler{Interval: time.Second}
}

// Frame records one rendered frame and returns true when a report interval
// elapsed, leaving FPS and the averaged times readable until the next call.
func (p *Profiler) Frame(tick, render time.Duration, sinceLast time.Duration) bool {
	p.FrameCount++
	p.TickTime += tick
	p.RenderTime += render
	p.FPSTime += sinceLast
	if p.FPSTime < p.Interval {
		return false
	}
	p.FPS = float64(p.FrameCount) / p.FPSTime.Seconds()
	return true
}

func (p *Profiler) AvgTick() time.Duration   { return p.avg(p.TickTime) }
func (p *Profiler) AvgRender() time.Duration { return p.avg(p.RenderTime) }

func (p *Profiler) avg(d time.Duration) time.Duration {
	if p.FrameCount == 0 {
		return 0
	}
	return d / time.Duration(p.FrameCount)
}

// Reset starts a new report interval. FPS keeps its last value.
func (p *Profiler) Reset() {
	p.TickTime = 0
	p.RenderTime = 0
	p.FrameCount = 0
	p.FPSTime = 0
}
