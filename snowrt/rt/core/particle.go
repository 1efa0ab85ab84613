package core

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle matches the WGSL struct in simulate.wgsl and the instance layout
// of render.wgsl:
// struct Particle { pos: vec2f, vel: vec2f, scale: f32, age: f32 }
type Particle struct {
	Pos   mgl32.Vec2 `location:"10" format:"float2"`
	Vel   mgl32.Vec2 `location:"11" format:"float2"`
	Scale float32    `location:"12" format:"float"`
	Age   float32    `location:"13" format:"float"`
}

// QuadVertex is one corner of the shared flake/rect mesh.
type QuadVertex struct {
	Pos [2]float32 `location:"0" format:"float2"`
}

// QuadMesh is two triangles spanning [-1,1]^2, shared by every instance.
var QuadMesh = []QuadVertex{
	{Pos: [2]float32{-1, 1}},
	{Pos: [2]float32{1, 1}},
	{Pos: [2]float32{1, -1}},
	{Pos: [2]float32{1, -1}},
	{Pos: [2]float32{-1, -1}},
	{Pos: [2]float32{-1, 1}},
}

// FrameData is the per-frame uniform. Layout (24 bytes):
// dt f32 @0, time f32 @4, gravity vec2f @8, aspect f32 @16, max_age f32 @20.
type FrameData struct {
	Dt      float32
	Time    float32
	Gravity mgl32.Vec2
	Aspect  float32
	MaxAge  float32
}

// Spawn band and scale range for new and recycled particles.
const (
	SpawnMinX     = -1.0
	SpawnMaxX     = 1.0
	SpawnSpreadY  = 1.05
	ScaleMin      = 0.1
	ScaleMax      = 1.5
	ScaleFactor   = 0.01
	ParticleBytes = 24
)

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// SpawnParticle returns a fresh particle: uniform in the spawn band, at
// rest, age zero, random scale.
func SpawnParticle(rng *rand.Rand) Particle {
	return Particle{
		Pos: mgl32.Vec2{
			lerp(SpawnMinX, SpawnMaxX, rng.Float32()),
			lerp(-1, 1, rng.Float32()) * SpawnSpreadY,
		},
		Scale: lerp(ScaleMin, ScaleMax, rng.Float32()) * ScaleFactor,
	}
}

// NewParticles fills an arena of exactly n particles. n <= 0 yields an empty
// arena.
func NewParticles(n int, rng *rand.Rand) []Particle {
	if n < 0 {
		n = 0
	}
	out := make([]Particle, n)
	for i := range out {
		out[i] = SpawnParticle(rng)
	}
	return out
}

// Step advances every particle by one frame in place. It is the CPU mirror
// of simulate.wgsl: semi-implicit Euler, then recycle anything older than
// MaxAge.
func Step(particles []Particle, frame FrameData, rng *rand.Rand) {
	for i := range particles {
		p := &particles[i]
		p.Vel = p.Vel.Add(frame.Gravity.Mul(frame.Dt))
		p.Pos = p.Pos.Add(p.Vel.Mul(frame.Dt))
		p.Age += frame.Dt
		if p.Age > frame.MaxAge {
			*p = SpawnParticle(rng)
		}
	}
}

// InSpawnBand reports whether p looks freshly spawned.
func InSpawnBand(p Particle) bool {
	x, y := p.Pos.X(), p.Pos.Y()
	const eps = 1e-7
	scaleLo, scaleHi := float32(ScaleMin*ScaleFactor-eps), float32(ScaleMax*ScaleFactor+eps)
	return x >= SpawnMinX && x <= SpawnMaxX &&
		y >= -SpawnSpreadY && y <= SpawnSpreadY &&
		p.Vel == mgl32.Vec2{} &&
		p.Age == 0 &&
		p.Scale >= scaleLo && p.Scale <= scaleHi
}

// WorkgroupCount is ceil(n/size), the number of compute workgroups needed
// for one thread per particle.
func WorkgroupCount(n, size int) uint32 {
	if n <= 0 || size <= 0 {
		return 0
	}
	return uint32((n + size - 1) / size)
}
