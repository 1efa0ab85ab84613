package snowfall

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/snowfall/snowrt/rt/core"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultParticleCount = 1000
	DefaultMaxAge        = 100.0
	// MaxWindowRects caps how many on-screen windows are mirrored to the GPU
	// per frame. Extra windows are dropped.
	MaxWindowRects = 100
	// WorkgroupSize must match @workgroup_size in simulate.wgsl.
	WorkgroupSize = 256

	// Default wgpu device limits the particle buffer and dispatch must fit.
	MaxWorkgroupsPerDimension = 65535
	MaxStorageBindingBytes    = 128 << 20

	MaxParticleCount = min(MaxWorkgroupsPerDimension*WorkgroupSize, MaxStorageBindingBytes/core.ParticleBytes)
)

var DefaultGravity = mgl32.Vec2{0.1, -1.0}

// ClearColor is the translucent tint the particle pass clears to.
var ClearColor = [4]float64{0.0, 0.2, 0.3, 0.0}

type Config struct {
	ParticleCount int        `toml:"particles"`
	Gravity       mgl32.Vec2 `toml:"gravity"`
	MaxAge        float32    `toml:"max_age"`
	Debug         bool       `toml:"debug"`
	Title         string     `toml:"title"`
}

func DefaultConfig() Config {
	return Config{
		ParticleCount: DefaultParticleCount,
		Gravity:       DefaultGravity,
		MaxAge:        DefaultMaxAge,
		Title:         "snowfall",
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.ParticleCount < 0 {
		errs = append(errs, fmt.Errorf("particle count must not be negative, got %d", c.ParticleCount))
	}
	if c.ParticleCount > MaxParticleCount {
		errs = append(errs, fmt.Errorf("particle count %d exceeds the device limit of %d", c.ParticleCount, MaxParticleCount))
	}
	if !(c.MaxAge > 0) || math32.IsInf(c.MaxAge, 0) {
		errs = append(errs, fmt.Errorf("max age must be a positive finite number, got %v", c.MaxAge))
	}
	for i, g := range c.Gravity {
		if math32.IsNaN(g) || math32.IsInf(g, 0) {
			errs = append(errs, fmt.Errorf("gravity component %d is not finite", i))
		}
	}
	return errors.Join(errs...)
}

// ParseConfig reads TOML on top of DefaultConfig. Unknown keys are
// rejected and the result is validated.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
