package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/aether-particles/particles"
)

// Particle count limits
const (
	MinCount     = 1
	MaxCount     = 10000
	CountStep    = 1000
	DefaultCount = 5000
	DefaultColor = "#00eaff"
)

var (
	ErrInvalidCount   = errors.New("particle count out of range")
	ErrInvalidShape   = errors.New("unknown shape")
	ErrInvalidColor   = errors.New("invalid color")
	ErrInvalidCloud   = errors.New("invalid custom point cloud")
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Config is the user-facing visualizer setup
type Config struct {
	Count        int       `json:"count"`
	Shape        string    `json:"shape"`
	Color        string    `json:"color"`
	AudioEnabled bool      `json:"audio_enabled"`
	CustomCloud  []float32 `json:"custom_cloud,omitempty"`
	Seed         int64     `json:"seed,omitempty"` // 0 seeds from the clock
	Workers      int       `json:"workers,omitempty"`
}

// Default returns the startup configuration
func Default() Config {
	return Config{
		Count:   DefaultCount,
		Shape:   particles.KindSphere.String(),
		Color:   DefaultColor,
		Workers: 1,
	}
}

// Validate rejects anything the integrator must never see
func (c Config) Validate() error {
	if c.Count < MinCount || c.Count > MaxCount {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCount, c.Count, MinCount, MaxCount)
	}
	if _, err := particles.ParseKind(c.Shape); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidShape, c.Shape)
	}
	if _, err := colorful.Hex(c.Color); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	if len(c.CustomCloud)%3 != 0 {
		return fmt.Errorf("%w: %d values is not a list of triples", ErrInvalidCloud, len(c.CustomCloud))
	}
	for i, v := range c.CustomCloud {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 1 {
			return fmt.Errorf("%w: value %d is %v", ErrInvalidCloud, i, v)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}

// Kind returns the selected shape kind, sphere when unparsable
func (c Config) Kind() particles.Kind {
	k, _ := particles.ParseKind(c.Shape)
	return k
}

// ShapeValue builds the shape variant, attaching the cloud for custom shapes
func (c Config) ShapeValue() particles.Shape {
	return particles.ShapeFor(c.Kind(), c.CustomCloud)
}

// BaseColor parses Color, falling back to the default tint
func (c Config) BaseColor() colorful.Color {
	col, err := colorful.Hex(c.Color)
	if err != nil {
		col, _ = colorful.Hex(DefaultColor)
	}
	return col
}

// Save writes the config as JSON
func (c Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load reads a JSON config on top of the defaults and validates it
func Load(filename string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from AETHER_* environment variables.
// Unparsable values are ignored.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("AETHER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Count = n
		}
	}
	if v := os.Getenv("AETHER_SHAPE"); v != "" {
		if k, err := particles.ParseKind(v); err == nil {
			cfg.Shape = k.String()
		}
	}
	if v := os.Getenv("AETHER_COLOR"); v != "" {
		if _, err := colorful.Hex(v); err == nil {
			cfg.Color = v
		}
	}
	if v := os.Getenv("AETHER_AUDIO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AudioEnabled = b
		}
	}
	if v := os.Getenv("AETHER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("AETHER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

// StepCount moves count by delta CountSteps, staying within limits.
// Stepping down never grows a swarm that is already below one step.
func StepCount(count, delta int) int {
	n := count + delta*CountStep
	if n < CountStep {
		n = CountStep
		if delta < 0 {
			n = min(count, CountStep)
		}
	}
	if n > MaxCount {
		n = MaxCount
	}
	return n
}
