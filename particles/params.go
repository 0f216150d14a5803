package particles

import "time"

// Integration constants
const (
	TickRate           = 60
	TickDuration       = time.Second / TickRate
	TickSeconds        = 1.0 / TickRate
	MaxTicksPerAdvance = 4 // backlog beyond this is dropped instead of replayed
	InitialPointSize   = 0.2
)

// Noise oscillator frequencies
const (
	noiseFreqX  = 0.5
	noisePhaseX = 0.1
	noiseFreqY  = 0.3
	noisePhaseY = 0.2
	jitterFreq  = 10.0
)

// Params tunes the integrator
type Params struct {
	Stiffness     float64 // spring gain toward the goal
	BassStiffness float64 // extra gain per unit of bass
	Friction      float64 // velocity retained per tick

	Noise         bool
	NoiseBase     float64
	NoiseOpenness float64
	NoiseBass     float64

	JitterGain float64 // mid-band jitter amplitude

	SizeBase     float64
	SizeOpenness float64
	SizeBass     float64
	SizeLerp     float64

	SpinBase   float64 // y rotation per tick
	SpinClosed float64 // extra y rotation per tick at openness 0
	SpinMid    float64
	TiltClosed float64 // z rotation per tick at openness 0

	Workers int // >1 splits the pass across goroutines
}

// DefaultParams returns the tuning the visualizer ships with
func DefaultParams() Params {
	return Params{
		Stiffness:     0.02,
		BassStiffness: 0.05,
		Friction:      0.90,

		Noise:         true,
		NoiseBase:     0.2,
		NoiseOpenness: 2,
		NoiseBass:     1,

		JitterGain: 2,

		SizeBase:     0.15,
		SizeOpenness: 0.1,
		SizeBass:     0.4,
		SizeLerp:     0.1,

		SpinBase:   0.001,
		SpinClosed: 0.005,
		SpinMid:    0.01,
		TiltClosed: 0.001,

		Workers: 1,
	}
}
