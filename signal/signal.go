package signal

import (
	"math"
	"sync/atomic"
)

// NeutralOpenness is reported until a gesture source delivers its first value
const NeutralOpenness = 0.5

// Bands holds normalized spectral band energies, each in [0,1]
type Bands struct {
	Bass, Mid, High, Average float64
}

// Snapshot is the reactive input the integrator reads once per tick
type Snapshot struct {
	Openness float64
	Bands    Bands
}

// Cell is a latest-value handoff between the gesture/audio producers and the frame loop.
// Producers overwrite, the reader loads; nothing is queued and stale values are fine.
type Cell struct {
	openness atomic.Uint64 // math.Float64bits, valid once tracked is set
	tracked  atomic.Bool
	bands    atomic.Pointer[Bands]
}

// NewCell returns a cell reporting neutral openness and silent audio
func NewCell() *Cell {
	return &Cell{}
}

// SetOpenness publishes a gesture reading. Non-finite values are dropped.
func (c *Cell) SetOpenness(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.openness.Store(math.Float64bits(clamp01(v)))
	c.tracked.Store(true)
}

// ResetOpenness returns the cell to the untracked neutral state
func (c *Cell) ResetOpenness() {
	c.tracked.Store(false)
	c.openness.Store(0)
}

// Openness returns the latest openness, or NeutralOpenness when nothing was delivered
func (c *Cell) Openness() float64 {
	if !c.tracked.Load() {
		return NeutralOpenness
	}
	return math.Float64frombits(c.openness.Load())
}

// Tracking reports whether a gesture source has delivered at least one value
func (c *Cell) Tracking() bool {
	return c.tracked.Load()
}

// SetBands publishes an audio reading, clamping every band into [0,1]
func (c *Cell) SetBands(b Bands) {
	b.Bass = clamp01(b.Bass)
	b.Mid = clamp01(b.Mid)
	b.High = clamp01(b.High)
	b.Average = clamp01(b.Average)
	c.bands.Store(&b)
}

// ClearBands marks audio as absent
func (c *Cell) ClearBands() {
	c.bands.Store(nil)
}

// Bands returns the latest audio reading, zero when absent
func (c *Cell) Bands() Bands {
	if b := c.bands.Load(); b != nil {
		return *b
	}
	return Bands{}
}

// Snapshot captures the current signal. With audio disabled the bands read as zero
// even if a producer left a value behind.
func (c *Cell) Snapshot(audioEnabled bool) Snapshot {
	s := Snapshot{Openness: c.Openness()}
	if audioEnabled {
		s.Bands = c.Bands()
	}
	return s
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
