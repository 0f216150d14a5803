package particles

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olivierh59500/aether-particles/signal"
)

// Frame is what the presentation layer reads after a tick.
// Positions aliases the live buffer and changes every tick.
type Frame struct {
	Positions []float32
	Count     int
	PointSize float64
	RotationY float64
	RotationZ float64
}

// System integrates a particle set toward its blended goals
type System struct {
	params Params
	set    atomic.Pointer[Set]
	staged atomic.Pointer[Set]

	ticks   uint64
	pending time.Duration

	audioEnabled bool

	pointSize float64
	rotY      float64
	rotZ      float64
}

// NewSystem creates a system integrating set
func NewSystem(params Params, set *Set) *System {
	s := &System{
		params:    params,
		pointSize: InitialPointSize,
	}
	s.set.Store(set)
	return s
}

// Params returns the tuning in use
func (s *System) Params() Params {
	return s.params
}

// Set returns the set currently being integrated
func (s *System) Set() *Set {
	return s.set.Load()
}

// Swap installs set right away and must be called from the ticking goroutine.
// Velocity is zeroed so no momentum carries over.
func (s *System) Swap(set *Set) {
	if set != nil {
		clear(set.Velocity)
	}
	s.set.Store(set)
}

// Stage queues a set built on another goroutine. The next tick installs it,
// carrying positions over from the live set when the counts match. A later
// Stage before that tick replaces the earlier one.
func (s *System) Stage(set *Set) {
	if set != nil {
		s.staged.Store(set)
	}
}

func (s *System) install() {
	next := s.staged.Swap(nil)
	if next == nil {
		return
	}
	if cur := s.set.Load(); cur != nil && cur.Count == next.Count {
		copy(next.Position, cur.Position)
	}
	s.Swap(next)
}

// SetAudioEnabled toggles audio reactivity. While disabled every band reads as zero.
func (s *System) SetAudioEnabled(on bool) {
	s.audioEnabled = on
}

// AudioEnabled reports whether audio bands are applied
func (s *System) AudioEnabled() bool {
	return s.audioEnabled
}

// Time returns simulated seconds
func (s *System) Time() float64 {
	return float64(s.ticks) * TickSeconds
}

// Ticks returns the number of completed ticks
func (s *System) Ticks() uint64 {
	return s.ticks
}

// Frame returns the output of the latest tick
func (s *System) Frame() Frame {
	set := s.set.Load()
	f := Frame{
		PointSize: s.pointSize,
		RotationY: s.rotY,
		RotationZ: s.rotZ,
	}
	if set != nil {
		f.Positions = set.Position
		f.Count = set.Count
	}
	return f
}

// Advance runs as many fixed ticks as elapsed covers, carrying the remainder.
// At most MaxTicksPerAdvance run per call. Returns the number of ticks run.
func (s *System) Advance(elapsed time.Duration, sig signal.Snapshot) int {
	if elapsed < 0 {
		elapsed = 0
	}
	s.pending += elapsed
	n := int(s.pending / TickDuration)
	if n > MaxTicksPerAdvance {
		n = MaxTicksPerAdvance
		s.pending = 0
	} else {
		s.pending -= time.Duration(n) * TickDuration
	}
	for i := 0; i < n; i++ {
		s.Tick(sig)
	}
	return n
}

// Tick advances the simulation by exactly one fixed step
func (s *System) Tick(sig signal.Snapshot) {
	s.install()
	sig = sanitize(sig)
	if !s.audioEnabled {
		sig.Bands = signal.Bands{}
	}
	p := s.params
	openness := sig.Openness
	bass := sig.Bands.Bass
	mid := sig.Bands.Mid

	// Global material reactivity
	targetSize := p.SizeBase + openness*p.SizeOpenness + bass*p.SizeBass
	s.pointSize = Blend(s.pointSize, targetSize, p.SizeLerp)

	// Closed hands spin faster
	s.rotY += p.SpinBase + (1-openness)*p.SpinClosed + mid*p.SpinMid
	s.rotZ += (1 - openness) * p.TiltClosed

	if set := s.set.Load(); set != nil && set.Count > 0 {
		c := stepConstants{
			time:      s.Time(),
			openness:  openness,
			stiffness: p.Stiffness + bass*p.BassStiffness,
			friction:  p.Friction,
			jitter:    mid * p.JitterGain,
		}
		if p.Noise {
			c.noiseAmp = p.NoiseBase + openness*p.NoiseOpenness + bass*p.NoiseBass
		}
		s.integrate(set, c)
	}
	s.ticks++
}

func (s *System) integrate(set *Set, c stepConstants) {
	workers := s.params.Workers
	if workers <= 1 || set.Count < workers*256 {
		step(set, c, 0, set.Count)
		return
	}

	var wg sync.WaitGroup
	chunk := (set.Count + workers - 1) / workers
	for lo := 0; lo < set.Count; lo += chunk {
		hi := min(lo+chunk, set.Count)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			step(set, c, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// Blend interpolates from a to b. Exact at t=0, t=1 and the midpoint.
func Blend(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func sanitize(sig signal.Snapshot) signal.Snapshot {
	sig.Openness = unit(sig.Openness, signal.NeutralOpenness)
	sig.Bands.Bass = unit(sig.Bands.Bass, 0)
	sig.Bands.Mid = unit(sig.Bands.Mid, 0)
	sig.Bands.High = unit(sig.Bands.High, 0)
	return sig
}

func unit(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
