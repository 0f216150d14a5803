package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/olivierh59500/aether-particles/signal"
)

// Analyzer defaults, matching a browser analyser node
const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyzer turns a window of mono samples into band energies.
// Not safe for concurrent use.
type Analyzer struct {
	Smoothing float64 // weight of the previous spectrum, [0,1)
	MinDB     float64
	MaxDB     float64

	size     int
	fft      *fourier.FFT
	buf      []float64
	coeffs   []complex128
	smoothed []float64
	mags     []float64
}

// NewAnalyzer creates an analyzer for windows of size samples.
// size is rounded up to an even number of at least 16.
func NewAnalyzer(size int) *Analyzer {
	if size < 16 {
		size = 16
	}
	if size%2 != 0 {
		size++
	}
	bins := size / 2
	return &Analyzer{
		Smoothing: DefaultSmoothing,
		MinDB:     DefaultMinDB,
		MaxDB:     DefaultMaxDB,
		size:      size,
		fft:       fourier.NewFFT(size),
		buf:       make([]float64, size),
		coeffs:    make([]complex128, size/2+1),
		smoothed:  make([]float64, bins),
		mags:      make([]float64, bins),
	}
}

// Size returns the window length in samples
func (a *Analyzer) Size() int {
	return a.size
}

// Spectrum returns the normalized magnitudes of the latest Analyze call
func (a *Analyzer) Spectrum() []float64 {
	return a.mags
}

// Analyze windows samples, transforms them and partitions the normalized spectrum.
// Only the last Size samples are used; a short input is zero padded at the front.
func (a *Analyzer) Analyze(samples []float64) signal.Bands {
	clear(a.buf)
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	copy(a.buf[a.size-len(samples):], samples)
	window.Hann(a.buf)

	a.coeffs = a.fft.Coefficients(a.coeffs, a.buf)

	span := a.MaxDB - a.MinDB
	for i := range a.mags {
		mag := cmplx.Abs(a.coeffs[i]) / float64(a.size)
		a.smoothed[i] = a.Smoothing*a.smoothed[i] + (1-a.Smoothing)*mag

		db := 20 * math.Log10(a.smoothed[i])
		v := (db - a.MinDB) / span
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > 1:
			v = 1
		}
		a.mags[i] = v
	}
	return Partition(a.mags)
}

// Reset forgets the smoothing history
func (a *Analyzer) Reset() {
	clear(a.smoothed)
	clear(a.mags)
}
