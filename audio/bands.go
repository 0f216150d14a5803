package audio

import "github.com/olivierh59500/aether-particles/signal"

// Band split points as fractions of the spectrum
const (
	BassFraction = 0.1
	MidFraction  = 0.5
)

// Partition averages normalized magnitudes into bass, mid and high bands.
// Bass is the bottom tenth of the bins, mid runs to the halfway bin, high is the rest.
// A band without bins reads as zero.
func Partition(mags []float64) signal.Bands {
	n := len(mags)
	bassEnd := int(float64(n) * BassFraction)
	midEnd := int(float64(n) * MidFraction)

	b := signal.Bands{
		Bass: mean(mags[:bassEnd]),
		Mid:  mean(mags[bassEnd:midEnd]),
		High: mean(mags[midEnd:]),
	}
	b.Average = (b.Bass + b.Mid + b.High) / 3
	return b
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
