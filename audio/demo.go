package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// Demo rhythm
const (
	DemoBeat      = time.Second / 2
	demoBassHz    = 70
	demoLeadHz    = 1200
	demoLeadLevel = 0.2
	demoDecay     = 6.0
)

// DemoFormat is the format Demo streams in
var DemoFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Demo returns an endless test signal: a decaying bass kick on every beat over a
// quiet high tone. It stands in for a capture device or file.
func Demo(sr beep.SampleRate) (beep.Streamer, error) {
	bass, err := generators.SineTone(sr, demoBassHz)
	if err != nil {
		return nil, fmt.Errorf("demo bass: %w", err)
	}
	lead, err := generators.SineTone(sr, demoLeadHz)
	if err != nil {
		return nil, fmt.Errorf("demo lead: %w", err)
	}

	beat := sr.N(DemoBeat)
	pos := 0
	kick := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := bass.Stream(samples)
		for i := 0; i < n; i++ {
			env := math.Exp(-demoDecay * float64(pos%beat) / float64(beat))
			samples[i][0] *= env
			samples[i][1] *= env
			pos++
		}
		return n, ok
	})
	quiet := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := lead.Stream(samples)
		for i := 0; i < n; i++ {
			samples[i][0] *= demoLeadLevel
			samples[i][1] *= demoLeadLevel
		}
		return n, ok
	})
	return beep.Mix(kick, quiet), nil
}
