package gesture

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/olivierh59500/aether-particles/signal"
)

// Smoothing constants
const (
	SmoothingAlpha = 0.2  // weight of a fresh reading
	DecayAlpha     = 0.05 // pull toward neutral when no hand is seen
)

// Detector delivers the landmarks of one hand per call. A nil slice with a nil
// error means no hand was found. io.EOF ends tracking.
type Detector interface {
	Detect(ctx context.Context) ([]Landmark, error)
}

// Tracker smooths detector output and publishes it into a signal cell
type Tracker struct {
	cell *signal.Cell

	mu       sync.Mutex
	smoothed float64
	failures int
}

// NewTracker creates a tracker starting at neutral openness
func NewTracker(cell *signal.Cell) *Tracker {
	return &Tracker{
		cell:     cell,
		smoothed: signal.NeutralOpenness,
	}
}

// Observe folds one detection into the smoothed value and publishes it.
// An empty or malformed hand counts as no detection and decays toward neutral.
func (t *Tracker) Observe(landmarks []Landmark) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := Openness(landmarks)
	if err != nil {
		t.smoothed = t.smoothed*(1-DecayAlpha) + signal.NeutralOpenness*DecayAlpha
	} else {
		t.smoothed = t.smoothed*(1-SmoothingAlpha) + raw*SmoothingAlpha
	}
	if t.cell != nil {
		t.cell.SetOpenness(t.smoothed)
	}
	return t.smoothed
}

// Value returns the current smoothed openness
func (t *Tracker) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.smoothed
}

// Failures returns the number of detector errors swallowed so far
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// Run polls d until ctx is done or the detector reports io.EOF.
// Detector errors are logged and skipped; the last published value stays in place.
func (t *Tracker) Run(ctx context.Context, d Detector, interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		landmarks, err := d.Detect(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			t.mu.Lock()
			t.failures++
			t.mu.Unlock()
			log.Printf("gesture: detection failed: %v", err)
		default:
			t.Observe(landmarks)
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}
