package gesture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
)

// StreamDetector reads one hand per line of JSON, as written by an external
// hand tracker. A line is either [[x,y,z],...] or {"landmarks":[{"x":..},...]}.
// An empty array or object means no hand.
type StreamDetector struct {
	r      io.Reader
	once   sync.Once
	frames chan streamFrame
	quit   chan struct{}
	closed sync.Once
}

type streamFrame struct {
	landmarks []Landmark
	err       error
}

type landmarkObject struct {
	Landmarks []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"landmarks"`
}

// NewStreamDetector wraps r
func NewStreamDetector(r io.Reader) *StreamDetector {
	return &StreamDetector{
		r:      r,
		frames: make(chan streamFrame),
		quit:   make(chan struct{}),
	}
}

// Close stops the reader goroutine. It does not close the underlying reader.
func (s *StreamDetector) Close() error {
	s.closed.Do(func() { close(s.quit) })
	return nil
}

func (s *StreamDetector) send(f streamFrame) bool {
	select {
	case s.frames <- f:
		return true
	case <-s.quit:
		return false
	}
}

// Detect returns the next hand in the stream
func (s *StreamDetector) Detect(ctx context.Context) ([]Landmark, error) {
	s.once.Do(func() { go s.read() })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f, ok := <-s.frames:
		if !ok {
			return nil, io.EOF
		}
		return f.landmarks, f.err
	}
}

func (s *StreamDetector) read() {
	defer close(s.frames)

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		landmarks, err := ParseLandmarks(text)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
		}
		if !s.send(streamFrame{landmarks: landmarks, err: err}) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.send(streamFrame{err: err})
	}
}

// ParseLandmarks decodes one hand in either supported JSON layout
func ParseLandmarks(data []byte) ([]Landmark, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var triples [][]float64
		if err := json.Unmarshal(data, &triples); err != nil {
			return nil, fmt.Errorf("decode landmarks: %w", err)
		}
		if len(triples) == 0 {
			return nil, nil
		}
		out := make([]Landmark, len(triples))
		for i, p := range triples {
			if len(p) < 2 {
				return nil, fmt.Errorf("landmark %d: want 2 or 3 coordinates, got %d", i, len(p))
			}
			out[i] = Landmark{X: p[0], Y: p[1]}
			if len(p) > 2 {
				out[i].Z = p[2]
			}
		}
		return out, nil
	case '{':
		var obj landmarkObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("decode landmarks: %w", err)
		}
		if len(obj.Landmarks) == 0 {
			return nil, nil
		}
		out := make([]Landmark, len(obj.Landmarks))
		for i, p := range obj.Landmarks {
			out[i] = Landmark{X: p.X, Y: p.Y, Z: p.Z}
		}
		return out, nil
	}
	return nil, fmt.Errorf("decode landmarks: unexpected %q", data[0])
}

// Wander constants
const (
	WanderSpeed = 0.15 // noise units per second
	WanderGain  = 1.6
)

// Wander poses a hand that slowly opens and closes along a perlin curve.
// It stands in for a camera when none is available.
type Wander struct {
	noise *perlin.Perlin
	start time.Time
	now   func() time.Time
}

// NewWander creates a wandering hand seeded with seed
func NewWander(seed int64) *Wander {
	return &Wander{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		start: time.Now(),
		now:   time.Now,
	}
}

// At returns the wandering openness t seconds in
func (w *Wander) At(t float64) float64 {
	o := 0.5 + w.noise.Noise1D(t*WanderSpeed)*WanderGain
	return math.Min(math.Max(o, 0), 1)
}

// Detect poses the hand for the current wall time
func (w *Wander) Detect(ctx context.Context) ([]Landmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Pose(w.At(w.now().Sub(w.start).Seconds())), nil
}
