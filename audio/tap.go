package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// Tap passes a stream through unchanged while keeping its most recent
// mono-mixed samples for analysis
type Tap struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float64
	next int
	full bool
}

// NewTap wraps s, keeping the last capacity samples
func NewTap(s beep.Streamer, capacity int) *Tap {
	if capacity < 1 {
		capacity = 1
	}
	return &Tap{s: s, ring: make([]float64, capacity)}
}

// Stream implements beep.Streamer
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)

	t.mu.Lock()
	for _, s := range samples[:n] {
		t.ring[t.next] = (s[0] + s[1]) / 2
		t.next++
		if t.next == len(t.ring) {
			t.next = 0
			t.full = true
		}
	}
	t.mu.Unlock()

	return n, ok
}

// Err implements beep.Streamer
func (t *Tap) Err() error {
	return t.s.Err()
}

// Latest fills dst with the most recent samples, oldest first, and returns it.
// When fewer samples have been seen the front of dst is zeroed.
func (t *Tap) Latest(dst []float64) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	have := t.next
	if t.full {
		have = len(t.ring)
	}
	want := min(len(dst), have)
	clear(dst[:len(dst)-want])

	out := dst[len(dst)-want:]
	start := t.next - want
	if start < 0 {
		start += len(t.ring)
	}
	for i := range out {
		out[i] = t.ring[(start+i)%len(t.ring)]
	}
	return dst
}
