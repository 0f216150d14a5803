package engine

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olivierh59500/aether-particles/config"
	"github.com/olivierh59500/aether-particles/drawing"
	"github.com/olivierh59500/aether-particles/gesture"
	"github.com/olivierh59500/aether-particles/particles"
	"github.com/olivierh59500/aether-particles/signal"
)

func newSession(t *testing.T, modify func(*config.Config)) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Count = 500
	cfg.Seed = 7
	if modify != nil {
		modify(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// waitFor ticks the session until cond holds or a second passes
func waitFor(t *testing.T, s *Session, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the swarm to change")
		}
		time.Sleep(5 * time.Millisecond)
		s.Advance(particles.TickDuration)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Count = 0
	if _, err := New(cfg); !errors.Is(err, config.ErrInvalidCount) {
		t.Errorf("Expected ErrInvalidCount, got %v", err)
	}
}

func TestNewBuildsSwarm(t *testing.T) {
	s := newSession(t, nil)
	if got := s.Frame().Count; got != 500 {
		t.Errorf("Expected 500 particles, got %d", got)
	}
	if s.System.AudioEnabled() {
		t.Error("Expected audio reactivity off by default")
	}
}

func TestSetShapeRebuildsOffLoop(t *testing.T) {
	s := newSession(t, nil)
	s.SetShape(particles.KindHeart)

	waitFor(t, s, func() bool { return s.System.Set().Shape.Kind() == particles.KindHeart })
	if s.Config().Shape != "heart" {
		t.Errorf("Expected config to follow, got %s", s.Config().Shape)
	}
	if s.Frame().Count != 500 {
		t.Errorf("Expected count unchanged, got %d", s.Frame().Count)
	}
}

func TestStepCount(t *testing.T) {
	s := newSession(t, func(c *config.Config) { c.Count = 5000 })
	s.StepCount(1)
	waitFor(t, s, func() bool { return s.Frame().Count == 6000 })

	s.StepCount(-1)
	s.StepCount(-1)
	waitFor(t, s, func() bool { return s.Frame().Count == 4000 })
}

func TestCustomCloud(t *testing.T) {
	s := newSession(t, nil)
	cloud := drawing.PointCloud{0.5, 0.5, 0, 0.25, 0.75, 0}
	s.SetCustomCloud(cloud)

	waitFor(t, s, func() bool { return s.System.Set().Shape.Kind() == particles.KindCustom })
	if s.CustomCloud().Len() != 2 {
		t.Errorf("Expected cloud of 2 points, got %d", s.CustomCloud().Len())
	}
	if len(s.Config().CustomCloud) != 6 {
		t.Errorf("Expected cloud in config, got %v", s.Config().CustomCloud)
	}
}

func TestNudgeOpenness(t *testing.T) {
	s := newSession(t, nil)
	if got := s.NudgeOpenness(OpennessStep); math.Abs(got-(signal.NeutralOpenness+OpennessStep)) > 1e-9 {
		t.Errorf("Expected %f, got %f", signal.NeutralOpenness+OpennessStep, got)
	}
	for i := 0; i < 40; i++ {
		s.NudgeOpenness(-OpennessStep)
	}
	if got := s.Cell.Openness(); got != 0 {
		t.Errorf("Expected openness clamped to 0, got %f", got)
	}
}

func TestAutoRotateOnlyWhenUntracked(t *testing.T) {
	s := newSession(t, nil)
	s.Advance(4 * particles.TickDuration)
	if s.Camera.Orbit() == 0 {
		t.Error("Expected the camera to orbit without input")
	}

	orbit := s.Camera.Orbit()
	s.NudgeOpenness(0)
	s.Advance(4 * particles.TickDuration)
	if s.Camera.Orbit() != orbit {
		t.Error("Expected orbit to stop once openness is driven")
	}
}

func TestPause(t *testing.T) {
	s := newSession(t, nil)
	if !s.TogglePause() || !s.Paused() {
		t.Fatal("Expected paused")
	}
	ticks := s.System.Ticks()
	if n := s.Advance(time.Second); n != 0 || s.System.Ticks() != ticks {
		t.Errorf("Expected no ticks while paused, got %d", n)
	}
	s.TogglePause()
	if n := s.Advance(2 * particles.TickDuration); n != 2 {
		t.Errorf("Expected 2 ticks after resuming, got %d", n)
	}
}

func TestToggleAudio(t *testing.T) {
	s := newSession(t, nil)
	if !s.ToggleAudio() {
		t.Fatal("Expected audio to start on the demo source")
	}
	if !s.System.AudioEnabled() || !s.Audio.Running() {
		t.Error("Expected reactivity and analysis on")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Cell.Bands().Bass == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Cell.Bands().Bass == 0 {
		t.Error("Expected bass from the demo kick")
	}

	if s.ToggleAudio() {
		t.Fatal("Expected audio off")
	}
	if s.Audio.Running() || s.Cell.Bands() != (signal.Bands{}) {
		t.Error("Expected analysis stopped and bands cleared")
	}
	if !strings.Contains(s.Status(), "audio off") {
		t.Errorf("Expected status to show audio off, got %q", s.Status())
	}
}

func TestMissingAudioFileFallsBack(t *testing.T) {
	s := newSession(t, func(c *config.Config) { c.AudioEnabled = true })
	s.Start(Sources{AudioFile: filepath.Join(t.TempDir(), "missing.wav")})
	if s.Config().AudioEnabled || s.System.AudioEnabled() {
		t.Error("Expected audio reactivity off after a failed start")
	}
}

func TestStreamedLandmarksDriveOpenness(t *testing.T) {
	s := newSession(t, nil)
	var lines strings.Builder
	for i := 0; i < 30; i++ {
		lines.WriteString(encodeHand(gesture.Pose(1)))
		lines.WriteByte('\n')
	}
	s.Start(Sources{Landmarks: strings.NewReader(lines.String())})

	deadline := time.Now().Add(3 * time.Second)
	for s.Cell.Openness() < 0.9 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !s.Cell.Tracking() || s.Cell.Openness() < 0.9 {
		t.Errorf("Expected an open hand to push openness up, got %f", s.Cell.Openness())
	}
}

func TestPresetRoundTrip(t *testing.T) {
	s := newSession(t, nil)
	path := filepath.Join(t.TempDir(), "preset.json")

	s.SetShape(particles.KindVortex)
	if err := s.SavePreset(path); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	s.SetShape(particles.KindSphere)
	waitFor(t, s, func() bool { return s.System.Set().Shape.Kind() == particles.KindSphere })

	if err := s.LoadPreset(path); err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	waitFor(t, s, func() bool { return s.System.Set().Shape.Kind() == particles.KindVortex })

	if err := s.LoadPreset(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for a missing preset")
	}
	if s.Config().Shape != "vortex" {
		t.Errorf("Expected config kept after a failed load, got %s", s.Config().Shape)
	}
}

func encodeHand(hand []gesture.Landmark) string {
	points := make([][3]float64, len(hand))
	for i, l := range hand {
		points[i] = [3]float64{l.X, l.Y, l.Z}
	}
	data, _ := json.Marshal(points)
	return string(data)
}

func TestAdvanceOneTickPerStep(t *testing.T) {
	s := newSession(t, nil)
	// Back-to-back frame-loop calls each run exactly one tick
	for i := 1; i <= 10; i++ {
		if n := s.Advance(particles.TickDuration); n != 1 {
			t.Fatalf("Call %d: expected 1 tick, got %d", i, n)
		}
	}
	if s.System.Ticks() != 10 {
		t.Errorf("Expected 10 ticks, got %d", s.System.Ticks())
	}
}
