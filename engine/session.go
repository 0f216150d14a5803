package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/olivierh59500/aether-particles/audio"
	"github.com/olivierh59500/aether-particles/config"
	"github.com/olivierh59500/aether-particles/drawing"
	"github.com/olivierh59500/aether-particles/gesture"
	"github.com/olivierh59500/aether-particles/particles"
	"github.com/olivierh59500/aether-particles/render"
	"github.com/olivierh59500/aether-particles/signal"
)

// Input tuning
const (
	OpennessStep    = 0.05
	GestureInterval = time.Second / 30
)

// Sources selects the collaborators feeding the signal cell
type Sources struct {
	AudioFile  string    // WAV to analyse; empty uses the generated demo
	Play       bool      // send audio to the speaker
	Landmarks  io.Reader // JSON landmark stream; nil disables it
	Wander     bool      // drive openness from noise when no stream is given
	WanderSeed int64
}

type rebuild struct {
	shape particles.Shape
	count int
}

// Session ties the integrator to its collaborators. Methods other than the
// collaborator goroutines are meant for the single frame-loop goroutine.
type Session struct {
	cfg     config.Config
	sources Sources

	Cell    *signal.Cell
	System  *particles.System
	Camera  *render.Camera
	Tracker *gesture.Tracker
	Audio   *audio.Service

	cloud  drawing.PointCloud
	paused bool
	manual bool

	ctx      context.Context
	cancel   context.CancelFunc
	requests chan rebuild
	wg       sync.WaitGroup
	detector *gesture.StreamDetector
}

// New validates cfg and builds the initial swarm
func New(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := particles.DefaultParams()
	params.Workers = cfg.Workers

	cell := signal.NewCell()
	set := particles.NewSet(cfg.ShapeValue(), cfg.Count, rng)
	sys := particles.NewSystem(params, set)
	sys.SetAudioEnabled(cfg.AudioEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:      cfg,
		Cell:     cell,
		System:   sys,
		Camera:   render.NewCamera(),
		Tracker:  gesture.NewTracker(cell),
		Audio:    audio.NewService(cell),
		cloud:    drawing.PointCloud(cfg.CustomCloud),
		ctx:      ctx,
		cancel:   cancel,
		requests: make(chan rebuild, 1),
	}

	s.wg.Add(1)
	go s.rebuilder(rng)
	return s, nil
}

// Start launches the gesture source and, if enabled, audio analysis
func (s *Session) Start(src Sources) {
	s.sources = src

	switch {
	case src.Landmarks != nil:
		s.detector = gesture.NewStreamDetector(src.Landmarks)
		s.runTracker(s.detector)
	case src.Wander:
		s.runTracker(gesture.NewWander(src.WanderSeed))
	}

	if s.cfg.AudioEnabled {
		if err := s.startAudio(); err != nil {
			log.Printf("session: audio disabled: %v", err)
			s.setAudio(false)
		}
	}
}

func (s *Session) runTracker(d gesture.Detector) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Tracker.Run(s.ctx, d, GestureInterval); err != nil && s.ctx.Err() == nil {
			log.Printf("session: gesture tracking stopped: %v", err)
		}
	}()
}

// rebuilder owns rng after New and builds sets off the frame loop
func (s *Session) rebuilder(rng *rand.Rand) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case r := <-s.requests:
			s.System.Stage(particles.Regenerate(s.System.Set(), r.shape, r.count, rng))
		}
	}
}

// request queues a rebuild; an unserved older request is replaced
func (s *Session) request(r rebuild) {
	for {
		select {
		case s.requests <- r:
			return
		default:
		}
		select {
		case <-s.requests:
		default:
		}
	}
}

// Config returns the live configuration
func (s *Session) Config() config.Config {
	return s.cfg
}

// SetShape switches to k. Custom uses the last drawn or loaded cloud.
func (s *Session) SetShape(k particles.Kind) {
	s.cfg.Shape = k.String()
	s.reseed()
}

// StepCount moves the particle count by delta steps
func (s *Session) StepCount(delta int) {
	n := config.StepCount(s.cfg.Count, delta)
	if n == s.cfg.Count {
		return
	}
	s.cfg.Count = n
	s.reseed()
}

// SetCustomCloud stores a drawn cloud and switches to the custom shape
func (s *Session) SetCustomCloud(c drawing.PointCloud) {
	s.cloud = c
	s.cfg.CustomCloud = []float32(c)
	s.SetShape(particles.KindCustom)
}

// CustomCloud returns the last drawn or loaded cloud
func (s *Session) CustomCloud() drawing.PointCloud {
	return s.cloud
}

func (s *Session) reseed() {
	s.request(rebuild{shape: s.cfg.ShapeValue(), count: s.cfg.Count})
}

// ToggleAudio flips audio reactivity and starts or stops analysis to match
func (s *Session) ToggleAudio() bool {
	if s.cfg.AudioEnabled {
		if err := s.Audio.Close(); err != nil {
			log.Printf("session: closing audio: %v", err)
		}
		s.setAudio(false)
		return false
	}
	if err := s.startAudio(); err != nil {
		log.Printf("session: audio unavailable: %v", err)
		return false
	}
	s.setAudio(true)
	return true
}

func (s *Session) setAudio(on bool) {
	s.cfg.AudioEnabled = on
	s.System.SetAudioEnabled(on)
	if !on {
		s.Cell.ClearBands()
	}
}

func (s *Session) startAudio() error {
	if s.Audio.Running() {
		return nil
	}
	if s.sources.AudioFile != "" {
		return s.Audio.Open(s.ctx, s.sources.AudioFile, s.sources.Play)
	}
	demo, err := audio.Demo(audio.DemoFormat.SampleRate)
	if err != nil {
		return err
	}
	return s.Audio.Start(s.ctx, demo, audio.DemoFormat, s.sources.Play)
}

// NudgeOpenness overrides gesture input by delta. Further tracker output
// replaces the manual value.
func (s *Session) NudgeOpenness(delta float64) float64 {
	s.manual = true
	s.Cell.SetOpenness(s.Cell.Openness() + delta)
	return s.Cell.Openness()
}

// TogglePause stops or resumes integration
func (s *Session) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// Paused reports whether integration is stopped
func (s *Session) Paused() bool {
	return s.paused
}

// Advance runs the integrator and camera for elapsed wall time
func (s *Session) Advance(elapsed time.Duration) int {
	if s.paused {
		return 0
	}
	n := s.System.Advance(elapsed, s.Cell.Snapshot(s.cfg.AudioEnabled))
	for i := 0; i < n; i++ {
		s.Camera.Update(s.autoRotate())
	}
	return n
}

// autoRotate orbits the camera while no gesture or manual input drives the swarm
func (s *Session) autoRotate() bool {
	return !s.Cell.Tracking() && !s.manual
}

// Frame returns the latest integrator output
func (s *Session) Frame() particles.Frame {
	return s.System.Frame()
}

// SavePreset writes the live configuration
func (s *Session) SavePreset(path string) error {
	return s.cfg.Save(path)
}

// LoadPreset replaces the configuration and reseeds the swarm
func (s *Session) LoadPreset(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Workers = s.cfg.Workers
	cfg.Seed = s.cfg.Seed
	if cfg.AudioEnabled != s.cfg.AudioEnabled {
		s.ToggleAudio()
	}
	cfg.AudioEnabled = s.cfg.AudioEnabled
	s.cfg = cfg
	s.cloud = drawing.PointCloud(cfg.CustomCloud)
	s.reseed()
	return nil
}

// Status is a one-line summary for HUDs
func (s *Session) Status() string {
	f := s.Frame()
	audioState := "off"
	if s.cfg.AudioEnabled {
		b := s.Cell.Bands()
		audioState = fmt.Sprintf("bass %.2f mid %.2f high %.2f", b.Bass, b.Mid, b.High)
	}
	state := ""
	if s.paused {
		state = " [paused]"
	}
	return fmt.Sprintf("%s x%d  open %.2f  audio %s%s",
		s.cfg.Shape, f.Count, s.Cell.Openness(), audioState, state)
}

// Close stops every collaborator and waits for them
func (s *Session) Close() error {
	s.cancel()
	if s.detector != nil {
		s.detector.Close()
	}
	err := s.Audio.Close()
	s.wg.Wait()
	return err
}
