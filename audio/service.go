package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/olivierh59500/aether-particles/signal"
)

// Service timing
const (
	PublishInterval = time.Second / 60
	drainInterval   = 10 * time.Millisecond
	tapCapacity     = 4096
)

var ErrAlreadyStarted = errors.New("audio service already started")

// resampleQuality is passed to beep.Resample when a source does not match the speaker
const resampleQuality = 4

// The speaker can only be initialized once per process
var (
	speakerInit = speaker.Init

	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
	speakerErr  error
	speakerDone bool
)

// openSpeaker initializes the speaker on first use at rate and returns the rate it
// runs at. A failed first attempt is not retried.
func openSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if !speakerDone {
		speakerDone = true
		speakerErr = speakerInit(rate, rate.N(time.Second/10))
		if speakerErr == nil {
			speakerRate = rate
		}
	}
	return speakerRate, speakerErr
}

// Service feeds band energies of a playing stream into a signal cell
type Service struct {
	cell *signal.Cell

	mu       sync.Mutex
	started  bool
	playing  bool
	tap      *Tap
	closer   func() error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	analyzer *Analyzer
}

// NewService creates a stopped service publishing into cell
func NewService(cell *signal.Cell) *Service {
	return &Service{cell: cell}
}

// Open decodes the WAV file at path and starts it looping.
// With play set it goes to the speaker; without a usable output device it is
// consumed silently in real time.
func (s *Service) Open(ctx context.Context, path string, play bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if err := s.start(ctx, beep.Loop(-1, streamer), format, play, streamer.Close); err != nil {
		streamer.Close()
		return err
	}
	return nil
}

// Start begins analysing src. The service runs until ctx is done or Close is called.
func (s *Service) Start(ctx context.Context, src beep.Streamer, format beep.Format, play bool) error {
	return s.start(ctx, src, format, play, nil)
}

func (s *Service) start(ctx context.Context, src beep.Streamer, format beep.Format, play bool, closer func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.tap = NewTap(src, tapCapacity)
	s.analyzer = NewAnalyzer(DefaultFFTSize)
	s.cancel = cancel
	s.closer = closer
	s.started = true

	if play {
		rate, err := openSpeaker(format.SampleRate)
		if err != nil {
			// Non-fatal, analysis keeps running without sound
			log.Printf("audio: speaker unavailable, analysing silently: %v", err)
		} else {
			var out beep.Streamer = s.tap
			if rate != format.SampleRate {
				out = beep.Resample(resampleQuality, format.SampleRate, rate, s.tap)
			}
			speaker.Play(out)
			s.playing = true
		}
	}
	if !s.playing {
		s.wg.Add(1)
		go s.drain(ctx, s.tap, format.SampleRate)
	}

	s.wg.Add(1)
	go s.publish(ctx, s.tap, s.analyzer)
	return nil
}

// drain pulls samples at the stream's real-time rate when nothing else does
func (s *Service) drain(ctx context.Context, tap *Tap, rate beep.SampleRate) {
	defer s.wg.Done()

	buf := make([][2]float64, rate.N(drainInterval))
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ok := tap.Stream(buf); !ok {
				if err := tap.Err(); err != nil {
					log.Printf("audio: stream failed: %v", err)
				}
				return
			}
		}
	}
}

func (s *Service) publish(ctx context.Context, tap *Tap, a *Analyzer) {
	defer s.wg.Done()

	window := make([]float64, a.Size())
	ticker := time.NewTicker(PublishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tap.Latest(window)
			s.cell.SetBands(a.Analyze(window))
		}
	}
}

// Running reports whether a stream is being analysed
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Playing reports whether the stream goes to the speaker
func (s *Service) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Bands returns the latest published bands, zero when stopped
func (s *Service) Bands() signal.Bands {
	if !s.Running() {
		return signal.Bands{}
	}
	return s.cell.Bands()
}

// Close stops playback and analysis and clears the published bands
func (s *Service) Close() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	if s.playing {
		speaker.Clear()
	}
	closer := s.closer
	s.started, s.playing, s.closer = false, false, nil
	s.mu.Unlock()

	s.wg.Wait()
	s.cell.ClearBands()
	if closer != nil {
		return closer()
	}
	return nil
}
