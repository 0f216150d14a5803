package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivierh59500/aether-particles/config"
	"github.com/olivierh59500/aether-particles/drawing"
	"github.com/olivierh59500/aether-particles/engine"
	"github.com/olivierh59500/aether-particles/particles"
)

func main() {
	preset := flag.String("preset", "", "JSON preset to start from")
	count := flag.Int("count", 0, "particle count (1-10000)")
	shape := flag.String("shape", "", "sphere, heart, vortex or custom")
	colorHex := flag.String("color", "", "particle color, e.g. #00eaff")
	seed := flag.Int64("seed", 0, "random seed, 0 uses the clock")
	workers := flag.Int("workers", 0, "integration goroutines")
	audioOn := flag.Bool("audio", false, "start with audio reactivity on")
	audioFile := flag.String("audio-file", "", "WAV file to analyse instead of the demo signal")
	mute := flag.Bool("mute", false, "analyse audio without playing it")
	landmarks := flag.String("landmarks", "", "JSON landmark stream, - for stdin")
	wander := flag.Bool("wander", false, "drive openness from noise when no landmarks are given")
	silhouette := flag.String("silhouette", "", "image to use as the custom shape")
	backend := flag.String("backend", "window", "window or term")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	flag.Parse()

	// Preset, then environment, then flags
	cfg := config.Default()
	if *preset != "" {
		loaded, err := config.Load(*preset)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			cfg.Count = *count
		case "shape":
			cfg.Shape = *shape
		case "color":
			cfg.Color = *colorHex
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "audio":
			cfg.AudioEnabled = *audioOn
		}
	})

	if *silhouette != "" {
		cloud, err := drawing.LoadImage(*silhouette)
		if err != nil {
			log.Fatal(err)
		}
		cfg.CustomCloud = []float32(cloud)
		if !isSet("shape") {
			cfg.Shape = particles.KindCustom.String()
		}
	}

	session, err := engine.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	src := engine.Sources{
		AudioFile:  *audioFile,
		Play:       !*mute,
		Wander:     *wander,
		WanderSeed: time.Now().UnixNano(),
	}
	if cfg.Seed != 0 {
		src.WanderSeed = cfg.Seed
	}
	switch *landmarks {
	case "":
	case "-":
		src.Landmarks = os.Stdin
	default:
		f, err := os.Open(*landmarks)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		src.Landmarks = f
	}
	session.Start(src)

	if *backend == "term" {
		if err := runTerminal(session); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Set up Ebitengine game
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Aether Particles")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(particles.TickRate)

	// Run the game loop
	if err := ebiten.RunGame(NewVisualizer(*width, *height, session)); err != nil {
		log.Fatal(err)
	}
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
