package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/olivierh59500/aether-particles/engine"
	"github.com/olivierh59500/aether-particles/particles"
	"github.com/olivierh59500/aether-particles/render"
)

// Console drives a session on a tcell screen
type Console struct {
	screen  tcell.Screen
	session *engine.Session
	term    *render.Terminal
	showHUD bool
	message string
}

// NewConsole binds a session to an initialized screen
func NewConsole(screen tcell.Screen, s *engine.Session) *Console {
	return &Console{
		screen:  screen,
		session: s,
		term:    render.NewTerminal(screen, s.Camera, s.Config().BaseColor()),
		showHUD: true,
	}
}

// runTerminal opens the terminal and runs until Esc, q or Ctrl-C
func runTerminal(s *engine.Session) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()

	c := NewConsole(screen, s)
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(particles.TickDuration)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if !c.HandleKey(ev) {
					return nil
				}
			}
		case now := <-ticker.C:
			s.Advance(now.Sub(last))
			last = now
			c.Draw()
		}
	}
}

// Draw renders the latest frame and the status line
func (c *Console) Draw() {
	status := ""
	if c.showHUD {
		status = c.session.Status()
		if c.message != "" {
			status += "  " + c.message
		}
	}
	c.term.Draw(c.session.Frame(), status)
}

// HandleKey applies a key press; false means quit
func (c *Console) HandleKey(ev *tcell.EventKey) bool {
	s := c.session
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		s.StepCount(1)
	case tcell.KeyDown:
		s.StepCount(-1)
	case tcell.KeyRight:
		s.NudgeOpenness(engine.OpennessStep)
	case tcell.KeyLeft:
		s.NudgeOpenness(-engine.OpennessStep)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case '1':
			s.SetShape(particles.KindSphere)
		case '2':
			s.SetShape(particles.KindHeart)
		case '3':
			s.SetShape(particles.KindVortex)
		case 'c':
			s.SetShape(particles.KindCustom)
		case 'a':
			s.ToggleAudio()
		case ' ':
			s.TogglePause()
		case 'h':
			c.showHUD = !c.showHUD
		case '+':
			s.Camera.Zoom(1)
		case '-':
			s.Camera.Zoom(-1)
		case 's':
			c.message = "saved " + PresetFile
			if err := s.SavePreset(PresetFile); err != nil {
				c.message = err.Error()
			}
		case 'l':
			c.message = "loaded " + PresetFile
			if err := s.LoadPreset(PresetFile); err != nil {
				c.message = err.Error()
			}
			c.term.SetColor(s.Config().BaseColor())
		}
	}
	return true
}
