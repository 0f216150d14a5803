package render

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/aether-particles/particles"
)

func frameOf(points ...float32) particles.Frame {
	return particles.Frame{Positions: points, Count: len(points) / 3, PointSize: particles.InitialPointSize}
}

func TestProjectOriginToCenter(t *testing.T) {
	cam := NewCamera()
	m := cam.Matrix(frameOf(0, 0, 0), 800, 600)

	sx, sy, depth, ok := Project(m, 0, 0, 0, 800, 600)
	if !ok {
		t.Fatal("Expected origin to be visible")
	}
	if math.Abs(float64(sx-400)) > 0.01 || math.Abs(float64(sy-300)) > 0.01 {
		t.Errorf("Expected origin at (400, 300), got (%f, %f)", sx, sy)
	}
	if math.Abs(float64(depth)-DefaultDistance) > 0.01 {
		t.Errorf("Expected depth %v, got %f", DefaultDistance, depth)
	}
}

func TestProjectOrientation(t *testing.T) {
	cam := NewCamera()
	m := cam.Matrix(frameOf(), 800, 600)

	sx, _, _, _ := Project(m, 2, 0, 0, 800, 600)
	if sx <= 400 {
		t.Errorf("Expected +x to land right of center, got %f", sx)
	}
	_, sy, _, _ := Project(m, 0, 2, 0, 800, 600)
	if sy >= 300 {
		t.Errorf("Expected +y to land above center, got %f", sy)
	}
	_, _, near, _ := Project(m, 0, 0, 3, 800, 600)
	_, _, far, _ := Project(m, 0, 0, -3, 800, 600)
	if near >= far {
		t.Errorf("Expected +z closer to the camera, got %f vs %f", near, far)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	cam := NewCamera()
	m := cam.Matrix(frameOf(), 800, 600)
	if _, _, _, ok := Project(m, 0, 0, 30, 800, 600); ok {
		t.Error("Expected point behind the camera to be culled")
	}
}

func TestModelRotation(t *testing.T) {
	cam := NewCamera()
	f := frameOf()
	f.RotationY = math.Pi / 2
	m := cam.Matrix(f, 800, 600)

	// A quarter turn about Y carries +x onto -z, away from the camera
	sx, _, depth, ok := Project(m, 2, 0, 0, 800, 600)
	if !ok {
		t.Fatal("Expected rotated point to be visible")
	}
	if math.Abs(float64(sx-400)) > 0.5 {
		t.Errorf("Expected rotated point on the center column, got %f", sx)
	}
	if depth <= DefaultDistance {
		t.Errorf("Expected rotated point behind the origin, got depth %f", depth)
	}
}

func TestZoomClampsAndEases(t *testing.T) {
	cam := NewCamera()
	cam.Zoom(100)
	if cam.Target() != MinDistance {
		t.Errorf("Expected target clamped to %v, got %v", MinDistance, cam.Target())
	}
	cam.Zoom(-100)
	if cam.Target() != MaxDistance {
		t.Errorf("Expected target clamped to %v, got %v", MaxDistance, cam.Target())
	}

	cam.Update(false)
	if cam.Distance() <= DefaultDistance || cam.Distance() >= MaxDistance {
		t.Errorf("Expected distance to ease toward target, got %v", cam.Distance())
	}
	for i := 0; i < 600; i++ {
		cam.Update(false)
	}
	if math.Abs(cam.Distance()-MaxDistance) > 0.01 {
		t.Errorf("Expected distance to settle at %v, got %v", MaxDistance, cam.Distance())
	}
}

func TestAutoRotate(t *testing.T) {
	cam := NewCamera()
	cam.Update(false)
	if cam.Orbit() != 0 {
		t.Errorf("Expected no orbit without auto-rotate, got %v", cam.Orbit())
	}
	for i := 0; i < particles.TickRate*60; i++ {
		cam.Update(true)
	}
	want := 2 * math.Pi * 0.8
	if math.Abs(cam.Orbit()-want) > 1e-6 {
		t.Errorf("Expected %v radians after a minute, got %v", want, cam.Orbit())
	}
}

func TestPointScale(t *testing.T) {
	// At unit depth the half-height spans tan(fov/2) world units
	scale := PointScale(600)
	want := 300 / math.Tan(FieldOfView*math.Pi/360)
	if math.Abs(float64(scale)-want) > 0.01 {
		t.Errorf("Expected %f, got %f", want, scale)
	}
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func TestTerminalPlotsCenter(t *testing.T) {
	screen := newScreen(t, 40, 20)
	base, _ := colorful.Hex("#00eaff")
	term := NewTerminal(screen, NewCamera(), base)

	term.Draw(frameOf(0, 0, 0), "")

	r, _, style, _ := screen.GetContent(20, 10)
	if r < brailleBase || r > brailleBase+0xff {
		t.Fatalf("Expected braille dot at center, got %q", r)
	}
	fg, _, _ := style.Decompose()
	if fg == tcell.ColorDefault {
		t.Error("Expected a tinted dot")
	}

	blank, _, _, _ := screen.GetContent(0, 19)
	if blank >= brailleBase && blank <= brailleBase+0xff {
		t.Errorf("Expected empty corner, got %q", blank)
	}
}

func TestTerminalMergesDots(t *testing.T) {
	screen := newScreen(t, 40, 20)
	term := NewTerminal(screen, NewCamera(), colorful.Color{R: 1})

	// Two particles that project into the same cell share one rune
	term.Draw(frameOf(0, 0, 0, 0.01, 0, 0), "")
	count := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r > brailleBase && r <= brailleBase+0xff {
				count++
			}
		}
	}
	if count < 1 || count > 2 {
		t.Errorf("Expected one or two lit cells, got %d", count)
	}
}

func TestTerminalStatusLine(t *testing.T) {
	screen := newScreen(t, 40, 20)
	term := NewTerminal(screen, NewCamera(), colorful.Color{G: 1})
	term.Draw(frameOf(), "HUD")

	for i, want := range "HUD" {
		r, _, _, _ := screen.GetContent(i, 0)
		if r != want {
			t.Errorf("Expected %q at column %d, got %q", want, i, r)
		}
	}
}

func TestShadeNearIsBrighter(t *testing.T) {
	term := NewTerminal(nil, NewCamera(), colorful.Color{R: 0.2, G: 0.4, B: 0.8})
	nr, ng, nb := term.shade(1).RGB()
	fr, fg, fb := term.shade(0).RGB()
	if nr+ng+nb <= fr+fg+fb {
		t.Errorf("Expected near shade brighter, got (%d,%d,%d) vs (%d,%d,%d)", nr, ng, nb, fr, fg, fb)
	}
}
