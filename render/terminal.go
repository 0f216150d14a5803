package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/aether-particles/particles"
)

// Braille cells pack 2x4 dots
const (
	dotsX       = 2
	dotsY       = 4
	brailleBase = 0x2800
	// Nearest points are lifted this far toward white
	highlight = 0.6
)

// dot bit for (column, row) inside a braille cell
var brailleBits = [dotsX][dotsY]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Terminal plots frames as braille dots on a tcell screen
type Terminal struct {
	screen tcell.Screen
	camera *Camera
	base   colorful.Color

	dots  []rune
	depth []float32
}

// NewTerminal binds a renderer to an initialized screen
func NewTerminal(screen tcell.Screen, camera *Camera, base colorful.Color) *Terminal {
	return &Terminal{screen: screen, camera: camera, base: base}
}

// SetColor changes the base tint
func (t *Terminal) SetColor(c colorful.Color) {
	t.base = c
}

// Draw renders one frame with an optional status line on the top row
func (t *Terminal) Draw(f particles.Frame, status string) {
	cols, rows := t.screen.Size()
	t.screen.Clear()
	if cols <= 0 || rows <= 0 {
		return
	}

	cells := cols * rows
	if cap(t.dots) < cells {
		t.dots = make([]rune, cells)
		t.depth = make([]float32, cells)
	}
	t.dots = t.dots[:cells]
	t.depth = t.depth[:cells]
	for i := range t.dots {
		t.dots[i] = 0
		t.depth[i] = 0
	}

	// A cell is twice as tall as wide, so the dot grid is close to square
	w, h := cols*dotsX, rows*dotsY
	m := t.camera.Matrix(f, w, h)
	near, far := float32(-1), float32(-1)

	for i := 0; i < f.Count; i++ {
		sx, sy, d, ok := Project(m, f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2], w, h)
		if !ok {
			continue
		}
		px, py := int(sx), int(sy)
		if px < 0 || py < 0 || px >= w || py >= h {
			continue
		}
		cell := (py/dotsY)*cols + px/dotsX
		t.dots[cell] |= brailleBits[px%dotsX][py%dotsY]
		if t.depth[cell] == 0 || d < t.depth[cell] {
			t.depth[cell] = d
		}
		if near < 0 || d < near {
			near = d
		}
		if d > far {
			far = d
		}
	}

	span := far - near
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			cell := cy*cols + cx
			bits := t.dots[cell]
			if bits == 0 {
				continue
			}
			closeness := 1.0
			if span > 0 {
				closeness = 1 - float64((t.depth[cell]-near)/span)
			}
			style := tcell.StyleDefault.Foreground(t.shade(closeness))
			t.screen.SetContent(cx, cy, brailleBase+bits, nil, style)
		}
	}

	t.drawStatus(status, cols)
	t.screen.Show()
}

// shade brightens the base color for near points and dims it for far ones
func (t *Terminal) shade(closeness float64) tcell.Color {
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}
	c := black.BlendLab(t.base, 0.35+0.65*closeness)
	c = c.BlendLab(white, closeness*highlight).Clamped()
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Terminal) drawStatus(status string, cols int) {
	if status == "" {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	x := 0
	for _, r := range status {
		if x >= cols {
			break
		}
		t.screen.SetContent(x, 0, r, nil, style)
		x++
	}
}
