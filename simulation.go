package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/aether-particles/drawing"
	"github.com/olivierh59500/aether-particles/engine"
	"github.com/olivierh59500/aether-particles/particles"
	"github.com/olivierh59500/aether-particles/render"
)

// Visualizer constants
const (
	SpriteSize   = 32
	PresetFile   = "preset.json"
	MinPointSize = 1.0 // pixels
)

var background = color.RGBA{0x05, 0x05, 0x08, 0xff}

// Visualizer drives a session from the Ebitengine game loop
type Visualizer struct {
	Width, Height int
	session       *engine.Session
	sprite        *ebiten.Image
	tint          ebiten.ColorScale
	ShowHUD       bool
	screenshot    bool
	status        string

	// Drawing pad
	drawing    bool
	pad        *ebiten.Image
	padPix     []byte
	prevX      float32
	prevY      float32
	stroking   bool
	padInkUsed bool
}

// NewVisualizer creates the window adapter for s
func NewVisualizer(width, height int, s *engine.Session) *Visualizer {
	v := &Visualizer{
		Width:   width,
		Height:  height,
		session: s,
		sprite:  newSprite(SpriteSize),
		ShowHUD: true,
		pad:     ebiten.NewImage(drawing.CanvasSize, drawing.CanvasSize),
		padPix:  make([]byte, 4*drawing.CanvasSize*drawing.CanvasSize),
	}
	v.SetColor(s.Config().BaseColor())
	return v
}

// newSprite renders a soft radial falloff used for every particle
func newSprite(size int) *ebiten.Image {
	pix := make([]byte, 4*size*size)
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			a := math.Max(0, 1-d)
			a *= a
			v := byte(a * 255)
			i := 4 * (y*size + x)
			// Premultiplied alpha
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
		}
	}
	img := ebiten.NewImage(size, size)
	img.WritePixels(pix)
	return img
}

// SetColor tints every particle with c
func (v *Visualizer) SetColor(c colorful.Color) {
	var cs ebiten.ColorScale
	r, g, b := c.Clamped().RGB255()
	cs.ScaleWithColor(color.RGBA{r, g, b, 0xff})
	v.tint = cs
}

// Update is called each tick by Ebitengine. SetTPS matches the integrator rate,
// so every call is exactly one tick, catch-up calls included.
func (v *Visualizer) Update() error {
	if v.drawing {
		v.handlePad()
	} else {
		v.handleInput()
	}

	v.session.Advance(particles.TickDuration)
	return nil
}

// Draw is called each frame by Ebitengine
func (v *Visualizer) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	f := v.session.Frame()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	m := v.session.Camera.Matrix(f, w, h)
	scale := render.PointScale(h)

	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	op.Filter = ebiten.FilterLinear
	for i := 0; i < f.Count; i++ {
		sx, sy, depth, ok := render.Project(m, f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2], w, h)
		if !ok {
			continue
		}
		size := float64(float32(f.PointSize) * scale / depth)
		if size < MinPointSize {
			size = MinPointSize
		}
		if sx < -float32(size) || sy < -float32(size) || sx > float32(w)+float32(size) || sy > float32(h)+float32(size) {
			continue
		}
		op.GeoM.Reset()
		op.GeoM.Translate(-SpriteSize/2, -SpriteSize/2)
		op.GeoM.Scale(size/SpriteSize, size/SpriteSize)
		op.GeoM.Translate(float64(sx), float64(sy))
		op.ColorScale = v.tint
		screen.DrawImage(v.sprite, op)
	}

	if v.screenshot {
		v.screenshot = false
		if err := saveScreenshot(screen); err != nil {
			log.Printf("screenshot: %v", err)
			v.status = "screenshot failed"
		}
	}

	if v.drawing {
		v.drawPad(screen)
	}

	if v.ShowHUD {
		hud := fmt.Sprintf("%s\nFPS %.0f  zoom %.1f\n", v.session.Status(), ebiten.ActualFPS(), v.session.Camera.Distance())
		hud += "1-3 shape  C custom  D draw  Up/Down count  Left/Right openness\n"
		hud += "A audio  Space pause  S/L preset  P screenshot  H hud"
		if v.status != "" {
			hud += "\n" + v.status
		}
		ebitenutil.DebugPrint(screen, hud)
	}
}

// Layout returns the screen size
func (v *Visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.Width, v.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// handleInput processes keyboard and mouse input
func (v *Visualizer) handleInput() {
	s := v.session
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit1):
		s.SetShape(particles.KindSphere)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit2):
		s.SetShape(particles.KindHeart)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit3):
		s.SetShape(particles.KindVortex)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if s.CustomCloud().Len() == 0 {
			v.status = "nothing drawn yet, press D"
		}
		s.SetShape(particles.KindCustom)
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		v.openPad()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		s.StepCount(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		s.StepCount(-1)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		s.NudgeOpenness(engine.OpennessStep / 4)
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		s.NudgeOpenness(-engine.OpennessStep / 4)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		s.ToggleAudio()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.ShowHUD = !v.ShowHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.savePreset(PresetFile)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		v.loadPreset(PresetFile)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.screenshot = true
	}

	// Zoom
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		s.Camera.Zoom(wheelY)
	}
}

// savePreset saves to JSON
func (v *Visualizer) savePreset(filename string) {
	if err := v.session.SavePreset(filename); err != nil {
		log.Printf("save preset: %v", err)
		v.status = "save failed"
		return
	}
	v.status = "saved " + filename
}

// loadPreset loads from JSON
func (v *Visualizer) loadPreset(filename string) {
	if err := v.session.LoadPreset(filename); err != nil {
		log.Printf("load preset: %v", err)
		v.status = "load failed"
		return
	}
	v.SetColor(v.session.Config().BaseColor())
	v.status = "loaded " + filename
}

func (v *Visualizer) openPad() {
	v.drawing = true
	v.stroking = false
	v.padInkUsed = false
	v.pad.Fill(color.Black)
	v.status = "draw with the mouse, Enter to use, Backspace to clear, Esc to cancel"
}

// padOrigin is the top-left corner of the centered pad
func (v *Visualizer) padOrigin() (float32, float32) {
	return float32(v.Width-drawing.CanvasSize) / 2, float32(v.Height-drawing.CanvasSize) / 2
}

func (v *Visualizer) handlePad() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.drawing = false
		v.status = ""
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		v.pad.Fill(color.Black)
		v.padInkUsed = false
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyD):
		v.commitPad()
		return
	}

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		v.stroking = false
		return
	}
	ox, oy := v.padOrigin()
	mx, my := ebiten.CursorPosition()
	x, y := float32(mx)-ox, float32(my)-oy
	if v.stroking {
		vector.StrokeLine(v.pad, v.prevX, v.prevY, x, y, drawing.BrushWidth, color.White, true)
	}
	// Round caps
	vector.DrawFilledCircle(v.pad, x, y, drawing.BrushRadius, color.White, true)
	v.prevX, v.prevY = x, y
	v.stroking = true
	v.padInkUsed = true
}

func (v *Visualizer) commitPad() {
	v.drawing = false
	if !v.padInkUsed {
		v.status = "pad empty, shape unchanged"
		return
	}
	v.pad.ReadPixels(v.padPix)
	cloud := drawing.FromRGBA(v.padPix, 4*drawing.CanvasSize, drawing.CanvasSize, drawing.CanvasSize)
	if cloud.Len() == 0 {
		v.status = "pad empty, shape unchanged"
		return
	}
	v.session.SetCustomCloud(cloud)
	v.status = fmt.Sprintf("custom shape from %d points", cloud.Len())
}

func (v *Visualizer) drawPad(screen *ebiten.Image) {
	ox, oy := v.padOrigin()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(ox), float64(oy))
	op.ColorScale.ScaleAlpha(0.85)
	screen.DrawImage(v.pad, op)
	vector.StrokeRect(screen, ox, oy, drawing.CanvasSize, drawing.CanvasSize, 1, color.White, false)
}

// saveScreenshot writes the current frame to a timestamped PNG
func saveScreenshot(screen *ebiten.Image) error {
	b := screen.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(img.Pix)

	name := fmt.Sprintf("aether-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
