package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/olivierh59500/aether-particles/particles"
)

// Camera constants
const (
	FieldOfView     = 50.0 // degrees, vertical
	DefaultDistance = 18.0
	MinDistance     = 5.0
	MaxDistance     = 40.0
	ZoomStep        = 1.5
	NearPlane       = 0.1
	FarPlane        = 1000.0

	// 0.8 of a turn per minute at 60 ticks per second
	AutoRotateStep = 2 * math.Pi / 60 / particles.TickRate * 0.8
)

// Camera orbits the origin looking at the swarm
type Camera struct {
	distance float64
	velocity float64
	target   float64
	orbit    float64
	spring   harmonica.Spring
}

// NewCamera returns a camera at the default distance
func NewCamera() *Camera {
	return &Camera{
		distance: DefaultDistance,
		target:   DefaultDistance,
		spring:   harmonica.NewSpring(harmonica.FPS(particles.TickRate), 6.0, 1.0),
	}
}

// Zoom moves the target distance by steps; positive steps move closer
func (c *Camera) Zoom(steps float64) {
	c.target = math.Min(math.Max(c.target-steps*ZoomStep, MinDistance), MaxDistance)
}

// Distance returns the current eye distance
func (c *Camera) Distance() float64 {
	return c.distance
}

// Target returns the distance the camera is easing toward
func (c *Camera) Target() float64 {
	return c.target
}

// Orbit returns the accumulated auto-rotate angle
func (c *Camera) Orbit() float64 {
	return c.orbit
}

// Update eases the zoom for one tick and, when asked, orbits slowly
func (c *Camera) Update(autoRotate bool) {
	c.distance, c.velocity = c.spring.Update(c.distance, c.velocity, c.target)
	if autoRotate {
		c.orbit += AutoRotateStep
	}
}

// Matrix builds projection * view * model for a frame on a width x height target
func (c *Camera) Matrix(f particles.Frame, width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	proj := mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)

	d := float32(c.distance)
	eye := mgl32.Vec3{
		d * float32(math.Sin(c.orbit)),
		0,
		d * float32(math.Cos(c.orbit)),
	}
	view := mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	model := mgl32.HomogRotate3DY(float32(f.RotationY)).Mul4(mgl32.HomogRotate3DZ(float32(f.RotationZ)))
	return proj.Mul4(view).Mul4(model)
}

// PointScale converts a world-space point size at unit depth into pixels
func PointScale(height int) float32 {
	return float32(height) / 2 / float32(math.Tan(float64(mgl32.DegToRad(FieldOfView))/2))
}

// Project maps a world point to screen pixels. depth is the eye-space distance;
// ok is false for points behind the camera or outside the clip volume.
func Project(m mgl32.Mat4, x, y, z float32, width, height int) (sx, sy, depth float32, ok bool) {
	clip := m.Mul4x1(mgl32.Vec4{x, y, z, 1})
	w := clip.W()
	if w <= NearPlane {
		return 0, 0, 0, false
	}
	nx, ny, nz := clip.X()/w, clip.Y()/w, clip.Z()/w
	if nz < -1 || nz > 1 {
		return 0, 0, 0, false
	}
	sx = (nx + 1) / 2 * float32(width)
	sy = (1 - ny) / 2 * float32(height)
	return sx, sy, w, true
}
