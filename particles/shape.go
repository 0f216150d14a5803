package particles

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Shape constants
const (
	SphereRadius = 5.5
	HeartScale   = 0.25
	HeartDepth   = 8.0 // pre-scale z band
	VortexTurns  = 3
	CustomScale  = 12.0
	CustomDepth  = 2.0
)

// Kind selects which generator populates the targets
type Kind int

const (
	KindSphere Kind = iota
	KindHeart
	KindVortex
	KindCustom
)

var kindNames = [...]string{"sphere", "heart", "vortex", "custom"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a case-insensitive name to a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return KindSphere, fmt.Errorf("unknown shape %q", s)
}

// Shape is one of Sphere, Heart, Vortex or Custom
type Shape interface {
	Kind() Kind
	// point draws one target coordinate
	point(rng *rand.Rand) (x, y, z float64)
}

// Sphere fills a ball uniformly by volume
type Sphere struct {
	Radius float64
}

func (Sphere) Kind() Kind { return KindSphere }

func (s Sphere) point(rng *rand.Rand) (float64, float64, float64) {
	radius := s.Radius
	if radius <= 0 {
		radius = SphereRadius
	}
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	// cube root counters the r² growth of shell volume
	r := radius * math.Cbrt(rng.Float64())
	return r * math.Sin(phi) * math.Cos(theta),
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi)
}

// Heart samples a thick planar heart curve
type Heart struct{}

func (Heart) Kind() Kind { return KindHeart }

func (Heart) point(rng *rand.Rand) (float64, float64, float64) {
	t := rng.Float64() * 2 * math.Pi
	s := rng.Float64()*0.2 + 0.8
	sin := math.Sin(t)
	x := s * 16 * sin * sin * sin
	y := s * (13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t))
	z := (rng.Float64() - 0.5) * HeartDepth
	return x * HeartScale, y * HeartScale, z * HeartScale
}

// Vortex lays particles along spiral arms that thin out with radius
type Vortex struct{}

func (Vortex) Kind() Kind { return KindVortex }

func (Vortex) point(rng *rand.Rand) (float64, float64, float64) {
	angle := rng.Float64() * 2 * math.Pi * VortexTurns
	radius := rng.Float64()*6 + 0.5
	arm := (rng.Float64() - 0.5) * 2
	x := math.Cos(angle+arm) * radius
	z := math.Sin(angle+arm) * radius
	y := (rng.Float64() - 0.5) * (5 - radius*0.5)
	return x, y, z
}

// Custom resamples a user-drawn silhouette. Cloud holds (x, y, z) triples with x, y in [0,1].
type Custom struct {
	Cloud []float32
}

func (Custom) Kind() Kind { return KindCustom }

func (c Custom) point(rng *rand.Rand) (float64, float64, float64) {
	n := len(c.Cloud) / 3
	if n == 0 {
		// nothing drawn: collapse onto the origin
		return 0, 0, 0
	}
	i := rng.Intn(n) * 3
	x := (float64(c.Cloud[i]) - 0.5) * CustomScale
	y := -(float64(c.Cloud[i+1]) - 0.5) * CustomScale
	z := (rng.Float64() - 0.5) * CustomDepth
	return x, y, z
}

// ShapeFor builds the default shape of a kind. The cloud is only used by KindCustom.
func ShapeFor(k Kind, cloud []float32) Shape {
	switch k {
	case KindHeart:
		return Heart{}
	case KindVortex:
		return Vortex{}
	case KindCustom:
		return Custom{Cloud: cloud}
	default:
		return Sphere{Radius: SphereRadius}
	}
}

// GenerateTargets returns count target points as a flat xyz slice
func GenerateTargets(shape Shape, count int, rng *rand.Rand) []float32 {
	if count < 0 {
		count = 0
	}
	if shape == nil {
		shape = Sphere{Radius: SphereRadius}
	}
	data := make([]float32, count*3)
	for i := 0; i < count; i++ {
		x, y, z := shape.point(rng)
		data[i*3] = float32(x)
		data[i*3+1] = float32(y)
		data[i*3+2] = float32(z)
	}
	return data
}
