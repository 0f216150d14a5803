package particles

import "math/rand"

// Set holds the per-particle state as parallel flat xyz slices of length 3*Count.
// Target and Scatter are fixed for the set's lifetime; Position and Velocity belong
// to the System that integrates the set.
type Set struct {
	Shape    Shape
	Count    int
	Target   []float32
	Scatter  []float32
	Position []float32
	Velocity []float32
}

// NewSet builds a fresh set with zero position and velocity
func NewSet(shape Shape, count int, rng *rand.Rand) *Set {
	return Reshape(nil, shape, count, rng)
}

// Reshape builds the set that replaces prev after a shape, cloud or count change.
// Scatter is kept when the count is unchanged, and so are positions, so the swarm
// morphs from where it is. Velocity always starts at zero.
func Reshape(prev *Set, shape Shape, count int, rng *rand.Rand) *Set {
	s := Regenerate(prev, shape, count, rng)
	if prev != nil && prev.Count == s.Count {
		copy(s.Position, prev.Position)
	}
	return s
}

// Regenerate is Reshape without the position carry-over. It reads only prev's
// Count and Scatter, which never change, so it may run while prev is integrated.
func Regenerate(prev *Set, shape Shape, count int, rng *rand.Rand) *Set {
	if count < 0 {
		count = 0
	}
	if shape == nil {
		shape = Sphere{Radius: SphereRadius}
	}
	s := &Set{
		Shape:    shape,
		Count:    count,
		Target:   GenerateTargets(shape, count, rng),
		Position: make([]float32, count*3),
		Velocity: make([]float32, count*3),
	}
	if prev != nil && prev.Count == count {
		s.Scatter = prev.Scatter
	} else {
		s.Scatter = GenerateScatter(count, rng)
	}
	return s
}

// Len returns the number of particles
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.Count
}
