package particles

import "math"

// stepConstants are shared by every particle within one tick
type stepConstants struct {
	time      float64
	openness  float64
	noiseAmp  float64
	jitter    float64
	stiffness float64
	friction  float64
}

// step integrates particles [lo, hi). Each call touches only its own indices.
func step(set *Set, c stepConstants, lo, hi int) {
	target, scatter := set.Target, set.Scatter
	pos, vel := set.Position, set.Velocity

	for i := lo; i < hi; i++ {
		i3 := i * 3
		fi := float64(i)

		// Openness 0 is the shape, 1 is chaos
		gx := Blend(float64(target[i3]), float64(scatter[i3]), c.openness)
		gy := Blend(float64(target[i3+1]), float64(scatter[i3+1]), c.openness)
		gz := Blend(float64(target[i3+2]), float64(scatter[i3+2]), c.openness)

		if c.noiseAmp != 0 {
			gx += math.Sin(c.time*noiseFreqX+fi*noisePhaseX) * c.noiseAmp
			gy += math.Cos(c.time*noiseFreqY+fi*noisePhaseY) * c.noiseAmp
		}

		if c.jitter != 0 {
			j := math.Sin(c.time*jitterFreq+fi) * c.jitter
			gx += j
			gy += j
			gz += j
		}

		vx := float64(vel[i3])*c.friction + (gx-float64(pos[i3]))*c.stiffness
		vy := float64(vel[i3+1])*c.friction + (gy-float64(pos[i3+1]))*c.stiffness
		vz := float64(vel[i3+2])*c.friction + (gz-float64(pos[i3+2]))*c.stiffness

		vel[i3] = float32(vx)
		vel[i3+1] = float32(vy)
		vel[i3+2] = float32(vz)

		pos[i3] += float32(vx)
		pos[i3+1] += float32(vy)
		pos[i3+2] += float32(vz)
	}
}
