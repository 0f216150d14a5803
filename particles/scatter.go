package particles

import "math/rand"

// ScatterExtent is the edge length of the chaos cube, wider than any shape
const ScatterExtent = 35.0

// GenerateScatter returns count chaos points, each axis uniform in ±ScatterExtent/2
func GenerateScatter(count int, rng *rand.Rand) []float32 {
	if count < 0 {
		count = 0
	}
	data := make([]float32, count*3)
	for i := range data {
		data[i] = float32((rng.Float64() - 0.5) * ScatterExtent)
	}
	return data
}
