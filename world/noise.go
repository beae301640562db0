package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise generates coherent 2D terrain noise.
type Noise struct {
	src opensimplex.Noise
}

// NewNoise creates a seeded noise generator.
func NewNoise(seed int64) *Noise {
	return &Noise{src: opensimplex.New(seed)}
}

// At returns noise in [-1, 1] for a 2D coordinate.
func (n *Noise) At(x, y float64) float64 {
	return n.src.Eval2(x, y)
}

// Fractal sums octaves of At, each at twice the frequency and half the
// amplitude of the last, normalized back to [-1, 1].
func (n *Noise) Fractal(x, y float64, octaves int) float64 {
	sum, amp, norm := 0.0, 1.0, 0.0
	for range max(octaves, 1) {
		sum += n.At(x, y) * amp
		norm += amp
		amp *= 0.5
		x *= 2
		y *= 2
	}
	return sum / norm
}
