// Package simulation provides the reference contexts: four
// implementations of the same bouncing-entity simulation that differ
// only in how they lay out entity state.
package simulation

import (
	mrand "math/rand"
)

// DefaultSeed seeds the spawner of every context.
const DefaultSeed int64 = 0x5eed

// maxSpeed bounds the per-tick velocity on each axis.
const maxSpeed = 3

// Spec is the initial state of one entity.
type Spec struct {
	X, Y   int32
	DX, DY int32
	Color  byte
}

// Spawner produces deterministic initial entity state.
type Spawner struct {
	rng    *mrand.Rand
	width  int
	height int
}

// NewSpawner creates a Spawner for a width*height grid.
func NewSpawner(seed int64, width, height int) *Spawner {
	return &Spawner{
		rng:    mrand.New(mrand.NewSource(seed)),
		width:  width,
		height: height,
	}
}

// Spawn returns n entity specs. The same seed and size always yield the
// same specs.
func (s *Spawner) Spawn(n int) []Spec {
	specs := make([]Spec, n)
	for i := range specs {
		specs[i] = Spec{
			X:     int32(s.rng.Intn(s.width)),
			Y:     int32(s.rng.Intn(s.height)),
			DX:    s.randomVelocity(),
			DY:    s.randomVelocity(),
			Color: s.randomColor(),
		}
	}

	return specs
}

func (s *Spawner) randomVelocity() int32 {
	v := int32(s.rng.Intn(2*maxSpeed+1) - maxSpeed)
	if v == 0 {
		v = 1
	}

	return v
}

func (s *Spawner) randomColor() byte {
	return byte(1 + s.rng.Intn(255))
}

// advance moves p by v inside [0, limit), reflecting off both edges.
func advance(p, v, limit int32) (int32, int32) {
	p += v

	if p < 0 {
		p = -p
		v = -v
	} else if p >= limit {
		p = 2*(limit-1) - p
		v = -v
	}

	return max(0, min(p, limit-1)), v
}

// shade is the color an entity draws with on tick.
func shade(base byte, tick int) byte {
	return base ^ byte(tick)
}
