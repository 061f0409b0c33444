package simulation

import "github.com/weiihann/simbench/framebuffer"

// SoA keeps each entity field in its own slice.
type SoA struct {
	fb     *framebuffer.Framebuffer
	xs, ys []int32
	dxs    []int32
	dys    []int32
	colors []byte
}

// NewSoA returns an unconfigured SoA context.
func NewSoA() *SoA { return &SoA{} }

func (s *SoA) Setup(entityCount int, fb *framebuffer.Framebuffer) error {
	specs := NewSpawner(DefaultSeed, fb.Width(), fb.Height()).Spawn(entityCount)

	s.fb = fb
	s.xs = make([]int32, len(specs))
	s.ys = make([]int32, len(specs))
	s.dxs = make([]int32, len(specs))
	s.dys = make([]int32, len(specs))
	s.colors = make([]byte, len(specs))

	for i, sp := range specs {
		s.xs[i], s.ys[i] = sp.X, sp.Y
		s.dxs[i], s.dys[i] = sp.DX, sp.DY
		s.colors[i] = sp.Color
	}

	return nil
}

func (s *SoA) Step(tick int) error {
	w, h := int32(s.fb.Width()), int32(s.fb.Height())

	// Movement and drawing stay in one pass so later entities overwrite
	// earlier ones in id order, exactly as the other layouts do.
	for i := range s.xs {
		s.xs[i], s.dxs[i] = advance(s.xs[i], s.dxs[i], w)
		s.ys[i], s.dys[i] = advance(s.ys[i], s.dys[i], h)

		c := shade(s.colors[i], tick)
		s.fb.Write(int(s.xs[i]), int(s.ys[i]), c)
		s.fb.RecordDraw(tick, i, int(s.xs[i]), int(s.ys[i]), c)
	}

	return nil
}

func (s *SoA) Cleanup() error {
	*s = SoA{}

	return nil
}

func (s *SoA) String() string { return "SoA" }
