package simulation

import "github.com/weiihann/simbench/framebuffer"

type entity struct {
	x, y   int32
	dx, dy int32
	color  byte
}

func (e *entity) step(fb *framebuffer.Framebuffer, id, tick int, w, h int32) {
	e.x, e.dx = advance(e.x, e.dx, w)
	e.y, e.dy = advance(e.y, e.dy, h)

	c := shade(e.color, tick)
	fb.Write(int(e.x), int(e.y), c)
	fb.RecordDraw(tick, id, int(e.x), int(e.y), c)
}

func fromSpec(s Spec) entity {
	return entity{x: s.X, y: s.Y, dx: s.DX, dy: s.DY, color: s.Color}
}

// AoS keeps entities in one contiguous slice of structs.
type AoS struct {
	fb       *framebuffer.Framebuffer
	entities []entity
}

// NewAoS returns an unconfigured AoS context.
func NewAoS() *AoS { return &AoS{} }

func (a *AoS) Setup(entityCount int, fb *framebuffer.Framebuffer) error {
	specs := NewSpawner(DefaultSeed, fb.Width(), fb.Height()).Spawn(entityCount)

	a.fb = fb
	a.entities = make([]entity, len(specs))
	for i, s := range specs {
		a.entities[i] = fromSpec(s)
	}

	return nil
}

func (a *AoS) Step(tick int) error {
	w, h := int32(a.fb.Width()), int32(a.fb.Height())
	for i := range a.entities {
		a.entities[i].step(a.fb, i, tick, w, h)
	}

	return nil
}

func (a *AoS) Cleanup() error {
	a.fb = nil
	a.entities = nil

	return nil
}

func (a *AoS) String() string { return "AoS" }
