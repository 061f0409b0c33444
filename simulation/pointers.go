package simulation

import "github.com/weiihann/simbench/framebuffer"

// Pointers keeps every entity in its own heap allocation.
type Pointers struct {
	fb       *framebuffer.Framebuffer
	entities []*entity
}

// NewPointers returns an unconfigured Pointers context.
func NewPointers() *Pointers { return &Pointers{} }

func (p *Pointers) Setup(entityCount int, fb *framebuffer.Framebuffer) error {
	specs := NewSpawner(DefaultSeed, fb.Width(), fb.Height()).Spawn(entityCount)

	p.fb = fb
	p.entities = make([]*entity, len(specs))
	for i, s := range specs {
		e := fromSpec(s)
		p.entities[i] = &e
	}

	return nil
}

func (p *Pointers) Step(tick int) error {
	w, h := int32(p.fb.Width()), int32(p.fb.Height())
	for i, e := range p.entities {
		e.step(p.fb, i, tick, w, h)
	}

	return nil
}

func (p *Pointers) Cleanup() error {
	p.fb = nil
	p.entities = nil

	return nil
}

func (p *Pointers) String() string { return "Pointers" }
