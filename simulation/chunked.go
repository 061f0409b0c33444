package simulation

import "github.com/weiihann/simbench/framebuffer"

const chunkSize = 64

type chunk struct {
	entities [chunkSize]entity
	len      int
}

// Chunked stores entities in fixed-size chunks allocated on demand.
type Chunked struct {
	fb     *framebuffer.Framebuffer
	chunks []*chunk
}

// NewChunked returns an unconfigured Chunked context.
func NewChunked() *Chunked { return &Chunked{} }

func (c *Chunked) Setup(entityCount int, fb *framebuffer.Framebuffer) error {
	specs := NewSpawner(DefaultSeed, fb.Width(), fb.Height()).Spawn(entityCount)

	c.fb = fb
	c.chunks = c.chunks[:0]

	for _, s := range specs {
		if len(c.chunks) == 0 || c.chunks[len(c.chunks)-1].len == chunkSize {
			c.chunks = append(c.chunks, &chunk{})
		}

		last := c.chunks[len(c.chunks)-1]
		last.entities[last.len] = fromSpec(s)
		last.len++
	}

	return nil
}

func (c *Chunked) Step(tick int) error {
	w, h := int32(c.fb.Width()), int32(c.fb.Height())

	id := 0
	for _, ch := range c.chunks {
		for i := 0; i < ch.len; i++ {
			ch.entities[i].step(c.fb, id, tick, w, h)
			id++
		}
	}

	return nil
}

func (c *Chunked) Cleanup() error {
	c.fb = nil
	clear(c.chunks)
	c.chunks = c.chunks[:0]

	return nil
}

func (c *Chunked) String() string { return "Chunked" }
