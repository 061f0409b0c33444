// Package framebuffer provides the output grid and draw log that a
// simulation context writes into while it is stepped.
package framebuffer

import (
	"fmt"
	"sort"
)

// Draw is one entry in the draw log.
type Draw struct {
	Tick     int
	EntityID int
	X        int
	Y        int
	Color    byte
}

// Framebuffer is a width*height grid of byte sized colors plus an
// optional append-only draw log. It is owned by whoever constructed it.
type Framebuffer struct {
	width    int
	height   int
	buffer   []byte
	draws    []Draw
	logDraws bool
	disposed bool
}

// New allocates a zeroed framebuffer. drawCapacity reserves room for the
// draw log; zero disables draw logging entirely.
func New(width, height, drawCapacity int) *Framebuffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("framebuffer: invalid size %dx%d", width, height))
	}

	if drawCapacity < 0 {
		panic(fmt.Sprintf("framebuffer: negative draw capacity %d", drawCapacity))
	}

	fb := &Framebuffer{
		width:    width,
		height:   height,
		buffer:   make([]byte, width*height),
		logDraws: drawCapacity > 0,
	}

	if fb.logDraws {
		fb.draws = make([]Draw, 0, drawCapacity)
	}

	return fb
}

// Width returns the grid width.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the grid height.
func (f *Framebuffer) Height() int { return f.height }

// Bytes returns the width*height cells backing the grid. The slice is
// shared with the framebuffer and is only valid until Dispose.
func (f *Framebuffer) Bytes() []byte {
	f.mustBeLive()

	return f.buffer
}

// Write sets the cell at (x, y). Out-of-range coordinates are rejected
// and reported by a false return.
func (f *Framebuffer) Write(x, y int, color byte) bool {
	f.mustBeLive()

	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return false
	}

	f.buffer[y*f.width+x] = color

	return true
}

// At returns the cell at (x, y), or zero when out of range.
func (f *Framebuffer) At(x, y int) byte {
	f.mustBeLive()

	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0
	}

	return f.buffer[y*f.width+x]
}

// RecordDraw appends to the draw log. No-op when logging is disabled.
func (f *Framebuffer) RecordDraw(tick, entityID, x, y int, color byte) {
	f.mustBeLive()

	if !f.logDraws {
		return
	}

	f.draws = append(f.draws, Draw{
		Tick:     tick,
		EntityID: entityID,
		X:        x,
		Y:        y,
		Color:    color,
	})
}

// LogsDraws reports whether the draw log is enabled.
func (f *Framebuffer) LogsDraws() bool { return f.logDraws }

// Draws returns the draw log in append order.
func (f *Framebuffer) Draws() []Draw {
	f.mustBeLive()

	return f.draws
}

// Dispose releases the grid and the draw log. Any later access panics.
func (f *Framebuffer) Dispose() {
	f.buffer = nil
	f.draws = nil
	f.disposed = true
}

func (f *Framebuffer) mustBeLive() {
	if f.disposed {
		panic("framebuffer: use after dispose")
	}
}

// DumpLines renders draws as "tick,entityId,x,y,color" lines with a four
// digit zero-padded tick, sorted lexicographically so that logs emitted
// in different orders compare equal.
func DumpLines(draws []Draw) []string {
	lines := make([]string, 0, len(draws))
	for _, d := range draws {
		lines = append(lines, fmt.Sprintf("%04d,%d,%d,%d,%d",
			d.Tick, d.EntityID, d.X, d.Y, d.Color))
	}

	sort.Strings(lines)

	return lines
}
