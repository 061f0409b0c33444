// Package stablehash implements the 32-bit hash used to decide whether
// two simulation runs produced the same output.
//
// The hash depends only on the bytes submitted and their order, never on
// how they were split across calls.
package stablehash

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MarkerPrefix starts the correctness marker line a measurement process
// writes to stdout. Report scrapers match this literal.
const MarkerPrefix = "// Hash: "

// Accumulator folds byte chunks into a running digest.
type Accumulator struct {
	digest *xxhash.Digest
	count  uint64
}

// New returns an Accumulator whose empty digest is determined by seed.
func New(seed uint32) *Accumulator {
	return &Accumulator{digest: xxhash.NewWithSeed(uint64(seed))}
}

// Add mixes p into the running state.
func (a *Accumulator) Add(p []byte) {
	// Digest.Write never returns an error.
	_, _ = a.digest.Write(p)
	a.count += uint64(len(p))
}

// AddWords mixes words into the running state, little endian.
func (a *Accumulator) AddWords(words []uint32) {
	var buf [256]byte

	for len(words) > 0 {
		n := min(len(words), len(buf)/4)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(buf[i*4:], words[i])
		}

		a.Add(buf[:n*4])
		words = words[n:]
	}
}

// Count returns the number of bytes added so far.
func (a *Accumulator) Count() uint64 { return a.count }

// Finalize returns the current 32-bit hash without resetting state.
func (a *Accumulator) Finalize() uint32 {
	return fold(a.digest.Sum64())
}

// Hash returns the hash of p as a single aggregate.
func Hash(seed uint32, p []byte) uint32 {
	a := New(seed)
	a.Add(p)

	return a.Finalize()
}

// HashWords returns the hash of words encoded little endian.
func HashWords(seed uint32, words []uint32) uint32 {
	a := New(seed)
	a.AddWords(words)

	return a.Finalize()
}

func fold(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}

// FormatMarker renders the correctness marker line for h.
func FormatMarker(h uint32) string {
	return fmt.Sprintf("%s%08X", MarkerPrefix, h)
}

// ParseMarker returns the hash token of a marker line. ok is false when
// line does not start with MarkerPrefix.
func ParseMarker(line string) (token string, ok bool) {
	if !strings.HasPrefix(line, MarkerPrefix) {
		return "", false
	}

	return strings.TrimSpace(line[len(MarkerPrefix):]), true
}
