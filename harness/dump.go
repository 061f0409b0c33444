package harness

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiihann/simbench/framebuffer"
)

// DumpFileName returns the diagnostic dump file name for one context at
// one size.
func DumpFileName(identity string, size Size) string {
	return fmt.Sprintf("%s_%d_%d.txt", sanitize(identity), size.EntityCount, size.Ticks)
}

func writeDump(dir, identity string, size Size, draws []framebuffer.Draw) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, DumpFileName(identity, size))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dump %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range framebuffer.DumpLines(draws) {
		w.WriteString(line)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write dump %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close dump %s: %w", path, err)
	}

	return path, nil
}

func sanitize(identity string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, identity)
}
