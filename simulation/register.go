package simulation

import "github.com/weiihann/simbench/harness"

// Factories returns the reference contexts in their canonical order.
func Factories() []harness.Factory {
	return []harness.Factory{
		{Name: "AoS", New: func() harness.Context { return NewAoS() }},
		{Name: "SoA", New: func() harness.Context { return NewSoA() }},
		{Name: "Pointers", New: func() harness.Context { return NewPointers() }},
		{Name: "Chunked", New: func() harness.Context { return NewChunked() }},
	}
}

// Register adds every reference context to reg.
func Register(reg *harness.Registry) error {
	for _, f := range Factories() {
		if err := reg.Register(f); err != nil {
			return err
		}
	}

	return nil
}
