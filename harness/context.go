package harness

import (
	"errors"
	"fmt"
	"sync"

	"github.com/weiihann/simbench/framebuffer"
)

// Context is one interchangeable implementation of the simulation.
//
// Setup is called once before any Step and Cleanup once after the last
// Step. A Context may be set up again after Cleanup and must then start
// from a clean state. It borrows the framebuffer between Setup and
// Cleanup and never owns it. String returns the stable identity used in
// reports and dump file names.
type Context interface {
	Setup(entityCount int, fb *framebuffer.Framebuffer) error
	Step(tick int) error
	Cleanup() error
	String() string
}

// Factory produces fresh instances of one Context variant.
type Factory struct {
	Name string
	New  func() Context
}

var (
	// ErrAlreadyRegistered is returned when a factory name is taken.
	ErrAlreadyRegistered = errors.New("factory already registered")

	// ErrNotFound is returned when no factory has the requested name.
	ErrNotFound = errors.New("factory not found")

	// ErrNilFactory is returned when a factory has no constructor.
	ErrNilFactory = errors.New("nil factory")
)

// Registry is an ordered set of named factories. Registration order is
// the order contexts are run and reported in.
type Registry struct {
	mu        sync.RWMutex
	factories []Factory
	index     map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds f under f.Name.
func (r *Registry) Register(f Factory) error {
	if f.New == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[f.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, f.Name)
	}

	r.index[f.Name] = len(r.factories)
	r.factories = append(r.factories, f)

	return nil
}

// MustRegister registers f and panics on error. Meant for init-time
// wiring only.
func (r *Registry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(fmt.Sprintf("harness: register %s: %v", f.Name, err))
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Factory{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return r.factories[i], nil
}

// Factories returns every factory in registration order.
func (r *Registry) Factories() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Factory, len(r.factories))
	copy(out, r.factories)

	return out
}

// Select returns the factories named in names, in that order. An empty
// names selects everything.
func (r *Registry) Select(names []string) ([]Factory, error) {
	if len(names) == 0 {
		return r.Factories(), nil
	}

	out := make([]Factory, 0, len(names))
	for _, name := range names {
		f, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	return out, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.factories))
	for i, f := range r.factories {
		names[i] = f.Name
	}

	return names
}
