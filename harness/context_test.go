package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(factoryOf(newFake("b")))
	reg.MustRegister(factoryOf(newFake("a")))

	assert.Equal(t, []string{"b", "a"}, reg.Names())
	assert.Len(t, reg.Factories(), 2)
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(factoryOf(newFake("a"))))

	assert.ErrorIs(t, reg.Register(factoryOf(newFake("a"))), ErrAlreadyRegistered)
	assert.ErrorIs(t, reg.Register(Factory{Name: "x"}), ErrNilFactory)
	assert.Panics(t, func() { reg.MustRegister(factoryOf(newFake("a"))) })
}

func TestRegistrySelect(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(factoryOf(newFake("a")))
	reg.MustRegister(factoryOf(newFake("b")))

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := reg.Select([]string{"b"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "b", some[0].Name)

	_, err = reg.Select([]string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}
