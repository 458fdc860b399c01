package bind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/pulse/pkg/microtask"
	"github.com/vango-dev/pulse/pkg/reactive"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	a := reactive.NewSignal(1, reactive.WithName("a"))
	b := reactive.NewSignal("x", reactive.WithName("b"))

	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))

	got, err := reg.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "x", got.GetAny())

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(reactive.NewSignal(1, reactive.WithName("a"))))

	err := reg.Register(reactive.NewSignal(2, reactive.WithName("a")))
	assert.True(t, errors.Is(err, ErrDuplicateCell), "got %v", err)

	_, err = reg.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownCell), "got %v", err)
	assert.Contains(t, err.Error(), "E120")
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry()
	counter, err := NewCounter(reg, 3, reactive.WithScheduler(microtask.NewQueue()))
	require.NoError(t, err)

	counter.Increment()

	assert.Equal(t, []CellState{
		{Name: "count", Type: "int", ReadOnly: false, Value: 4},
		{Name: "double", Type: "int", ReadOnly: true, Value: 8},
	}, reg.Snapshot())
}

func TestNewCounterOverridesName(t *testing.T) {
	reg := NewRegistry()
	counter, err := NewCounter(reg, 0, reactive.WithName("ignored"))
	require.NoError(t, err)

	assert.Equal(t, "count", counter.Count.Name())
	assert.Equal(t, "double", counter.Double.Name())

	_, err = NewCounter(reg, 0)
	assert.True(t, errors.Is(err, ErrDuplicateCell), "got %v", err)
}

func TestRegistryActions(t *testing.T) {
	reg := NewRegistry()
	counter, err := NewCounter(reg, 1, reactive.WithScheduler(microtask.NewQueue()))
	require.NoError(t, err)

	assert.Equal(t, []string{"increment"}, reg.Actions())

	increment, err := reg.Action("increment")
	require.NoError(t, err)
	increment()
	increment()
	assert.Equal(t, 3, counter.Count.Get())
	assert.Equal(t, 6, counter.Double.Get())

	_, err = reg.Action("reset")
	assert.True(t, errors.Is(err, ErrUnknownAction), "got %v", err)

	err = reg.RegisterAction("increment", func() {})
	assert.True(t, errors.Is(err, ErrDuplicateAction), "got %v", err)
}
