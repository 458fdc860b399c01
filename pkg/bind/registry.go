package bind

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/pulse/internal/errors"
	"github.com/vango-dev/pulse/pkg/reactive"
)

var (
	// ErrUnknownCell is returned when no cell has the requested name.
	ErrUnknownCell = errors.New("E120")

	// ErrMalformedFrame is returned for frames or bodies that cannot be
	// decoded.
	ErrMalformedFrame = errors.New("E121")

	// ErrDuplicateCell is returned when a name is registered twice.
	ErrDuplicateCell = errors.New("E122")

	// ErrUnknownAction is returned when no action has the requested name.
	ErrUnknownAction = errors.New("E123")

	// ErrDuplicateAction is returned when an action name is registered twice.
	ErrDuplicateAction = errors.New("E124")
)

// CellState is a cell's name, type and value at one point in time.
type CellState struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ReadOnly bool   `json:"readOnly"`
	Value    any    `json:"value"`
}

// Registry maps names to cells in registration order, and names to
// actions: functions that change cells, such as a button press. The maps
// are safe for concurrent use; reading cell values and running actions
// are not, see Snapshot.
type Registry struct {
	mu      sync.RWMutex
	names   []string
	cells   map[string]reactive.Dynamic
	actions map[string]func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cells:   make(map[string]reactive.Dynamic),
		actions: make(map[string]func()),
	}
}

// Register adds cell under its name.
func (r *Registry) Register(cell reactive.Dynamic) error {
	name := cell.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cells[name]; exists {
		return errors.New("E122").WithDetail(fmt.Sprintf("a cell named %q is already registered", name))
	}
	r.cells[name] = cell
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the cell registered under name.
func (r *Registry) Lookup(name string) (reactive.Dynamic, error) {
	r.mu.RLock()
	cell, ok := r.cells[name]
	r.mu.RUnlock()

	if !ok {
		return nil, unknownCell(name)
	}
	return cell, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered cells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// RegisterAction adds fn under name. fn runs on the goroutine that owns the
// cells it touches.
func (r *Registry) RegisterAction(name string, fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[name]; exists {
		return errors.New("E124").WithDetail(fmt.Sprintf("an action named %q is already registered", name))
	}
	r.actions[name] = fn
	return nil
}

// Action returns the action registered under name.
func (r *Registry) Action(name string) (func(), error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.New("E123").WithDetail(fmt.Sprintf("no action named %q", name))
	}
	return fn, nil
}

// Actions returns the registered action names in sorted order.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.actions))
	for name := range r.actions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot reads every cell. It must run on the goroutine that owns the
// cells.
func (r *Registry) Snapshot() []CellState {
	names := r.Names()
	out := make([]CellState, 0, len(names))
	for _, name := range names {
		cell, err := r.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, stateOf(cell))
	}
	return out
}

func stateOf(cell reactive.Dynamic) CellState {
	return CellState{
		Name:     cell.Name(),
		Type:     cell.Type().String(),
		ReadOnly: cell.ReadOnly(),
		Value:    cell.GetAny(),
	}
}

func unknownCell(name string) error {
	return errors.New("E120").WithDetail(fmt.Sprintf("no cell named %q", name))
}
