package reactive

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/pulse/internal/errors"
)

var (
	// ErrReadOnly is returned when a computed value is set through its
	// Dynamic view. Computed has no Set method, so typed callers cannot
	// reach this.
	ErrReadOnly = errors.New("E101")

	// ErrTypeMismatch is returned by SetAny when the value does not have
	// the cell's type.
	ErrTypeMismatch = errors.New("E102")
)

func readOnly(name string) error {
	return errors.New("E101").
		WithDetail(fmt.Sprintf("cell %q is computed from its dependencies", name)).
		WithSuggestion("set one of its dependencies instead")
}

func typeMismatch(name string, want reflect.Type, got any) error {
	return errors.New("E102").
		WithDetail(fmt.Sprintf("cell %q holds %s, got %T", name, want, got))
}

// assign converts value to T for SetAny. A nil value becomes the zero T
// when T is a nilable type.
func assign[T any](name string, value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}

	var zero T
	t := reflect.TypeFor[T]()
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return zero, nil
		}
	}
	return zero, typeMismatch(name, t, value)
}
