package reactive

import "github.com/vango-dev/pulse/pkg/equal"

// defaultEquals compares with == for common scalar types and falls back to
// equal.Equal for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return sameScalar(av, any(b))
	case int8:
		return sameScalar(av, any(b))
	case int16:
		return sameScalar(av, any(b))
	case int32:
		return sameScalar(av, any(b))
	case int64:
		return sameScalar(av, any(b))
	case uint:
		return sameScalar(av, any(b))
	case uint8:
		return sameScalar(av, any(b))
	case uint16:
		return sameScalar(av, any(b))
	case uint32:
		return sameScalar(av, any(b))
	case uint64:
		return sameScalar(av, any(b))
	case float32:
		return sameScalar(av, any(b))
	case float64:
		return sameScalar(av, any(b))
	case string:
		return sameScalar(av, any(b))
	case bool:
		return sameScalar(av, any(b))
	default:
		return equal.Equal(a, b)
	}
}

// sameScalar also covers T = any, where b may hold a different type.
func sameScalar[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}
