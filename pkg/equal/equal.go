package equal

import (
	"reflect"
	"regexp"
	"time"
	"unsafe"

	"github.com/rickb777/date/v2"
)

// Pattern is implemented by compiled patterns that keep their flags apart
// from their source text. A *regexp.Regexp carries its flags inline, so it
// is compared by String() with empty flags.
type Pattern interface {
	Source() string
	Flags() string
}

// Collection is implemented by unordered containers such as *Set.
// Each stops early when fn returns false.
type Collection interface {
	Len() int
	Each(fn func(v any) bool)
}

type kind uint8

const (
	kindOther kind = iota
	kindDate
	kindPattern
	kindSequence
	kindMap
	kindCollection
	kindRecord
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	dateType       = reflect.TypeFor[date.Date]()
	regexpType     = reflect.TypeFor[*regexp.Regexp]()
	patternType    = reflect.TypeFor[Pattern]()
	collectionType = reflect.TypeFor[Collection]()
)

// Equal reports whether a and b are structurally equal.
func Equal(a, b any) bool {
	return deepEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Same reports whether a and b are the same value without looking inside
// them: equal comparable values, or the same slice, map or nil func.
func Same(a, b any) bool {
	return identical(reflect.ValueOf(a), reflect.ValueOf(b))
}

func deepEqual(a, b reflect.Value) bool {
	if identical(a, b) {
		return true
	}

	a, b = unwrap(a), unwrap(b)
	if absent(a) || absent(b) {
		return false
	}
	if identical(a, b) {
		return true
	}

	ka, kb := classify(a), classify(b)
	if ka != kb {
		return false
	}

	switch ka {
	case kindDate:
		return equalDate(a, b)
	case kindPattern:
		return equalPattern(a, b)
	case kindSequence:
		return equalSequence(a, b)
	case kindMap:
		return equalMap(a, b)
	case kindCollection:
		return equalCollection(a, b)
	case kindRecord:
		return equalRecord(a, b)
	default:
		return false
	}
}

// identical is the == step. Funcs are identical only when both are nil.
func identical(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	}

	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}
	return false
}

// unwrap looks through interfaces and pointers, stopping at nil and at
// pointers that are patterns or collections in their own right.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return v
			}
			v = v.Elem()
		case reflect.Pointer:
			if v.IsNil() || special(v) {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
	return v
}

func special(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}
	t := v.Type()
	return t == regexpType || t.Implements(patternType) || t.Implements(collectionType)
}

func absent(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// classify maps an unwrapped, present value to its kind.
func classify(v reflect.Value) kind {
	t := v.Type()
	if v.CanInterface() {
		switch {
		case t == timeType || t == dateType:
			return kindDate
		case t == regexpType || t.Implements(patternType):
			return kindPattern
		case t.Implements(collectionType):
			return kindCollection
		}
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return kindSequence
	case reflect.Map:
		return kindMap
	case reflect.Struct:
		return kindRecord
	}
	return kindOther
}

func equalDate(a, b reflect.Value) bool {
	switch x := a.Interface().(type) {
	case time.Time:
		y, ok := b.Interface().(time.Time)
		return ok && x.Equal(y)
	case date.Date:
		y, ok := b.Interface().(date.Date)
		return ok && x == y
	}
	return false
}

func equalPattern(a, b reflect.Value) bool {
	sa, fa := patternOf(a.Interface())
	sb, fb := patternOf(b.Interface())
	return sa == sb && fa == fb
}

func patternOf(v any) (source, flags string) {
	switch p := v.(type) {
	case *regexp.Regexp:
		return p.String(), ""
	case Pattern:
		return p.Source(), p.Flags()
	}
	return "", ""
}

func equalSequence(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !deepEqual(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

func equalMap(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Len() == 0 {
		return true
	}
	// Keys of different types never match.
	if a.Type().Key() != b.Type().Key() {
		return false
	}

	iter := a.MapRange()
	for iter.Next() {
		vb := b.MapIndex(iter.Key())
		if !vb.IsValid() {
			return false
		}
		if !deepEqual(iter.Value(), vb) {
			return false
		}
	}
	return true
}

func equalCollection(a, b reflect.Value) bool {
	ca := a.Interface().(Collection)
	cb := b.Interface().(Collection)
	if ca.Len() != cb.Len() {
		return false
	}

	matched := true
	ca.Each(func(x any) bool {
		found := false
		cb.Each(func(y any) bool {
			if Equal(x, y) {
				found = true
				return false
			}
			return true
		})
		if !found {
			matched = false
		}
		return found
	})
	return matched
}

func equalRecord(a, b reflect.Value) bool {
	ta, tb := a.Type(), b.Type()
	if ta.NumField() != tb.NumField() {
		return false
	}
	a, b = addressable(a), addressable(b)

	if ta == tb {
		for i := 0; i < a.NumField(); i++ {
			if !deepEqual(field(a, i), field(b, i)) {
				return false
			}
		}
		return true
	}

	// Distinct struct types match by field name.
	index := make(map[string]int, tb.NumField())
	for i := 0; i < tb.NumField(); i++ {
		index[tb.Field(i).Name] = i
	}
	for i := 0; i < ta.NumField(); i++ {
		j, ok := index[ta.Field(i).Name]
		if !ok {
			return false
		}
		if !deepEqual(field(a, i), field(b, j)) {
			return false
		}
	}
	return true
}

// addressable returns v itself when it is addressable, or an addressable
// copy of it.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// field returns the i'th field of the addressable struct v. Unexported
// fields are re-read through their address so that their methods stay
// callable and dates, patterns and collections keep their own rules.
func field(v reflect.Value, i int) reflect.Value {
	f := v.Field(i)
	if f.CanInterface() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
