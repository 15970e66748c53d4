package async

import "reflect"

// Refetch reports whether a change from prev to curr warrants a new fetch.
type Refetch[V any] func(prev, curr V) bool

// Always refetches on every vars update.
func Always[V any]() Refetch[V] {
	return func(V, V) bool { return true }
}

// Never skips refetching once data exists.
func Never[V any]() Refetch[V] {
	return func(V, V) bool { return false }
}

// Shallow reports whether curr differs from prev one level deep.
//
// The same pointer, map or identical value is unchanged. Otherwise records
// (structs, maps, and pointers to them) are compared key by key: maps with
// different sizes differ, and each value is compared by identity. Slices,
// maps, funcs and channels inside a record are identical only when they
// share the same underlying reference.
func Shallow[V any](prev, curr V) bool {
	return changed(reflect.ValueOf(&prev).Elem(), reflect.ValueOf(&curr).Elem())
}

func changed(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() != b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return true
		}
	}

	if a.Kind() == reflect.Pointer {
		if a.Pointer() == b.Pointer() {
			return false
		}
		if a.IsNil() || b.IsNil() {
			return true
		}
		a, b = a.Elem(), b.Elem()
	}

	switch a.Kind() {
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !same(a.Field(i), b.Field(i)) {
				return true
			}
		}
		return false
	case reflect.Map:
		if a.Pointer() == b.Pointer() {
			return false
		}
		if a.Len() != b.Len() {
			return true
		}
		iter := a.MapRange()
		for iter.Next() {
			other := b.MapIndex(iter.Key())
			if !other.IsValid() || !same(iter.Value(), other) {
				return true
			}
		}
		return false
	}
	return !same(a, b)
}

// same is the per-key identity check.
func same(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Struct:
		if a.Comparable() {
			return a.Equal(b)
		}
		for i := 0; i < a.NumField(); i++ {
			if !same(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		if a.Comparable() {
			return a.Equal(b)
		}
		for i := 0; i < a.Len(); i++ {
			if !same(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return a.Comparable() && a.Equal(b)
}
