// Package props merges prop values by field name.
//
// It is the Go counterpart of object spread: Spread copies every exported
// field of each layer onto a copy of the base, later layers winning, and
// Defaults fills the zero-valued fields of a value from a defaults value.
// Both are shallow: slices, maps and pointers are shared, not cloned.
//
// Layers may be structs, pointers to structs or map[string]any. The base
// may be a struct or a map[string]any.
package props

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupported is returned when a base or layer is neither a struct, a
// pointer to a struct, nor a map keyed by string.
var ErrUnsupported = errors.New("props: unsupported value kind")

// FieldError reports a layer field whose value cannot be stored in the
// same-named base field.
type FieldError struct {
	Field string
	From  reflect.Type
	To    reflect.Type
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("props: field %s: cannot assign %s to %s", e.Field, e.From, e.To)
}

// Spread returns base with the fields of each layer copied over it.
//
// Fields are matched by name; layer fields with no counterpart in base are
// ignored for struct bases and added for map bases. Nil layers are skipped.
func Spread[P any](base P, layers ...any) (P, error) {
	out := base
	dst := reflect.ValueOf(&out).Elem()
	if dst.Kind() == reflect.Map {
		dst = cloneMap(dst)
		out = dst.Interface().(P)
	}
	for _, layer := range layers {
		if err := overlay(dst, reflect.ValueOf(layer), false); err != nil {
			return base, err
		}
	}
	return out, nil
}

// Defaults returns props with each zero-valued field taken from defaults.
//
// A zero field is treated as absent, so a prop cannot be explicitly set to
// its zero value through Defaults.
func Defaults[P any](props, defaults P) P {
	out := defaults
	dst := reflect.ValueOf(&out).Elem()
	if dst.Kind() == reflect.Map {
		dst = cloneMap(dst)
		out = dst.Interface().(P)
	}
	// Same type on both sides: assignment cannot fail.
	_ = overlay(dst, reflect.ValueOf(props), true)
	return out
}

func overlay(dst, src reflect.Value, skipZero bool) error {
	if !src.IsValid() {
		return nil
	}
	for src.Kind() == reflect.Pointer || src.Kind() == reflect.Interface {
		if src.IsNil() {
			return nil
		}
		src = src.Elem()
	}

	switch {
	case dst.Kind() == reflect.Struct:
	case dst.Kind() == reflect.Map && dst.Type().Key().Kind() == reflect.String:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, dst.Type())
	}

	switch {
	case src.Kind() == reflect.Struct:
		st := src.Type()
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.IsExported() {
				continue
			}
			if err := set(dst, f.Name, src.Field(i), skipZero); err != nil {
				return err
			}
		}
	case src.Kind() == reflect.Map && src.Type().Key().Kind() == reflect.String:
		iter := src.MapRange()
		for iter.Next() {
			if err := set(dst, iter.Key().String(), iter.Value(), skipZero); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, src.Type())
	}
	return nil
}

func set(dst reflect.Value, name string, v reflect.Value, skipZero bool) error {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if skipZero && (!v.IsValid() || v.IsZero()) {
		return nil
	}

	if dst.Kind() == reflect.Map {
		elem := dst.Type().Elem()
		if !v.IsValid() {
			dst.SetMapIndex(reflect.ValueOf(name).Convert(dst.Type().Key()), reflect.Zero(elem))
			return nil
		}
		if !v.Type().AssignableTo(elem) {
			return &FieldError{Field: name, From: v.Type(), To: elem}
		}
		dst.SetMapIndex(reflect.ValueOf(name).Convert(dst.Type().Key()), v)
		return nil
	}

	sf, ok := dst.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return nil
	}
	field, err := dst.FieldByIndexErr(sf.Index)
	if err != nil || !field.CanSet() {
		// nil embedded pointer
		return nil
	}
	if !v.IsValid() {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	if !v.Type().AssignableTo(field.Type()) {
		return &FieldError{Field: name, From: v.Type(), To: field.Type()}
	}
	field.Set(v)
	return nil
}

func cloneMap(m reflect.Value) reflect.Value {
	out := reflect.MakeMapWithSize(m.Type(), m.Len())
	if !m.IsNil() {
		iter := m.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	return out
}
