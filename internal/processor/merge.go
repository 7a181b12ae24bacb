package processor

import (
	"reflect"
)

// mergeValue writes into out the fields of override that are set, and the
// fields of base otherwise. Structs merge field by field; a non-nil slice,
// even an empty one, replaces the base slice.
func mergeValue(t reflect.Type, base, override, out reflect.Value) {
	switch t.Kind() {
	case reflect.Struct:
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			mergeValue(f.Type, base.FieldByIndex(f.Index), override.FieldByIndex(f.Index), out.FieldByIndex(f.Index))
		}
	case reflect.Pointer:
		switch {
		case override.IsNil():
			out.Set(base)
		case base.IsNil():
			out.Set(override)
		default:
			out.Set(reflect.New(t.Elem()))
			mergeValue(t.Elem(), base.Elem(), override.Elem(), out.Elem())
		}
	case reflect.Slice, reflect.Map:
		if override.IsNil() {
			out.Set(base)
		} else {
			out.Set(override)
		}
	default:
		if override.IsZero() {
			out.Set(base)
		} else {
			out.Set(override)
		}
	}
}

// Merge returns base with every set field of override applied on top.
// Zero scalars in override count as unset, so a false flag cannot turn off a true one.
func Merge[T any](base, override T) T {
	var out T
	mergeValue(reflect.TypeOf((*T)(nil)).Elem(), reflect.ValueOf(base), reflect.ValueOf(override), reflect.ValueOf(&out).Elem())
	return out
}
