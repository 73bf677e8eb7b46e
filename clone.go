package veil

import "reflect"

// Cloner allows types to provide deep copy logic. The typed entry points
// (Mask, MaskFor, Redactor) require it: the copy is what the walker mutates,
// so modifications to the clone must never affect the original value.
//
// For simple value types with no pointers, slices, or maps, Clone can simply
// return the receiver value:
//
//	func (u User) Clone() User { return u }
//
// For types with reference fields, ensure deep copying:
//
//	func (o Order) Clone() Order {
//	    items := make([]Item, len(o.Items))
//	    copy(items, o.Items)
//	    return Order{ID: o.ID, Items: items}
//	}
type Cloner[T any] interface {
	Clone() T
}

// Clone produces a structurally equal, referentially independent copy of v.
// It is the clone boundary behind MaskAny, for graphs whose static type is
// not known.
//
// Shared references and cycles inside v are preserved in the copy: two paths
// reaching the same node in v reach the same copied node in the result.
// Clone fails with ErrClone when the graph holds a value that cannot be
// duplicated independently (a channel, func, or unsafe pointer).
//
// Unexported struct fields are carried over by whole-struct assignment and
// may alias the original; the walker never writes through them.
func Clone(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil
	}
	out, err := deepClone(rv, make(map[visit]reflect.Value))
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// deepClone copies one node, threading a visited map so shared references
// and cycles clone to shared references and cycles.
func deepClone(rv reflect.Value, seen map[visit]reflect.Value) (reflect.Value, error) {
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return reflect.Zero(rv.Type()), nil
		}
		return reflect.Value{}, &CloneError{Type: rv.Type().String()}

	case reflect.Pointer:
		if rv.IsNil() {
			return reflect.Zero(rv.Type()), nil
		}
		key := visit{ptr: rv.Pointer(), typ: rv.Type()}
		if c, ok := seen[key]; ok {
			return c, nil
		}
		np := reflect.New(rv.Type().Elem())
		seen[key] = np
		elem, err := deepClone(rv.Elem(), seen)
		if err != nil {
			return reflect.Value{}, err
		}
		np.Elem().Set(elem)
		return np, nil

	case reflect.Map:
		if rv.IsNil() {
			return reflect.Zero(rv.Type()), nil
		}
		key := visit{ptr: rv.Pointer(), typ: rv.Type()}
		if c, ok := seen[key]; ok {
			return c, nil
		}
		nm := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		seen[key] = nm
		for _, k := range rv.MapKeys() {
			ck, err := deepClone(k, seen)
			if err != nil {
				return reflect.Value{}, err
			}
			cv, err := deepClone(rv.MapIndex(k), seen)
			if err != nil {
				return reflect.Value{}, err
			}
			nm.SetMapIndex(ck, cv)
		}
		return nm, nil

	case reflect.Slice:
		if rv.IsNil() {
			return reflect.Zero(rv.Type()), nil
		}
		ns := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cv, err := deepClone(rv.Index(i), seen)
			if err != nil {
				return reflect.Value{}, err
			}
			ns.Index(i).Set(cv)
		}
		return ns, nil

	case reflect.Array:
		na := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			cv, err := deepClone(rv.Index(i), seen)
			if err != nil {
				return reflect.Value{}, err
			}
			na.Index(i).Set(cv)
		}
		return na, nil

	case reflect.Interface:
		if rv.IsNil() {
			return reflect.Zero(rv.Type()), nil
		}
		elem, err := deepClone(rv.Elem(), seen)
		if err != nil {
			return reflect.Value{}, err
		}
		ni := reflect.New(rv.Type()).Elem()
		ni.Set(elem)
		return ni, nil

	case reflect.Struct:
		if isOpaque(rv.Type()) {
			return rv, nil
		}
		rt := rv.Type()
		nc := reflect.New(rt).Elem()
		// Whole-struct assignment carries unexported fields.
		nc.Set(rv)
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() || cloneByValue(sf.Type) {
				continue
			}
			cv, err := deepClone(rv.Field(i), seen)
			if err != nil {
				return reflect.Value{}, err
			}
			nc.Field(i).Set(cv)
		}
		return nc, nil

	default:
		// Scalars copy by value on assignment.
		return rv, nil
	}
}

// cloneByValue reports whether assignment alone yields an independent copy.
func cloneByValue(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Struct:
		return isOpaque(t)
	}
	return false
}
