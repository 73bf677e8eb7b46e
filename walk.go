package veil

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Mask returns a masked deep copy of data under the named policy. No caller
// is supplied, so conditions that require one never match. The original data
// is never mutated; a nil input is returned unchanged.
func Mask[T Cloner[T]](data T, policy string) (T, error) {
	return MaskFor(nil, data, policy)
}

// MaskFor masks a deep copy of data on behalf of caller under the named
// policy. The caller is forwarded unchanged to every rule condition.
func MaskFor[T Cloner[T]](caller *Caller, data T, policy string) (T, error) {
	if isAbsent(reflect.ValueOf(data)) {
		return data, nil
	}
	seedMetadata[T]()

	clone := data.Clone()
	if _, err := maskClone(context.Background(), &clone, caller, policy, builtinMaskers()); err != nil {
		var zero T
		return zero, err
	}
	return clone, nil
}

// MaskAny masks a graph whose static type is unknown: an interface value,
// a slice of entities, a map. The copy is produced by the reflective clone
// boundary, so ErrClone can surface here.
func MaskAny(caller *Caller, data any, policy string) (any, error) {
	clone, err := Clone(data)
	if err != nil {
		return nil, err
	}
	if clone == nil {
		return nil, nil
	}
	if _, err := maskClone(context.Background(), &clone, caller, policy, builtinMaskers()); err != nil {
		return nil, err
	}
	return clone, nil
}

// seedMetadata records T with sentinel so member tables for it resolve
// through the metadata cache. Nested and pointer-shaped types fall back to
// the manual scan in metadataFor.
func seedMetadata[T any]() {
	if reflect.TypeFor[T]().Kind() == reflect.Struct {
		_ = sentinel.Scan[T]()
	}
}

// maskClone runs one mask pass over a freshly cloned graph. target is a
// pointer to the clone; the clone is mutated in place. Returns the number of
// members redacted.
func maskClone(ctx context.Context, target any, caller *Caller, policy string, maskers map[MaskerName]Masker) (int, error) {
	policy = normalizePolicy(policy)
	rv := reflect.ValueOf(target).Elem()
	typeName := dynamicTypeName(rv)

	start := time.Now()
	emitMaskStart(ctx, typeName, policy)

	w := &walker{
		caller:  caller,
		policy:  policy,
		maskers: maskers,
		seen:    make(map[visit]struct{}),
	}

	var err error
	if sr, ok := selfRedactor(target); ok {
		err = sr.RedactFor(caller, policy)
	} else {
		err = w.run(rv)
	}

	emitMaskComplete(ctx, typeName, policy, time.Since(start), w.masked, err)
	return w.masked, err
}

// selfRedactor reports whether the clone handles its own redaction,
// checking the pointer to the clone and, for pointer-shaped graphs, the
// pointer held inside it.
func selfRedactor(target any) (SelfRedactor, bool) {
	if sr, ok := target.(SelfRedactor); ok {
		return sr, true
	}
	rv := reflect.ValueOf(target).Elem()
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		if sr, ok := rv.Interface().(SelfRedactor); ok {
			return sr, true
		}
	}
	return nil, false
}

// dynamicTypeName names the concrete type behind rv for signal payloads.
func dynamicTypeName(rv reflect.Value) string {
	if rv.Kind() == reflect.Interface && !rv.IsNil() {
		return rv.Elem().Type().String()
	}
	return rv.Type().String()
}

// isAbsent reports whether data is the absent value: masking it is a no-op.
func isAbsent(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// visit identifies a reference node for cycle tracking.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

// walker holds the per-pass state of one traversal. A walker is never shared
// between calls.
type walker struct {
	caller  *Caller
	policy  string
	maskers map[MaskerName]Masker
	masked  int
	seen    map[visit]struct{}
}

// run walks the clone, converting reflect-layer panics into ErrIntrospect.
func (w *walker) run(rv reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WalkError{Err: ErrIntrospect, Type: dynamicTypeName(rv), Cause: fmt.Errorf("%v", r)}
		}
	}()
	return w.walk(rv)
}

// walk classifies one node and dispatches: sequences descend element-wise,
// scalars and opaque values are left alone, composites go through their
// member table.
func (w *walker) walk(rv reflect.Value) error {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if !w.enter(rv) {
			return nil
		}
		return w.walk(rv.Elem())

	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		elem := rv.Elem()
		if elem.Kind() == reflect.Pointer {
			// Pointer targets stay addressable through the interface.
			return w.walk(elem)
		}
		if !rv.CanSet() {
			return nil
		}
		boxed := reflect.New(elem.Type()).Elem()
		boxed.Set(elem)
		if err := w.walk(boxed); err != nil {
			return err
		}
		rv.Set(boxed)
		return nil

	case reflect.Slice:
		if rv.IsNil() || isByteSlice(rv.Type()) {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := w.walk(rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Array:
		if isByteSlice(rv.Type()) {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := w.walk(rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if !w.enter(rv) {
			return nil
		}
		// Keys are identity, values are payload: only values are masked.
		for _, k := range rv.MapKeys() {
			v := rv.MapIndex(k)
			if !v.IsValid() || leafType(v.Type()) {
				continue
			}
			boxed := reflect.New(v.Type()).Elem()
			boxed.Set(v)
			if err := w.walk(boxed); err != nil {
				return err
			}
			rv.SetMapIndex(k, boxed)
		}
		return nil

	case reflect.Struct:
		if isOpaque(rv.Type()) {
			return nil
		}
		return w.walkStruct(rv)
	}

	// Scalar leaf.
	return nil
}

// walkStruct applies the member-masking algorithm to one composite: for each
// member, a matching rule redacts it terminally; otherwise the walker
// recurses into non-leaf values.
func (w *walker) walkStruct(rv reflect.Value) error {
	rt := rv.Type()
	tbl, err := tableFor(rt)
	if err != nil {
		return err
	}

	for i := range tbl.members {
		m := &tbl.members[i]
		fv, ok := memberValue(rv, m)
		if !ok {
			continue // nil embedded pointer on the access path
		}

		rule, matched := w.match(m, rt)
		if matched {
			if !m.settable || !fv.CanSet() {
				continue // read-only members keep their value
			}
			act := rule.action()
			if err := act.apply(fv, w.maskers); err != nil {
				return &WalkError{Err: ErrMask, Type: rt.String(), Member: m.name, Cause: err}
			}
			w.masked++
			continue // redacted members are never descended into
		}

		if m.leaf || !m.settable {
			continue
		}
		if err := w.walk(fv); err != nil {
			return err
		}
	}

	return nil
}

// match finds the first rule matching the member under this pass: tag rules
// first, then rules registered against the declaring type, then rules
// registered against the current owner.
func (w *walker) match(m *member, owner reflect.Type) (Rule, bool) {
	for _, r := range m.rules {
		if r.matches(w.caller, owner, w.policy) {
			return r, true
		}
	}
	for _, r := range registeredRules(m.declaredIn, m.name) {
		if r.matches(w.caller, owner, w.policy) {
			return r, true
		}
	}
	if m.declaredIn != owner {
		for _, r := range registeredRules(owner, m.name) {
			if r.matches(w.caller, owner, w.policy) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// enter records a reference node, returning false when it was already
// visited in this pass.
func (w *walker) enter(rv reflect.Value) bool {
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if _, ok := w.seen[key]; ok {
		return false
	}
	w.seen[key] = struct{}{}
	return true
}

// memberValue navigates a member's index path, dereferencing embedded
// pointers as needed.
func memberValue(rv reflect.Value, m *member) (reflect.Value, bool) {
	if len(m.ptrIndices) == 0 {
		return rv.FieldByIndex(m.index), true
	}

	ptrSet := make(map[int]bool, len(m.ptrIndices))
	for _, idx := range m.ptrIndices {
		ptrSet[idx] = true
	}

	current := rv
	for i, idx := range m.index {
		current = current.Field(idx)
		if ptrSet[i] {
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}
	return current, true
}
