package veil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register mask tags with sentinel
	sentinel.Tag("mask.erase")
	sentinel.Tag("mask.replace")
	sentinel.Tag("mask.partial")
	sentinel.Tag("mask.hash")
}

// maskTags lists the tags the engine extracts from struct fields.
var maskTags = []string{
	"mask.erase",
	"mask.replace",
	"mask.partial",
	"mask.hash",
}

// member describes one slot of a composite type's member table.
type member struct {
	name       string       // field name; promoted fields keep their own name
	index      []int        // reflect field index path from the owner
	ptrIndices []int        // positions in index crossing an embedded pointer
	typ        reflect.Type // declared type
	declaredIn reflect.Type // struct type that syntactically declares the field
	settable   bool         // exported; unexported members are read-only
	leaf       bool         // declared type is scalar/opaque: never descended
	rules      []Rule       // tag-declared rules, in declaration order
}

// memberTable is the compile-time-known member list for one composite type,
// built once and reused across all traversals.
type memberTable struct {
	typ     reflect.Type
	members []member
}

// buildTable constructs the member table for a struct type. Anonymous
// (embedded) struct fields are flattened so promoted members are evaluated
// against the outer type as owner; named nested structs are left to the
// walker's recursion.
func buildTable(rt reflect.Type) (*memberTable, error) {
	tbl := &memberTable{typ: rt}
	if err := collectMembers(tbl, rt, nil, nil, make(map[string]bool)); err != nil {
		return nil, err
	}
	return tbl, nil
}

// collectMembers appends rt's members to tbl. parentIndex and ptrIndices
// carry the access path accumulated through embedded structs.
func collectMembers(tbl *memberTable, rt reflect.Type, parentIndex, ptrIndices []int, seen map[string]bool) error {
	meta := metadataFor(rt)

	// Direct fields first so they shadow same-named promoted fields,
	// matching Go's name resolution.
	var embedded []sentinel.FieldMetadata
	for _, f := range meta.Fields {
		sf := rt.FieldByIndex(f.Index)
		if sf.Anonymous && embeddedStructType(sf.Type) != nil {
			embedded = append(embedded, f)
			continue
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true

		rules, err := rulesFromTags(rt, f.Name, f.Tags)
		if err != nil {
			return err
		}
		tbl.members = append(tbl.members, member{
			name:       f.Name,
			index:      joinIndex(parentIndex, f.Index),
			ptrIndices: ptrIndices,
			typ:        sf.Type,
			declaredIn: rt,
			settable:   true,
			leaf:       leafType(sf.Type),
			rules:      rules,
		})
	}

	// Unexported members are visible to rules but never written or
	// descended into.
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.IsExported() || seen[sf.Name] {
			continue
		}
		seen[sf.Name] = true

		rules, err := rulesFromTags(rt, sf.Name, extractTags(sf.Tag))
		if err != nil {
			return err
		}
		tbl.members = append(tbl.members, member{
			name:       sf.Name,
			index:      joinIndex(parentIndex, sf.Index),
			ptrIndices: ptrIndices,
			typ:        sf.Type,
			declaredIn: rt,
			settable:   false,
			leaf:       true,
			rules:      rules,
		})
	}

	for _, f := range embedded {
		sf := rt.FieldByIndex(f.Index)
		et := embeddedStructType(sf.Type)
		fullIndex := joinIndex(parentIndex, f.Index)
		pi := ptrIndices
		if sf.Type.Kind() == reflect.Pointer {
			pi = append(joinIndex(ptrIndices, nil), len(fullIndex)-1)
		}
		if err := collectMembers(tbl, et, fullIndex, pi, seen); err != nil {
			return err
		}
	}

	return nil
}

// embeddedStructType returns the struct type behind an embedded field, or
// nil when the field should be treated as a regular member.
func embeddedStructType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && !isOpaque(t) {
		return t
	}
	return nil
}

// joinIndex concatenates two index paths into a fresh slice.
func joinIndex(parent, child []int) []int {
	out := make([]int, 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}

// metadataFor resolves type metadata through sentinel, falling back to a
// manual scan for types sentinel has not seen.
func metadataFor(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        extractTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Pointer:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// extractTags pulls mask tags from a raw struct tag.
func extractTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, name := range maskTags {
		if val, ok := tag.Lookup(name); ok {
			tags[name] = val
		}
	}
	return tags
}

// rulesFromTags converts a member's mask tags into rules, in tag-declaration
// order: erase, replace, partial, hash.
func rulesFromTags(owner reflect.Type, field string, tags map[string]string) ([]Rule, error) {
	var rules []Rule

	if val, ok := tags["mask.erase"]; ok {
		cond, err := policyCondition(val)
		if err != nil {
			return nil, fmt.Errorf("%w: mask.erase=%q on %s.%s", ErrInvalidTag, val, owner.Name(), field)
		}
		rules = append(rules, Rule{When: cond, Action: Erase})
	}

	if val, ok := tags["mask.replace"]; ok {
		// Replace literals are arbitrary strings, no validation needed
		rules = append(rules, Rule{Action: Replace(val)})
	}

	if val, ok := tags["mask.partial"]; ok {
		if !IsValidMaskerName(MaskerName(val)) {
			return nil, fmt.Errorf("%w: unknown masker %q on %s.%s", ErrInvalidTag, val, owner.Name(), field)
		}
		rules = append(rules, Rule{Action: Partial(MaskerName(val))})
	}

	if val, ok := tags["mask.hash"]; ok {
		if val != "sha256" {
			return nil, fmt.Errorf("%w: unknown hash %q on %s.%s", ErrInvalidTag, val, owner.Name(), field)
		}
		rules = append(rules, Rule{Action: Fingerprint()})
	}

	return rules, nil
}

// policyCondition parses a mask.erase tag value: a comma-separated policy
// list, or "*" for every policy.
func policyCondition(val string) (Condition, error) {
	if val == "" {
		return nil, fmt.Errorf("empty policy list")
	}
	if val == "*" {
		return nil, nil // nil condition always matches
	}
	names := strings.Split(val, ",")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
		if names[i] == "" {
			return nil, fmt.Errorf("empty policy name")
		}
	}
	return PolicyIs(names...), nil
}

// leafType reports whether a declared type is scalar/opaque: a value the
// walker never descends into.
func leafType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Struct:
		return isOpaque(t)
	case reflect.Pointer:
		return leafType(t.Elem())
	}
	return false
}
