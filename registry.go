package veil

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// --- member table cache ---

var (
	tables   = make(map[reflect.Type]*memberTable)
	tablesMu sync.RWMutex
)

// tableFor returns the cached member table for a struct type, building it on
// first use. Tables are immutable after construction.
func tableFor(rt reflect.Type) (*memberTable, error) {
	// Fast path: read-lock cache check
	tablesMu.RLock()
	if tbl, ok := tables[rt]; ok {
		tablesMu.RUnlock()
		return tbl, nil
	}
	tablesMu.RUnlock()

	tbl, err := buildTable(rt)
	if err != nil {
		return nil, err
	}

	tablesMu.Lock()
	defer tablesMu.Unlock()
	if cached, ok := tables[rt]; ok {
		return cached, nil
	}
	tables[rt] = tbl
	return tbl, nil
}

// --- rule registry ---

// ruleKey identifies a member by its declaring type and name.
type ruleKey struct {
	typ    reflect.Type
	member string
}

var (
	ruleRegistry   = make(map[ruleKey][]Rule)
	ruleRegistryMu sync.RWMutex
)

// RuleFor attaches rules to a member of T, consulted after the member's
// tag-declared rules, in registration order.
//
// T may be the type declaring the member or a type embedding it: the walker
// checks both the declaring type and the owner at the current depth, so
// RuleFor[Base]("F", ...) applies wherever F appears, while
// RuleFor[Outer]("F", ...) applies only when F is reached through Outer.
func RuleFor[T any](memberName string, rules ...Rule) error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a composite type", ErrUnknownMember, rt)
	}
	if !hasMember(rt, memberName) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownMember, rt.Name(), memberName)
	}

	key := ruleKey{typ: rt, member: memberName}
	ruleRegistryMu.Lock()
	defer ruleRegistryMu.Unlock()
	ruleRegistry[key] = append(ruleRegistry[key], rules...)
	return nil
}

// hasMember reports whether rt declares or promotes a field, exported or not.
func hasMember(rt reflect.Type, name string) bool {
	if _, ok := rt.FieldByName(name); ok {
		return true
	}
	// FieldByName skips unexported promoted fields; check direct ones.
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).Name == name {
			return true
		}
	}
	return false
}

// registeredRules returns rules registered for (typ, member), if any.
func registeredRules(typ reflect.Type, memberName string) []Rule {
	ruleRegistryMu.RLock()
	defer ruleRegistryMu.RUnlock()
	return ruleRegistry[ruleKey{typ: typ, member: memberName}]
}

// --- opaque type registry ---

var timeType = reflect.TypeFor[time.Time]()

var (
	opaqueTypes = map[reflect.Type]bool{timeType: true}
	opaqueMu    sync.RWMutex
)

// Opaque marks T as a leaf: the walker treats values of T as scalars,
// neither masking inside them nor descending. time.Time is opaque builtin.
func Opaque[T any]() {
	rt := reflect.TypeFor[T]()
	opaqueMu.Lock()
	defer opaqueMu.Unlock()
	opaqueTypes[rt] = true
}

// isOpaque reports whether rt belongs to the closed set of system types not
// subject to masking.
func isOpaque(rt reflect.Type) bool {
	opaqueMu.RLock()
	defer opaqueMu.RUnlock()
	return opaqueTypes[rt]
}

// --- redactor cache ---

// registryKey combines type and codec for cache lookup.
type registryKey struct {
	typ         reflect.Type
	contentType string
}

var (
	redactors   = make(map[registryKey]any)
	redactorsMu sync.RWMutex
)

// Use returns a cached redactor or builds a new one.
// The redactor is cached by type and codec content type.
// T must implement Cloner[T].
func Use[T Cloner[T]](codec Codec, opts ...RedactorOption) (*Redactor[T], error) {
	typ := reflect.TypeFor[T]()
	key := registryKey{typ: typ, contentType: codec.ContentType()}

	// Fast path: read-lock cache check
	redactorsMu.RLock()
	if cached, ok := redactors[key]; ok {
		redactorsMu.RUnlock()
		return cached.(*Redactor[T]), nil
	}
	redactorsMu.RUnlock()

	// Slow path: build and cache with write-lock
	redactorsMu.Lock()
	defer redactorsMu.Unlock()

	// Double-check pattern
	if cached, ok := redactors[key]; ok {
		return cached.(*Redactor[T]), nil
	}

	r, err := NewRedactor[T](codec, opts...)
	if err != nil {
		return nil, err
	}

	redactors[key] = r
	return r, nil
}

// Reset clears the redactor cache, the rule registry, the member table cache,
// and extensions to the opaque type set.
// This is primarily useful for test isolation.
func Reset() {
	redactorsMu.Lock()
	redactors = make(map[registryKey]any)
	redactorsMu.Unlock()

	ruleRegistryMu.Lock()
	ruleRegistry = make(map[ruleKey][]Rule)
	ruleRegistryMu.Unlock()

	tablesMu.Lock()
	tables = make(map[reflect.Type]*memberTable)
	tablesMu.Unlock()

	opaqueMu.Lock()
	opaqueTypes = map[reflect.Type]bool{timeType: true}
	opaqueMu.Unlock()
}
