package veil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
)

// PolicyDefault is the policy selected when a pass is run with an empty
// policy name. Tag rule sets may name it explicitly: mask.erase:"default".
const PolicyDefault = "default"

// normalizePolicy maps the absent policy name onto PolicyDefault.
func normalizePolicy(policy string) string {
	if policy == "" {
		return PolicyDefault
	}
	return policy
}

// Condition is a pure predicate over one member evaluation: the calling
// context (possibly nil), the runtime type of the composite owning the
// member at the current depth, and the active policy name.
type Condition func(caller *Caller, owner reflect.Type, policy string) bool

// Rule is a condition-action pair attached to a member. A member with at
// least one matching rule is redacted; redaction is terminal for the member
// in that pass.
type Rule struct {
	// When guards the rule. A nil condition always matches.
	When Condition

	// Action applied when the rule matches. Nil means Erase.
	Action Action
}

func (r Rule) matches(caller *Caller, owner reflect.Type, policy string) bool {
	return r.When == nil || r.When(caller, owner, policy)
}

func (r Rule) action() Action {
	if r.Action == nil {
		return Erase
	}
	return r.Action
}

// PolicyIs matches when the active policy is one of names.
func PolicyIs(names ...string) Condition {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[normalizePolicy(n)] = true
	}
	return func(_ *Caller, _ reflect.Type, policy string) bool {
		return set[policy]
	}
}

// EndpointIs matches when the caller's endpoint is one of names.
// It never matches without a caller.
func EndpointIs(names ...string) Condition {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(caller *Caller, _ reflect.Type, _ string) bool {
		return caller != nil && set[caller.Endpoint]
	}
}

// Owned matches when the member is reached through a composite of type T.
// Promoted members are owned by the outer type, so Owned distinguishes the
// container a shared member is reached through.
func Owned[T any]() Condition {
	want := reflect.TypeFor[T]()
	return func(_ *Caller, owner reflect.Type, _ string) bool {
		return owner == want
	}
}

// CallerSatisfies adapts an arbitrary caller predicate.
// It never matches without a caller.
func CallerSatisfies(fn func(*Caller) bool) Condition {
	return func(caller *Caller, _ reflect.Type, _ string) bool {
		return caller != nil && fn(caller)
	}
}

// AllOf matches when every condition matches.
func AllOf(conds ...Condition) Condition {
	return func(caller *Caller, owner reflect.Type, policy string) bool {
		for _, c := range conds {
			if c != nil && !c(caller, owner, policy) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one condition matches.
func AnyOf(conds ...Condition) Condition {
	return func(caller *Caller, owner reflect.Type, policy string) bool {
		for _, c := range conds {
			if c == nil || c(caller, owner, policy) {
				return true
			}
		}
		return false
	}
}

// Not inverts a condition.
func Not(cond Condition) Condition {
	return func(caller *Caller, owner reflect.Type, policy string) bool {
		return cond == nil || !cond(caller, owner, policy)
	}
}

// Action mutates a matched member's value in place on the clone. Members the
// walker cannot write are skipped before the action runs.
type Action interface {
	// apply mutates fv. maskers resolves Partial actions.
	apply(fv reflect.Value, maskers map[MaskerName]Masker) error

	// name identifies the action in errors.
	name() string
}

type eraseAction struct{}

// Erase zeroes the member, the "absent" representation for its type.
var Erase Action = eraseAction{}

func (eraseAction) name() string { return "erase" }

func (eraseAction) apply(fv reflect.Value, _ map[MaskerName]Masker) error {
	fv.Set(reflect.Zero(fv.Type()))
	return nil
}

// replaceAction substitutes a fixed literal.
type replaceAction struct {
	value string
}

// Replace returns an action substituting a fixed literal for string and
// []byte members. Members of any other type are erased.
func Replace(value string) Action {
	return replaceAction{value: value}
}

func (a replaceAction) name() string { return "replace" }

func (a replaceAction) apply(fv reflect.Value, _ map[MaskerName]Masker) error {
	switch {
	case fv.Kind() == reflect.String:
		fv.SetString(a.value)
	case isByteSlice(fv.Type()):
		fv.SetBytes([]byte(a.value))
	default:
		fv.Set(reflect.Zero(fv.Type()))
	}
	return nil
}

// partialAction applies a named partial masker.
type partialAction struct {
	masker MaskerName
}

// Partial returns an action applying the named partial masker to string and
// []byte members. Members of any other type are erased.
func Partial(masker MaskerName) Action {
	return partialAction{masker: masker}
}

func (a partialAction) name() string { return "partial" }

func (a partialAction) apply(fv reflect.Value, maskers map[MaskerName]Masker) error {
	m, ok := maskers[a.masker]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingMasker, a.masker)
	}
	switch {
	case fv.Kind() == reflect.String:
		masked, err := m.Mask(fv.String())
		if err != nil {
			return err
		}
		fv.SetString(masked)
	case isByteSlice(fv.Type()):
		masked, err := m.Mask(string(fv.Bytes()))
		if err != nil {
			return err
		}
		fv.SetBytes([]byte(masked))
	default:
		fv.Set(reflect.Zero(fv.Type()))
	}
	return nil
}

// fingerprintAction replaces the value with a deterministic digest.
type fingerprintAction struct{}

// Fingerprint returns an action replacing string and []byte members with the
// hex-encoded SHA-256 of their content, so equal inputs remain correlatable
// after redaction. Members of any other type are erased.
func Fingerprint() Action {
	return fingerprintAction{}
}

func (fingerprintAction) name() string { return "fingerprint" }

func (fingerprintAction) apply(fv reflect.Value, _ map[MaskerName]Masker) error {
	switch {
	case fv.Kind() == reflect.String:
		sum := sha256.Sum256([]byte(fv.String()))
		fv.SetString(hex.EncodeToString(sum[:]))
	case isByteSlice(fv.Type()):
		sum := sha256.Sum256(fv.Bytes())
		fv.SetBytes([]byte(hex.EncodeToString(sum[:])))
	default:
		fv.Set(reflect.Zero(fv.Type()))
	}
	return nil
}

// isByteSlice reports whether t is []byte (or a named []byte type).
func isByteSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}
