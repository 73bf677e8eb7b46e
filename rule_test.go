package veil

import (
	"errors"
	"reflect"
	"testing"
)

type ownerA struct{}
type ownerB struct{}

func TestNormalizePolicy(t *testing.T) {
	if got := normalizePolicy(""); got != PolicyDefault {
		t.Errorf("normalizePolicy(%q) = %q, want %q", "", got, PolicyDefault)
	}
	if got := normalizePolicy("public"); got != "public" {
		t.Errorf("normalizePolicy(%q) = %q, want %q", "public", got, "public")
	}
}

func TestPolicyIs(t *testing.T) {
	cond := PolicyIs("public", "partner")

	if !cond(nil, nil, "public") {
		t.Error("PolicyIs should match a listed policy")
	}
	if !cond(nil, nil, "partner") {
		t.Error("PolicyIs should match every listed policy")
	}
	if cond(nil, nil, "internal") {
		t.Error("PolicyIs should not match an unlisted policy")
	}

	// An empty name in the list normalizes to the default policy.
	if !PolicyIs("")(nil, nil, PolicyDefault) {
		t.Error("PolicyIs(\"\") should match the default policy")
	}
}

func TestEndpointIs(t *testing.T) {
	cond := EndpointIs("public.users.get")

	if cond(nil, nil, "default") {
		t.Error("EndpointIs should never match without a caller")
	}
	if !cond(&Caller{Endpoint: "public.users.get"}, nil, "default") {
		t.Error("EndpointIs should match the caller's endpoint")
	}
	if cond(&Caller{Endpoint: "admin.users.get"}, nil, "default") {
		t.Error("EndpointIs should not match a different endpoint")
	}
}

func TestOwned(t *testing.T) {
	cond := Owned[ownerA]()

	if !cond(nil, reflect.TypeFor[ownerA](), "default") {
		t.Error("Owned should match its type parameter")
	}
	if cond(nil, reflect.TypeFor[ownerB](), "default") {
		t.Error("Owned should not match a different owner")
	}
	if cond(nil, nil, "default") {
		t.Error("Owned should not match a nil owner")
	}
}

func TestCallerSatisfies(t *testing.T) {
	cond := CallerSatisfies(func(c *Caller) bool {
		return c.Attr("role") == "admin"
	})

	if cond(nil, nil, "default") {
		t.Error("CallerSatisfies should never match without a caller")
	}

	admin := &Caller{Attrs: map[string]string{"role": "admin"}}
	if !cond(admin, nil, "default") {
		t.Error("CallerSatisfies should match a satisfying caller")
	}
	if cond(&Caller{}, nil, "default") {
		t.Error("CallerSatisfies should not match a non-satisfying caller")
	}
}

func TestCombinators(t *testing.T) {
	yes := Condition(func(*Caller, reflect.Type, string) bool { return true })
	no := Condition(func(*Caller, reflect.Type, string) bool { return false })

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"AllOf empty", AllOf(), true},
		{"AllOf all true", AllOf(yes, yes), true},
		{"AllOf one false", AllOf(yes, no), false},
		{"AllOf nil member", AllOf(nil, yes), true},
		{"AnyOf empty", AnyOf(), false},
		{"AnyOf one true", AnyOf(no, yes), true},
		{"AnyOf all false", AnyOf(no, no), false},
		{"AnyOf nil member", AnyOf(nil), true},
		{"Not true", Not(yes), false},
		{"Not false", Not(no), true},
		{"Not nil", Not(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond(nil, nil, "default"); got != tt.want {
				t.Errorf("condition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRule_Defaults(t *testing.T) {
	r := Rule{}

	if !r.matches(nil, nil, "anything") {
		t.Error("a rule with no condition should always match")
	}
	if r.action() != Erase {
		t.Error("a rule with no action should erase")
	}
}

// actionTarget provides addressable fields for action tests.
type actionTarget struct {
	S string
	B []byte
	N int
}

func newActionTarget() reflect.Value {
	v := &actionTarget{S: "secret", B: []byte("secret"), N: 7}
	return reflect.ValueOf(v).Elem()
}

func TestErase(t *testing.T) {
	rv := newActionTarget()

	for i := 0; i < rv.NumField(); i++ {
		if err := Erase.apply(rv.Field(i), nil); err != nil {
			t.Fatalf("Erase.apply() error: %v", err)
		}
		if !rv.Field(i).IsZero() {
			t.Errorf("field %d = %v, want zero value", i, rv.Field(i))
		}
	}
}

func TestReplace(t *testing.T) {
	rv := newActionTarget()
	act := Replace("[hidden]")

	if err := act.apply(rv.Field(0), nil); err != nil {
		t.Fatalf("Replace.apply() error: %v", err)
	}
	if got := rv.Field(0).String(); got != "[hidden]" {
		t.Errorf("string field = %q, want %q", got, "[hidden]")
	}

	if err := act.apply(rv.Field(1), nil); err != nil {
		t.Fatalf("Replace.apply() error: %v", err)
	}
	if got := string(rv.Field(1).Bytes()); got != "[hidden]" {
		t.Errorf("byte field = %q, want %q", got, "[hidden]")
	}

	// Non-text members fall back to erase.
	if err := act.apply(rv.Field(2), nil); err != nil {
		t.Fatalf("Replace.apply() error: %v", err)
	}
	if got := rv.Field(2).Int(); got != 0 {
		t.Errorf("int field = %d, want 0", got)
	}
}

func TestPartial(t *testing.T) {
	rv := newActionTarget()
	maskers := builtinMaskers()

	if err := Partial(MaskerLast4).apply(rv.Field(0), maskers); err != nil {
		t.Fatalf("Partial.apply() error: %v", err)
	}
	if got := rv.Field(0).String(); got != "**cret" {
		t.Errorf("string field = %q, want %q", got, "**cret")
	}

	if err := Partial(MaskerFixed).apply(rv.Field(1), maskers); err != nil {
		t.Fatalf("Partial.apply() error: %v", err)
	}
	if got := string(rv.Field(1).Bytes()); got != "********" {
		t.Errorf("byte field = %q, want %q", got, "********")
	}
}

func TestPartial_MissingMasker(t *testing.T) {
	rv := newActionTarget()

	err := Partial("bogus").apply(rv.Field(0), builtinMaskers())
	if !errors.Is(err, ErrMissingMasker) {
		t.Errorf("error = %v, want ErrMissingMasker", err)
	}
}

func TestFingerprint(t *testing.T) {
	rv := newActionTarget()
	const digest = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

	if err := Fingerprint().apply(rv.Field(0), nil); err != nil {
		t.Fatalf("Fingerprint.apply() error: %v", err)
	}
	if got := rv.Field(0).String(); got != digest {
		t.Errorf("string field = %q, want %q", got, digest)
	}

	if err := Fingerprint().apply(rv.Field(1), nil); err != nil {
		t.Fatalf("Fingerprint.apply() error: %v", err)
	}
	if got := string(rv.Field(1).Bytes()); got != digest {
		t.Errorf("byte field = %q, want %q", got, digest)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	rvA := newActionTarget()
	rvB := newActionTarget()

	if err := Fingerprint().apply(rvA.Field(0), nil); err != nil {
		t.Fatalf("Fingerprint.apply() error: %v", err)
	}
	if err := Fingerprint().apply(rvB.Field(0), nil); err != nil {
		t.Fatalf("Fingerprint.apply() error: %v", err)
	}
	if rvA.Field(0).String() != rvB.Field(0).String() {
		t.Errorf("equal inputs should fingerprint equal: %q != %q",
			rvA.Field(0).String(), rvB.Field(0).String())
	}
}
