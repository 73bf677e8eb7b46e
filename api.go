// Package veil redacts sensitive members from in-memory value graphs before
// serialization.
//
// The same entity types can back multiple API surfaces while hiding different
// members per surface: rules attached to members are evaluated against the
// calling context and an active named policy, and matched members are erased
// on a deep copy of the input. The original graph is never mutated.
//
// # Masking
//
// A mask pass clones the input, then recursively walks every reachable
// member. Sequences (slices, arrays, map values) are descended element-wise,
// scalar and opaque values are left alone, and each member of a composite is
// either redacted (when a rule matches) or recursed into:
//
//	masked, err := veil.MaskFor(caller, user, "public")
//
// A matched member is redacted terminally: the walker never descends into a
// value it has erased. Members the runtime cannot write (unexported fields)
// are skipped silently when matched.
//
// # Tag Syntax
//
// Rules are declared on struct fields via tags:
//
//	mask.erase:"{policies}"   - zero the member when the active policy is
//	                            listed; "*" matches every policy
//	mask.replace:"{literal}"  - substitute a fixed literal (string, []byte)
//	mask.partial:"{masker}"   - apply a named partial masker: email, last4,
//	                            fixed, null
//	mask.hash:"sha256"        - replace with a deterministic hex fingerprint
//
// Example:
//
//	type User struct {
//	    ID    string `json:"id"`
//	    Email string `json:"email" mask.partial:"email"`
//	    SSN   string `json:"ssn" mask.erase:"public,partner"`
//	    Notes string `json:"notes" mask.erase:"*"`
//	}
//
//	func (u User) Clone() User { return u }
//
// Rules that need the calling context or the owning type are registered
// programmatically:
//
//	veil.RuleFor[User]("SSN", veil.Rule{
//	    When: veil.AllOf(veil.PolicyIs("partner"), veil.EndpointIs("export")),
//	})
//
// # Owner Types
//
// Conditions receive the runtime type of the composite that owns the member
// at the current recursion depth, not the root type. Members promoted from
// embedded structs are evaluated with the outer type as owner, so
// veil.Owned[AdminView]() distinguishes the same member reached through
// different containers.
//
// # Policies
//
// The policy name selects which rule set is active for one pass. An empty
// name selects PolicyDefault. Masking without a caller is valid; conditions
// that require one simply never match.
//
// # Redactors
//
// Redactor binds the walker to a codec for the common mask-then-marshal path:
//
//	r, _ := veil.Use[User](json.New())
//	body, _ := r.Send(ctx, caller, user, "public")
//
// # Codec Providers
//
// The following codec implementations are available as submodules:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package veil
