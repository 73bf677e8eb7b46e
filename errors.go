package veil

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrClone indicates a node in the value graph cannot be duplicated
	// independently. Masking does not proceed on partial clones.
	ErrClone = errors.New("clone failed")

	// ErrIntrospect indicates a member could not be read or written during
	// the walk. The whole mask call aborts.
	ErrIntrospect = errors.New("introspection failed")

	// ErrMask indicates a rule action failed on a matched member.
	ErrMask = errors.New("mask failed")

	// ErrMissingMasker indicates a mask.partial tag names a masker that is
	// not registered.
	ErrMissingMasker = errors.New("missing masker")

	// ErrInvalidTag indicates a mask tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnknownMember indicates a rule was registered for a member the
	// target type does not declare.
	ErrUnknownMember = errors.New("unknown member")

	// ErrMarshal indicates the codec failed to marshal masked output.
	ErrMarshal = errors.New("marshal failed")
)

// CloneError reports the node type that could not be copied.
type CloneError struct {
	Type string // type of the uncloneable node
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("%s: %s cannot be copied", ErrClone.Error(), e.Type)
}

func (e *CloneError) Unwrap() error {
	return ErrClone
}

// WalkError reports a failure while masking one node of the clone.
// It wraps a sentinel error with context about the composite type and member.
type WalkError struct {
	Err    error  // underlying sentinel error (ErrIntrospect, ErrMask)
	Type   string // composite type being walked
	Member string // member that failed, if known
	Cause  error  // original error from the failing operation
}

func (e *WalkError) Error() string {
	switch {
	case e.Member != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s.%s: %v", e.Err.Error(), e.Type, e.Member, e.Cause)
	case e.Member != "":
		return fmt.Sprintf("%s: %s.%s", e.Err.Error(), e.Type, e.Member)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Err.Error(), e.Type, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Type)
	}
}

func (e *WalkError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// CodecError represents a marshal error downstream of a mask pass.
type CodecError struct {
	Err   error // underlying sentinel error (ErrMarshal)
	Cause error // original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newCodecError creates a CodecError for marshal failures.
func newCodecError(sentinel, cause error) error {
	return &CodecError{Err: sentinel, Cause: cause}
}
