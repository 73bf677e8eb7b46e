package veil

import (
	"errors"
	"testing"
)

func TestCloneError(t *testing.T) {
	err := &CloneError{Type: "chan int"}

	if !errors.Is(err, ErrClone) {
		t.Error("CloneError should match ErrClone")
	}
	want := "clone failed: chan int cannot be copied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWalkError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *WalkError
		want string
	}{
		{
			name: "member and cause",
			err:  &WalkError{Err: ErrMask, Type: "User", Member: "Email", Cause: cause},
			want: "mask failed: User.Email: boom",
		},
		{
			name: "member only",
			err:  &WalkError{Err: ErrMask, Type: "User", Member: "Email"},
			want: "mask failed: User.Email",
		},
		{
			name: "cause only",
			err:  &WalkError{Err: ErrIntrospect, Type: "User", Cause: cause},
			want: "introspection failed: User: boom",
		},
		{
			name: "type only",
			err:  &WalkError{Err: ErrIntrospect, Type: "User"},
			want: "introspection failed: User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("WalkError should match its sentinel")
			}
			if tt.err.Cause != nil && !errors.Is(tt.err, cause) {
				t.Error("WalkError should match its cause")
			}
		})
	}
}

func TestCodecError(t *testing.T) {
	cause := errors.New("bad value")
	err := newCodecError(ErrMarshal, cause)

	if !errors.Is(err, ErrMarshal) {
		t.Error("CodecError should match ErrMarshal")
	}
	if !errors.Is(err, cause) {
		t.Error("CodecError should match its cause")
	}
	want := "marshal failed: bad value"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{ErrClone, ErrIntrospect, ErrMask, ErrMissingMasker, ErrInvalidTag, ErrUnknownMember, ErrMarshal}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}
