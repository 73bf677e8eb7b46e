package veil

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Redactor binds the mask walker to a codec for one type, for the common
// mask-then-marshal path at an API boundary.
//
// Redactors are safe for concurrent use. SetMasker may be called at any time
// to swap a masker implementation.
//
// Tag validation runs at construction: a redactor is only returned when the
// type's mask tags parse and every mask.partial tag resolves to a registered
// masker.
type Redactor[T Cloner[T]] struct {
	codec Codec

	// Mutable configuration protected by mu
	mu      sync.RWMutex
	maskers map[MaskerName]Masker

	defaultPolicy string
	typeName      string
}

// redactorConfig collects option state before construction.
type redactorConfig struct {
	maskers       map[MaskerName]Masker
	defaultPolicy string
}

// RedactorOption configures a Redactor at construction.
type RedactorOption func(*redactorConfig)

// WithMasker registers or overrides a partial masker implementation.
func WithMasker(name MaskerName, m Masker) RedactorOption {
	return func(cfg *redactorConfig) {
		cfg.maskers[name] = m
	}
}

// WithDefaultPolicy sets the policy used when a call passes an empty policy
// name. The builtin default is PolicyDefault.
func WithDefaultPolicy(policy string) RedactorOption {
	return func(cfg *redactorConfig) {
		cfg.defaultPolicy = normalizePolicy(policy)
	}
}

// NewRedactor creates a Redactor for type T.
//
// The redactor is created with the builtin maskers; use WithMasker to add or
// override implementations.
func NewRedactor[T Cloner[T]](codec Codec, opts ...RedactorOption) (*Redactor[T], error) {
	seedMetadata[T]()

	rt := reflect.TypeFor[T]()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	cfg := redactorConfig{
		maskers:       builtinMaskers(),
		defaultPolicy: PolicyDefault,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Redactor[T]{
		codec:         codec,
		maskers:       cfg.maskers,
		defaultPolicy: cfg.defaultPolicy,
		typeName:      rt.String(),
	}

	if rt.Kind() == reflect.Struct {
		tbl, err := tableFor(rt) // surfaces ErrInvalidTag at startup
		if err != nil {
			return nil, err
		}
		if err := r.validate(tbl); err != nil {
			return nil, err
		}
	}

	emitRedactorCreated(context.Background(), codec.ContentType(), r.typeName)
	return r, nil
}

// validate ensures every mask.partial tag on T resolves to a masker.
func (r *Redactor[T]) validate(tbl *memberTable) error {
	for i := range tbl.members {
		m := &tbl.members[i]
		for _, rule := range m.rules {
			pa, ok := rule.Action.(partialAction)
			if !ok {
				continue
			}
			if _, ok := r.maskers[pa.masker]; !ok {
				return fmt.Errorf("%w: %q (member %s)", ErrMissingMasker, pa.masker, m.name)
			}
		}
	}
	return nil
}

// SetMasker registers a masker for the given name.
// Returns the redactor for chaining. Safe for concurrent use.
func (r *Redactor[T]) SetMasker(name MaskerName, m Masker) *Redactor[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maskers[name] = m
	return r
}

// Mask returns a masked deep copy of data on behalf of caller. An empty
// policy selects the redactor's default policy. The original is untouched.
func (r *Redactor[T]) Mask(ctx context.Context, caller *Caller, data T, policy string) (T, error) {
	if policy == "" {
		policy = r.defaultPolicy
	}
	if isAbsent(reflect.ValueOf(data)) {
		return data, nil
	}

	clone := data.Clone()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, err := maskClone(ctx, &clone, caller, policy, r.maskers); err != nil {
		var zero T
		return zero, err
	}
	return clone, nil
}

// Send masks a deep copy of data and marshals the result.
// Use for data going to external destinations (API responses, events).
func (r *Redactor[T]) Send(ctx context.Context, caller *Caller, data T, policy string) ([]byte, error) {
	if policy == "" {
		policy = r.defaultPolicy
	}

	start := time.Now()
	emitSendStart(ctx, r.codec.ContentType(), r.typeName, policy)

	var retErr error
	var retData []byte
	var masked int
	defer func() {
		emitSendComplete(ctx, r.codec.ContentType(), r.typeName, policy,
			len(retData), time.Since(start), masked, retErr)
	}()

	if isAbsent(reflect.ValueOf(data)) {
		retData, retErr = r.codec.Marshal(nil)
		if retErr != nil {
			retErr = newCodecError(ErrMarshal, retErr)
		}
		return retData, retErr
	}

	clone := data.Clone()

	r.mu.RLock()
	masked, retErr = maskClone(ctx, &clone, caller, policy, r.maskers)
	r.mu.RUnlock()
	if retErr != nil {
		return nil, retErr
	}

	retData, retErr = r.codec.Marshal(&clone)
	if retErr != nil {
		retErr = newCodecError(ErrMarshal, retErr)
		return nil, retErr
	}
	return retData, nil
}
