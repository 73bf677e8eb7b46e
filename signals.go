package veil

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for masking events.
var (
	SignalRedactorCreated = capitan.NewSignal("veil.redactor.created", "Redactor instantiated")
	SignalMaskStart       = capitan.NewSignal("veil.mask.start", "Mask pass beginning")
	SignalMaskComplete    = capitan.NewSignal("veil.mask.complete", "Mask pass finished")
	SignalSendStart       = capitan.NewSignal("veil.send.start", "Send operation beginning")
	SignalSendComplete    = capitan.NewSignal("veil.send.complete", "Send operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyPolicy      = capitan.NewStringKey("policy")
	KeyContentType = capitan.NewStringKey("content_type")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyMaskedCount = capitan.NewIntKey("masked_count")
	KeyError       = capitan.NewErrorKey("error")
)

// emitRedactorCreated emits an event when a redactor is created.
func emitRedactorCreated(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalRedactorCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMaskStart emits an event when a mask pass begins.
func emitMaskStart(ctx context.Context, typeName, policy string) {
	capitan.Emit(ctx, SignalMaskStart,
		KeyTypeName.Field(typeName),
		KeyPolicy.Field(policy),
	)
}

// emitMaskComplete emits an event when a mask pass finishes.
func emitMaskComplete(ctx context.Context, typeName, policy string, duration time.Duration, masked int, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyPolicy.Field(policy),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMaskComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMaskComplete, fields...)
	}
}

// emitSendStart emits an event when send begins.
func emitSendStart(ctx context.Context, contentType, typeName, policy string) {
	capitan.Emit(ctx, SignalSendStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyPolicy.Field(policy),
	)
}

// emitSendComplete emits an event when send finishes.
func emitSendComplete(ctx context.Context, contentType, typeName, policy string, size int, duration time.Duration, masked int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyPolicy.Field(policy),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSendComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSendComplete, fields...)
	}
}
