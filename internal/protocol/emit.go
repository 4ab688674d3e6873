package protocol

import (
	"context"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// Emitter publishes non-terminal progress for the request being served.
type Emitter func(env message.Envelope)

type emitterKey struct{}

// WithEmitter returns a context that delivers progress to emit.
func WithEmitter(ctx context.Context, emit Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emit)
}

// EmitterFrom returns the emitter attached to ctx, if any.
func EmitterFrom(ctx context.Context) (Emitter, bool) {
	emit, ok := ctx.Value(emitterKey{}).(Emitter)

	return emit, ok && emit != nil
}

// Emit publishes an incremental content delta. It is a no-op when nobody
// is streaming the request.
func Emit(ctx context.Context, delta string) {
	emit, ok := EmitterFrom(ctx)
	if !ok {
		return
	}

	emit(message.NewStreamDelta(requestIDFrom(ctx), delta))
}

// Signal publishes an out-of-band system message. It is a no-op when nobody
// is streaming the request.
func Signal(ctx context.Context, action string, payload map[string]any) {
	emit, ok := EmitterFrom(ctx)
	if !ok {
		return
	}

	emit(message.NewSystem(action, payload))
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}
