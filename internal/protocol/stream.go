package protocol

import (
	"context"
	"iter"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// streamBuffer bounds how far a handler may run ahead of a slow consumer.
const streamBuffer = 32

// Stream routes a request like Dispatch and yields its progress.
//
// Deltas and system messages published by the handler through Emit and
// Signal are yielded in emission order, followed by exactly one terminal
// envelope: a completed StreamMessage carrying the response content, or the
// ErrorMessage. Server replies pass through unchanged as the terminal
// envelope.
//
// When the response reports Usage, a SystemMessage with action "usage" is
// yielded just before the terminal chunk. The terminal chunk carries only
// the response's first tool call. Terminal envelopes published through the
// emitter are dropped; only the routed result ends a stream.
//
// Breaking out of the loop cancels the context passed to the handler.
func (c *Controller) Stream(ctx context.Context, req *message.Request) iter.Seq[message.Envelope] {
	return func(yield func(message.Envelope) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		events := make(chan message.Envelope, streamBuffer)
		terminal := make(chan message.Envelope, 1)

		emitCtx := WithEmitter(ctx, func(env message.Envelope) {
			if message.IsTerminal(env) {
				c.log.Warn("Dropping terminal envelope emitted by handler", "envelope_type", env.Type())

				return
			}

			select {
			case events <- env:
			case <-ctx.Done():
			}
		})

		if req != nil {
			emitCtx = withRequestID(emitCtx, req.ID)
		}

		go func() {
			terminal <- c.Dispatch(emitCtx, req)
		}()

		for {
			select {
			case env := <-events:
				if !yield(env) {
					return
				}
			case env := <-terminal:
				// Handlers emit synchronously, so everything they published
				// is already buffered by the time Dispatch returns.
			drain:
				for {
					select {
					case pending := <-events:
						if !yield(pending) {
							return
						}
					default:
						break drain
					}
				}

				if usage := usageSignal(env); usage != nil {
					if !yield(usage) {
						return
					}
				}

				yield(toTerminal(env))

				return
			}
		}
	}
}

// toTerminal converts a Dispatch result into the final stream envelope.
func toTerminal(env message.Envelope) message.Envelope {
	resp, ok := env.(*message.Response)
	if !ok {
		return env
	}

	final := message.NewStreamComplete(resp.ID, resp.Content)
	if len(resp.ToolCalls) > 0 {
		call := resp.ToolCalls[0]
		final.ToolCall = &call
	}

	return final
}

// ActionUsage is the system action carrying a streamed response's token usage.
const ActionUsage = "usage"

// usageSignal reports a response's Usage as a SystemMessage, or nil when there is none.
func usageSignal(env message.Envelope) *message.SystemMessage {
	resp, ok := env.(*message.Response)
	if !ok || resp.Usage == nil {
		return nil
	}

	return message.NewSystem(ActionUsage, map[string]any{
		"requestId":        resp.ID,
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
		"totalTokens":      resp.Usage.TotalTokens,
	})
}
