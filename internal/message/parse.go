package message

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wagiedev/agent-protocol-go/internal/errors"
)

// Encode serializes an envelope with its type tag.
func Encode(env Envelope) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("encode envelope: nil envelope")
	}

	return json.Marshal(env)
}

// Decode converts raw JSON into a typed Envelope.
//
// Unknown or missing type tags are reported as *errors.EnvelopeError wrapping
// errors.ErrUnknownEnvelopeType; they are never skipped.
func Decode(log *slog.Logger, raw []byte) (Envelope, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &errors.EnvelopeError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	return Parse(log, data)
}

// Parse converts a raw JSON map into a typed Envelope.
//
// The logger is used to log debug information about envelope parsing.
func Parse(log *slog.Logger, data map[string]any) (Envelope, error) {
	log = log.With("component", "envelope_parser")

	msgType, ok := data["type"].(string)
	if !ok {
		log.Debug("Envelope missing 'type' field")

		return nil, &errors.EnvelopeError{
			Data: data,
			Err:  fmt.Errorf("%w: missing or invalid 'type' field", errors.ErrUnknownEnvelopeType),
		}
	}

	log.Debug("Parsing envelope", "envelope_type", msgType)

	var env Envelope

	switch Type(msgType) {
	case TypeRequest:
		env = &Request{}
	case TypeResponse:
		env = &Response{}
	case TypeError:
		env = &ErrorMessage{}
	case TypeStream:
		env = &StreamMessage{}
	case TypeSystem:
		env = &SystemMessage{}
	default:
		log.Warn("Rejecting unknown envelope type", "envelope_type", msgType)

		return nil, &errors.EnvelopeError{
			Data: data,
			Err:  fmt.Errorf("%w: %q", errors.ErrUnknownEnvelopeType, msgType),
		}
	}

	// Round-trip through JSON so each variant's field tags apply.
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &errors.EnvelopeError{Data: data, Err: err}
	}

	if err := json.Unmarshal(raw, env); err != nil {
		return nil, &errors.EnvelopeError{Data: data, Err: fmt.Errorf("%s envelope: %w", msgType, err)}
	}

	if env.EnvelopeID() == "" {
		return nil, &errors.EnvelopeError{Data: data, Err: fmt.Errorf("%s envelope: missing id", msgType)}
	}

	if resp, ok := env.(*Response); ok && resp.Usage != nil {
		if err := resp.Usage.Validate(); err != nil {
			log.Debug("Rejecting response with invalid usage", "error", err)

			return nil, &errors.EnvelopeError{Data: data, Err: fmt.Errorf("%s envelope: %w", msgType, err)}
		}
	}

	return env, nil
}
