package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyFrame   = errors.New("empty frame")
	ErrMissingType  = errors.New("frame missing type discriminator")
	ErrEmptyPayload = errors.New("empty payload")
)

// Encode wraps payload in an Envelope and marshals the whole frame.
func Encode(kind string, payload any) ([]byte, error) {
	if kind == "" {
		return nil, ErrMissingType
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: kind, Payload: raw})
}

// DecodeEnvelope parses a single wire frame. A malformed frame is a
// recoverable error: callers log and drop it, never tear the connection down.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	if len(frame) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// DecodePayload unmarshals an envelope's payload into T. Remote payloads are
// untrusted and frequently partial; absent fields come back as zero values and
// the caller applies documented defaults.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("%w for type %q", ErrEmptyPayload, env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return out, nil
}
