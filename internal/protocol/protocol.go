package protocol

import (
	"encoding/json"
	"fmt"
)

// A single request or response on the daemon socket.
//
// Envelopes are JSON objects terminated by a newline. The payload shape
// depends on the command.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
//
// A nil payload produces an envelope without a payload field.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		env.Payload = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return data, nil
}

// Parses an envelope from a single line.
//
// Returns the envelope and its raw payload for command-specific decoding.
func Decode(line []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrDecode)
	}
	return env, env.Payload, nil
}

// Decodes a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &v, nil
}
