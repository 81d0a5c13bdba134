package ipc

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cea-sec/usbsas/types"
)

// requestEnvelope is the wire form of a request frame payload: the kind tag
// plus the raw encoded message. The tag is decoded without touching the
// body, so the active variant is discoverable before any payload decode.
type requestEnvelope struct {
	Kind types.RequestKind  `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// responseEnvelope mirrors requestEnvelope for the response direction.
type responseEnvelope struct {
	Kind types.ResponseKind `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// UnknownKindError reports an envelope that parsed correctly but carries a
// tag outside the closed kind set. This is a distinct protocol violation,
// not a malformed buffer: newer peers may emit kinds this build does not
// know, and that case must stay observable.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unrecognized envelope kind %q", e.Kind)
}

// EncodeRequest wraps exactly one request message in an envelope and
// serializes it to a flat buffer.
func EncodeRequest(kind types.RequestKind, payload any) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("failed to encode %s request body", kind),
			Err:  err,
		}
	}
	buf, err := msgpack.Marshal(&requestEnvelope{Kind: kind, Body: body})
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("failed to encode %s request envelope", kind),
			Err:  err,
		}
	}
	return buf, nil
}

// EncodeResponse wraps exactly one response message in an envelope and
// serializes it to a flat buffer.
func EncodeResponse(kind types.ResponseKind, payload any) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("failed to encode %s response body", kind),
			Err:  err,
		}
	}
	buf, err := msgpack.Marshal(&responseEnvelope{Kind: kind, Body: body})
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("failed to encode %s response envelope", kind),
			Err:  err,
		}
	}
	return buf, nil
}

// DecodeRequest deserializes a request envelope and returns the active tag
// together with the still-encoded body.
//
// Errors:
//   - *FrameError with Kind=FrameErrorDecode: buffer does not parse as an
//     envelope, or no kind is populated (malformed)
//   - *UnknownKindError: envelope parsed but the tag is outside the closed set
func DecodeRequest(buf []byte) (types.RequestKind, msgpack.RawMessage, error) {
	var env requestEnvelope
	if err := msgpack.Unmarshal(buf, &env); err != nil {
		return "", nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode request envelope",
			Err:  err,
		}
	}
	if env.Kind == "" {
		return "", nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "request envelope has no active kind",
		}
	}
	if !env.Kind.Known() {
		return "", nil, &UnknownKindError{Kind: string(env.Kind)}
	}
	return env.Kind, env.Body, nil
}

// DecodeResponse deserializes a response envelope and returns the active tag
// together with the still-encoded body.
func DecodeResponse(buf []byte) (types.ResponseKind, msgpack.RawMessage, error) {
	var env responseEnvelope
	if err := msgpack.Unmarshal(buf, &env); err != nil {
		return "", nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode response envelope",
			Err:  err,
		}
	}
	if env.Kind == "" {
		return "", nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "response envelope has no active kind",
		}
	}
	if !env.Kind.Known() {
		return "", nil, &UnknownKindError{Kind: string(env.Kind)}
	}
	return env.Kind, env.Body, nil
}

// DecodeBody decodes an envelope body into the message struct for its kind.
func DecodeBody(body msgpack.RawMessage, v any) error {
	if err := msgpack.Unmarshal(body, v); err != nil {
		return &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode envelope body",
			Err:  err,
		}
	}
	return nil
}
