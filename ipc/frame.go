// Package ipc implements the pipe framing and envelope codec spoken with
// the worker process.
//
// Every message, in both directions, is one frame: an 8-byte little-endian
// unsigned length prefix followed by exactly that many payload bytes. The
// payload is a msgpack envelope carrying exactly one tagged message
// (see envelope.go).
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - prefix).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 8
)

// FrameErrorKind classifies framing and codec errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a payload that does not parse as an envelope.
	FrameErrorDecode
	// FrameErrorBroken indicates a channel already failed by a prior error.
	FrameErrorBroken
)

// FrameError represents a framing or codec error. All frame errors are
// fatal to the session: there is no resync point in the stream after a
// partial frame, and a payload that does not parse signals protocol
// corruption.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFrameError returns true if the error is a frame error of any kind.
func IsFrameError(err error) bool {
	var frameErr *FrameError
	return errors.As(err, &frameErr)
}

// readDeadliner is satisfied by *os.File pipe ends, which support read
// deadlines on Linux.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// FrameReader reads length-prefixed frames from a stream.
type FrameReader struct {
	reader  io.Reader
	timeout time.Duration
	broken  error
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{reader: r}
}

// SetTimeout bounds each subsequent ReadFrame call. It only takes effect
// when the underlying reader supports read deadlines (os pipes do); other
// readers keep blocking indefinitely. Zero disables the timeout.
func (r *FrameReader) SetTimeout(d time.Duration) {
	r.timeout = d
}

// ReadFrame reads a single frame from the stream and returns its payload.
//
// Errors:
//   - io.EOF: stream ended cleanly before a new frame started
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit
//   - *FrameError with Kind=FrameErrorBroken: a prior error broke the stream
//
// A short delivery of the payload is not an error by itself: the read loops
// until the declared length is accumulated or the stream ends.
func (r *FrameReader) ReadFrame() ([]byte, error) {
	if r.broken != nil {
		return nil, &FrameError{
			Kind: FrameErrorBroken,
			Msg:  "stream already broken",
			Err:  r.broken,
		}
	}

	if r.timeout > 0 {
		if dl, ok := r.reader.(readDeadliner); ok {
			_ = dl.SetReadDeadline(time.Now().Add(r.timeout))
			defer func() { _ = dl.SetReadDeadline(time.Time{}) }()
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(r.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		r.broken = err
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.LittleEndian.Uint64(lengthBuf[:])

	if payloadSize > MaxPayloadSize {
		r.broken = fmt.Errorf("oversized frame: %d", payloadSize)
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r.reader, payload); err != nil {
		r.broken = err
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// FrameWriter writes length-prefixed frames to a stream.
type FrameWriter struct {
	writer io.Writer
	broken error
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{writer: w}
}

// WriteFrame writes the length prefix followed by the payload. A write
// failure breaks the channel: every later call fails immediately with
// FrameErrorBroken. Callers never observe a partially written frame.
func (w *FrameWriter) WriteFrame(payload []byte) error {
	if w.broken != nil {
		return &FrameError{
			Kind: FrameErrorBroken,
			Msg:  "stream already broken",
			Err:  w.broken,
		}
	}

	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.LittleEndian.PutUint64(lengthBuf[:], uint64(len(payload)))

	if _, err := w.writer.Write(lengthBuf[:]); err != nil {
		w.broken = err
		return &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to write length prefix",
			Err:  err,
		}
	}
	if _, err := w.writer.Write(payload); err != nil {
		w.broken = err
		return &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to write payload",
			Err:  err,
		}
	}

	return nil
}
