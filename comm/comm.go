// Package comm implements the request/response dispatcher bound to one pair
// of unidirectional pipes.
//
// A Comm enforces the protocol's call discipline: exactly one request frame
// out, then one response frame in (Call), or one response frame in with no
// request (ReceiveNext, for streamed progress). It frames, tags, and hands
// payloads back; it never interprets business messages.
//
// The same type also carries the worker half of the exchange (RecvRequest,
// SendResponse and friends), used by the mock worker and by tests. A Comm
// instance serves as one half or the other, never both.
package comm

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cea-sec/usbsas/ipc"
	"github.com/cea-sec/usbsas/metrics"
	"github.com/cea-sec/usbsas/types"
)

// Comm pairs a frame reader and writer over the two pipe ends.
// Not safe for concurrent use: the protocol is strictly single-flight and a
// multi-threaded caller must serialize through a single owner.
type Comm struct {
	reader    *ipc.FrameReader
	writer    *ipc.FrameWriter
	collector *metrics.Collector

	mu       sync.Mutex
	inFlight bool
	// streaming is set between the acknowledge response of a long-running
	// operation and its terminal status frame. While set, only ReceiveNext
	// may touch the read side: a Call would consume a status frame as its
	// response.
	streaming bool
}

// New creates a Comm over the given pipe ends. r receives frames from the
// peer, w sends frames to it. collector may be nil.
func New(r io.Reader, w io.Writer, collector *metrics.Collector) *Comm {
	return &Comm{
		reader:    ipc.NewFrameReader(r),
		writer:    ipc.NewFrameWriter(w),
		collector: collector,
	}
}

// SetReadTimeout bounds each subsequent response read. Only effective when
// the read end supports deadlines (os pipes do). Zero disables the timeout.
func (c *Comm) SetReadTimeout(d time.Duration) {
	c.reader.SetTimeout(d)
}

// Response is one decoded response envelope: the active kind plus its
// still-encoded body. The body is downcast by the caller once the kind has
// been checked.
type Response struct {
	Kind types.ResponseKind
	body msgpack.RawMessage
}

// DecodeInto decodes the response body into the message struct for its kind.
func (r *Response) DecodeInto(v any) error {
	return ipc.DecodeBody(r.body, v)
}

// Request is one decoded request envelope, the worker-half mirror of Response.
type Request struct {
	Kind types.RequestKind
	body msgpack.RawMessage
}

// DecodeInto decodes the request body into the message struct for its kind.
func (r *Request) DecodeInto(v any) error {
	return ipc.DecodeBody(r.body, v)
}

// Call encodes and writes one request frame, then reads and decodes exactly
// one response frame. The response kind is validated against the closed
// response set; an unrecognized kind is a fatal protocol violation.
//
// A second Call (or ReceiveNext) while one is outstanding fails with
// ErrCallInFlight. That cannot happen on the intended single-threaded use;
// the guard turns misuse into an explicit error instead of interleaved
// frames on the wire. A Call issued while a status stream is outstanding
// (between BeginStream and EndStream) fails with ErrStreamInFlight: the
// stream must be consumed to its terminal frame first.
func (c *Comm) Call(kind types.RequestKind, payload any) (*Response, error) {
	if err := c.acquire(true); err != nil {
		return nil, err
	}
	defer c.release()

	buf, err := ipc.EncodeRequest(kind, payload)
	if err != nil {
		return nil, err
	}
	if err := c.writer.WriteFrame(buf); err != nil {
		return nil, err
	}
	c.collector.IncFramesSent()
	c.collector.IncCallsIssued()

	return c.receive()
}

// ReceiveNext reads and decodes one response frame without sending a request
// first. Used for the streamed responses of long-running operations, where a
// single request triggers many subsequent response frames.
func (c *Comm) ReceiveNext() (*Response, error) {
	if err := c.acquire(false); err != nil {
		return nil, err
	}
	defer c.release()

	return c.receive()
}

// BeginStream marks a status stream as outstanding, blocking Call until
// EndStream. Armed by the client once a long-running operation has been
// acknowledged.
func (c *Comm) BeginStream() {
	c.mu.Lock()
	c.streaming = true
	c.mu.Unlock()
}

// EndStream clears the stream latch. Idempotent.
func (c *Comm) EndStream() {
	c.mu.Lock()
	c.streaming = false
	c.mu.Unlock()
}

func (c *Comm) receive() (*Response, error) {
	payload, err := c.reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	c.collector.IncFramesReceived()

	kind, body, err := ipc.DecodeResponse(payload)
	if err != nil {
		var unknown *ipc.UnknownKindError
		if errors.As(err, &unknown) {
			c.collector.IncProtocolViolations()
		} else {
			c.collector.IncDecodeErrors()
		}
		return nil, err
	}

	return &Response{Kind: kind, body: body}, nil
}

func (c *Comm) acquire(forCall bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrCallInFlight
	}
	if forCall && c.streaming {
		return ErrStreamInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Comm) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// --- Worker half ---

// RecvRequest reads and decodes one request frame. Worker half only.
func (c *Comm) RecvRequest() (*Request, error) {
	payload, err := c.reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	c.collector.IncFramesReceived()

	kind, body, err := ipc.DecodeRequest(payload)
	if err != nil {
		return nil, err
	}
	return &Request{Kind: kind, body: body}, nil
}

// SendResponse encodes and writes one response frame. Worker half only.
func (c *Comm) SendResponse(kind types.ResponseKind, payload any) error {
	buf, err := ipc.EncodeResponse(kind, payload)
	if err != nil {
		return err
	}
	if err := c.writer.WriteFrame(buf); err != nil {
		return err
	}
	c.collector.IncFramesSent()
	return nil
}

// SendStatus sends one streamed progress response.
func (c *Comm) SendStatus(code types.StatusCode, current, total uint64) error {
	return c.SendResponse(types.ResponseKindStatus, &types.ResponseStatus{
		Status:  code,
		Current: current,
		Total:   total,
	})
}

// SendError sends the dedicated business error response.
func (c *Comm) SendError(msg string) error {
	return c.SendResponse(types.ResponseKindError, &types.ResponseError{Err: msg})
}

// SendDone sends the terminal all_done status, ending a progress stream.
func (c *Comm) SendDone(current, total uint64) error {
	return c.SendStatus(types.StatusAllDone, current, total)
}
