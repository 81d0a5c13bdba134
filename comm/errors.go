package comm

import (
	"errors"
	"fmt"

	"github.com/cea-sec/usbsas/types"
)

// ErrCallInFlight is returned when a second request is issued while a
// response (or response stream) for the prior request is still outstanding.
var ErrCallInFlight = errors.New("comm: request already in flight")

// ErrStreamInFlight is returned when a new request is issued before an
// outstanding status stream has reached its terminal frame. The stream must
// be drained first; a request sent mid-stream would pair with a status frame
// instead of its own response.
var ErrStreamInFlight = errors.New("comm: status stream still outstanding")

// BusinessError is a well-formed error response from the worker. It is a
// normal, expected outcome, recoverable at the call site: callers may retry,
// prompt the user, or tear the session down themselves.
type BusinessError struct {
	Msg string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("worker error: %s", e.Msg)
}

// IsBusinessError returns true if the error is a business error response.
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// UnexpectedKindError is a recognized response whose kind does not match
// what the calling operation expected. It signals a sequencing bug, kept
// distinct from BusinessError so callers can apply a different policy.
type UnexpectedKindError struct {
	Want types.ResponseKind
	Got  types.ResponseKind
}

func (e *UnexpectedKindError) Error() string {
	return fmt.Sprintf("unexpected response kind %q (want %q)", e.Got, e.Want)
}

// IsUnexpectedKind returns true if the error is an unexpected-kind error.
func IsUnexpectedKind(err error) bool {
	var ue *UnexpectedKindError
	return errors.As(err, &ue)
}

// StreamError reports a violation of the status stream invariants, such as
// a progress value moving backwards before the terminal code.
type StreamError struct {
	Msg string
}

func (e *StreamError) Error() string {
	return e.Msg
}
