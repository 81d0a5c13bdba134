package client

import (
	"fmt"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/types"
)

// StatusFunc receives each streamed progress update, including the terminal
// one. May be nil.
type StatusFunc func(types.ResponseStatus)

// WaitAllDone consumes a status stream until the terminal all_done code.
//
// Each received response must be of the status kind; a bare error response
// is also accepted and terminates the stream with the business error. Any
// other kind fails with an UnexpectedKindError. Current values must be
// monotonically non-decreasing until the terminal code; a regression is a
// stream violation, not tolerated silently.
//
// While the stream is outstanding the dispatcher refuses new calls with
// ErrStreamInFlight; WaitAllDone returning, on any path, releases that hold.
func (c *Client) WaitAllDone(onStatus StatusFunc) error {
	defer c.comm.EndStream()

	var last uint64

	for {
		resp, err := c.comm.ReceiveNext()
		if err != nil {
			return err
		}

		switch resp.Kind {
		case types.ResponseKindError:
			var e types.ResponseError
			if err := resp.DecodeInto(&e); err != nil {
				return err
			}
			c.collector.IncBusinessErrors()
			return &comm.BusinessError{Msg: e.Err}

		case types.ResponseKindStatus:
			var st types.ResponseStatus
			if err := resp.DecodeInto(&st); err != nil {
				return err
			}
			c.collector.IncStatusUpdates()

			if st.Status.IsTerminal() {
				if onStatus != nil {
					onStatus(st)
				}
				if c.logger != nil {
					c.logger.Info("status stream done", map[string]any{
						"current": st.Current,
						"total":   st.Total,
					})
				}
				return nil
			}

			if st.Current < last {
				c.collector.IncProtocolViolations()
				return &comm.StreamError{
					Msg: fmt.Sprintf("status progress moved backwards: %d after %d", st.Current, last),
				}
			}
			last = st.Current

			if onStatus != nil {
				onStatus(st)
			}

		default:
			c.collector.IncProtocolViolations()
			return &comm.UnexpectedKindError{Want: types.ResponseKindStatus, Got: resp.Kind}
		}
	}
}
