package client

import (
	"errors"
	"testing"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/metrics"
	"github.com/cea-sec/usbsas/types"
)

func status(code types.StatusCode, current, total uint64) scripted {
	return scripted{types.ResponseKindStatus, &types.ResponseStatus{
		Status:  code,
		Current: current,
		Total:   total,
	}}
}

func TestWaitAllDone_StreamToTerminal(t *testing.T) {
	collector := metrics.NewCollector("test", "s1")
	c, _ := scriptedClient(t, collector, nil,
		status(types.StatusReadSrc, 100, 400),
		status(types.StatusReadSrc, 250, 400),
		status(types.StatusMkFs, 400, 400),
		status(types.StatusAllDone, 400, 400),
	)

	var seen []types.ResponseStatus
	err := c.WaitAllDone(func(st types.ResponseStatus) {
		seen = append(seen, st)
	})
	if err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}
	if len(seen) != 4 {
		t.Fatalf("received %d updates, want 4", len(seen))
	}
	if !seen[len(seen)-1].Status.IsTerminal() {
		t.Errorf("last status = %q, want terminal", seen[len(seen)-1].Status)
	}
	if got := collector.Snapshot().StatusUpdates; got != 4 {
		t.Errorf("StatusUpdates = %d, want 4", got)
	}
}

func TestWaitAllDone_NilCallback(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		status(types.StatusWipe, 1, 2),
		status(types.StatusAllDone, 2, 2),
	)
	if err := c.WaitAllDone(nil); err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}
}

func TestWaitAllDone_ErrorMidStream(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		status(types.StatusReadSrc, 10, 100),
		scripted{types.ResponseKindError, &types.ResponseError{Err: "analyze rejected file"}},
	)

	err := c.WaitAllDone(nil)
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}
	if business.Msg != "analyze rejected file" {
		t.Errorf("Msg = %q, want %q", business.Msg, "analyze rejected file")
	}
}

func TestWaitAllDone_ProgressRegression(t *testing.T) {
	collector := metrics.NewCollector("test", "s1")
	c, _ := scriptedClient(t, collector, nil,
		status(types.StatusReadSrc, 300, 400),
		status(types.StatusReadSrc, 100, 400),
	)

	err := c.WaitAllDone(nil)
	var stream *comm.StreamError
	if !errors.As(err, &stream) {
		t.Fatalf("err = %v, want *comm.StreamError", err)
	}
	if got := collector.Snapshot().ProtocolViolations; got != 1 {
		t.Errorf("ProtocolViolations = %d, want 1", got)
	}
}

func TestWaitAllDone_EqualProgressAllowed(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		status(types.StatusAnalyze, 200, 400),
		status(types.StatusAnalyze, 200, 400),
		status(types.StatusAllDone, 400, 400),
	)
	if err := c.WaitAllDone(nil); err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}
}

func TestWipe_BlocksCallsUntilStreamDrained(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		scripted{types.ResponseKindWipe, &types.ResponseWipe{}},
		status(types.StatusWipe, 1, 2),
		status(types.StatusAllDone, 2, 2),
		scripted{types.ResponseKindUserID, &types.ResponseUserID{UserID: "after"}},
	)

	if err := c.Wipe(2, types.OutFsTypeNTFS, false); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	// A call issued mid-stream would pair with a status frame; the
	// dispatcher must refuse it instead.
	if _, err := c.UserID(); !errors.Is(err, comm.ErrStreamInFlight) {
		t.Errorf("UserID mid-stream err = %v, want ErrStreamInFlight", err)
	}

	if err := c.WaitAllDone(nil); err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}

	user, err := c.UserID()
	if err != nil {
		t.Fatalf("UserID after stream failed: %v", err)
	}
	if user != "after" {
		t.Errorf("UserID = %q, want %q", user, "after")
	}
}

func TestWaitAllDone_ErrorReleasesStreamHold(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		scripted{types.ResponseKindImgDisk, &types.ResponseImgDisk{}},
		scripted{types.ResponseKindError, &types.ResponseError{Err: "device yanked"}},
		scripted{types.ResponseKindEnd, &types.ResponseEnd{}},
	)

	if err := c.ImgDisk(1); err != nil {
		t.Fatalf("ImgDisk failed: %v", err)
	}
	if err := c.WaitAllDone(nil); !comm.IsBusinessError(err) {
		t.Fatalf("WaitAllDone err = %v, want business error", err)
	}

	// The failed stream must not leave the dispatcher latched; the End
	// exchange still has to go through during teardown.
	if err := c.End(); err != nil {
		t.Errorf("End after failed stream = %v, want nil", err)
	}
}

func TestWaitAllDone_NonStatusKind(t *testing.T) {
	c, _ := scriptedClient(t, nil, nil,
		scripted{types.ResponseKindUserID, &types.ResponseUserID{UserID: "x"}})

	err := c.WaitAllDone(nil)
	var unexpected *comm.UnexpectedKindError
	if !errors.As(err, &unexpected) {
		t.Fatalf("err = %v, want *comm.UnexpectedKindError", err)
	}
	if unexpected.Want != types.ResponseKindStatus {
		t.Errorf("Want = %q, want %q", unexpected.Want, types.ResponseKindStatus)
	}
}
