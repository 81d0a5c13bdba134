package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("/usr/libexec/usbsas-worker", "sess-1")

	c.IncSessionStarted()
	c.IncWorkerLaunchSuccess()
	c.IncCallsIssued()
	c.IncCallsIssued()
	c.IncFramesSent()
	c.IncFramesSent()
	c.IncFramesReceived()
	c.IncBusinessErrors()
	c.IncStatusUpdates()
	c.IncStatusUpdates()
	c.IncStatusUpdates()
	c.IncSessionEnded()

	snap := c.Snapshot()
	if snap.SessionsStarted != 1 || snap.SessionsEnded != 1 {
		t.Errorf("sessions = %d/%d, want 1/1", snap.SessionsStarted, snap.SessionsEnded)
	}
	if snap.CallsIssued != 2 {
		t.Errorf("CallsIssued = %d, want 2", snap.CallsIssued)
	}
	if snap.FramesSent != 2 || snap.FramesReceived != 1 {
		t.Errorf("frames = %d/%d, want 2/1", snap.FramesSent, snap.FramesReceived)
	}
	if snap.BusinessErrors != 1 {
		t.Errorf("BusinessErrors = %d, want 1", snap.BusinessErrors)
	}
	if snap.StatusUpdates != 3 {
		t.Errorf("StatusUpdates = %d, want 3", snap.StatusUpdates)
	}
	if snap.Worker != "/usr/libexec/usbsas-worker" || snap.SessionID != "sess-1" {
		t.Errorf("dimensions = %q/%q", snap.Worker, snap.SessionID)
	}
}

func TestCollector_NilReceiver(t *testing.T) {
	var c *Collector

	// Every increment must be a no-op on a nil collector.
	c.IncSessionStarted()
	c.IncSessionEnded()
	c.IncWorkerLaunchSuccess()
	c.IncWorkerLaunchFailure()
	c.IncCallsIssued()
	c.IncFramesSent()
	c.IncFramesReceived()
	c.IncDecodeErrors()
	c.IncProtocolViolations()
	c.IncBusinessErrors()
	c.IncStatusUpdates()

	snap := c.Snapshot()
	if snap.CallsIssued != 0 {
		t.Errorf("nil collector snapshot = %+v, want zero", snap)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector("w", "s")

	var wg sync.WaitGroup
	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := 0; m < 100; m++ {
				c.IncFramesSent()
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().FramesSent; got != 1000 {
		t.Errorf("FramesSent = %d, want 1000", got)
	}
}

func TestSnapshot_Immutable(t *testing.T) {
	c := NewCollector("w", "s")
	c.IncCallsIssued()

	snap := c.Snapshot()
	c.IncCallsIssued()

	if snap.CallsIssued != 1 {
		t.Errorf("snapshot CallsIssued = %d, want 1", snap.CallsIssued)
	}
	if got := c.Snapshot().CallsIssued; got != 2 {
		t.Errorf("live CallsIssued = %d, want 2", got)
	}
}
