// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters during a single worker session. It is a
// leaf package with no internal dependencies. All increment methods are
// nil-receiver safe so callers never have to guard the disabled case.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Session lifecycle
	SessionsStarted int64
	SessionsEnded   int64

	// Worker process
	WorkerLaunchSuccess int64
	WorkerLaunchFailure int64

	// Protocol
	CallsIssued        int64
	FramesSent         int64
	FramesReceived     int64
	DecodeErrors       int64
	ProtocolViolations int64
	BusinessErrors     int64
	StatusUpdates      int64

	// Dimensions (informational, set at construction)
	Worker    string
	SessionID string
}

// Collector accumulates metrics during a single worker session.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	sessionsStarted int64
	sessionsEnded   int64

	workerLaunchSuccess int64
	workerLaunchFailure int64

	callsIssued        int64
	framesSent         int64
	framesReceived     int64
	decodeErrors       int64
	protocolViolations int64
	businessErrors     int64
	statusUpdates      int64

	worker    string
	sessionID string
}

// NewCollector creates a Collector with dimension labels. worker is the
// worker binary path; sessionID identifies the session the counters belong to.
func NewCollector(worker, sessionID string) *Collector {
	return &Collector{
		worker:    worker,
		sessionID: sessionID,
	}
}

// --- Session lifecycle ---

// IncSessionStarted records a session start.
func (c *Collector) IncSessionStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsStarted++
	c.mu.Unlock()
}

// IncSessionEnded records a completed session teardown.
func (c *Collector) IncSessionEnded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsEnded++
	c.mu.Unlock()
}

// --- Worker process ---

// IncWorkerLaunchSuccess records a successful worker spawn.
func (c *Collector) IncWorkerLaunchSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.workerLaunchSuccess++
	c.mu.Unlock()
}

// IncWorkerLaunchFailure records a failed worker spawn.
func (c *Collector) IncWorkerLaunchFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.workerLaunchFailure++
	c.mu.Unlock()
}

// --- Protocol ---

// IncCallsIssued records one request/response exchange started.
func (c *Collector) IncCallsIssued() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.callsIssued++
	c.mu.Unlock()
}

// IncFramesSent records a frame written to the worker.
func (c *Collector) IncFramesSent() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesSent++
	c.mu.Unlock()
}

// IncFramesReceived records a frame read from the worker.
func (c *Collector) IncFramesReceived() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesReceived++
	c.mu.Unlock()
}

// IncDecodeErrors records a malformed envelope payload.
func (c *Collector) IncDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// IncProtocolViolations records an unrecognized or unexpected response kind.
func (c *Collector) IncProtocolViolations() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.protocolViolations++
	c.mu.Unlock()
}

// IncBusinessErrors records an error response from the worker.
func (c *Collector) IncBusinessErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.businessErrors++
	c.mu.Unlock()
}

// IncStatusUpdates records one streamed status response.
func (c *Collector) IncStatusUpdates() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.statusUpdates++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		SessionsStarted: c.sessionsStarted,
		SessionsEnded:   c.sessionsEnded,

		WorkerLaunchSuccess: c.workerLaunchSuccess,
		WorkerLaunchFailure: c.workerLaunchFailure,

		CallsIssued:        c.callsIssued,
		FramesSent:         c.framesSent,
		FramesReceived:     c.framesReceived,
		DecodeErrors:       c.decodeErrors,
		ProtocolViolations: c.protocolViolations,
		BusinessErrors:     c.businessErrors,
		StatusUpdates:      c.statusUpdates,

		Worker:    c.worker,
		SessionID: c.sessionID,
	}
}
