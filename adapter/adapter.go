// Package adapter defines the report delivery boundary.
//
// Adapters publish the final transfer report to downstream systems once a
// session completes. The CLI owns adapter lifecycle; users provide
// configuration only.
package adapter

import "context"

// ReportEvent is the payload published when a transfer finishes.
type ReportEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"` // always "transfer_report"
	SessionID       string `json:"session_id"`
	Worker          string `json:"worker"`
	UserID          string `json:"user_id,omitempty"`
	Timestamp       string `json:"timestamp"` // ISO 8601
	// Report is the worker's transfer report, forwarded as-is.
	Report map[string]any `json:"report"`
}

// Adapter publishes transfer reports to a downstream system.
// Implementations must be safe for single-use per session.
type Adapter interface {
	// Publish sends a transfer report to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ReportEvent) error

	// Close releases adapter resources.
	Close() error
}
