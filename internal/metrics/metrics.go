// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Gateway request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Remote gateway metrics
	IncGatewayRequest(op, outcome string)
	ObserveGatewayDuration(op string, duration time.Duration)
	IncGatewaySoftFailure(op string)

	// Customer list metrics
	IncCustomerInserted()
	IncCustomerReplaced()
	IncCustomerRemoved()
	IncListLoaded()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
