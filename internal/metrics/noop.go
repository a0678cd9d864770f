package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncGatewayRequest is a no-op.
func (n *NoopRecorder) IncGatewayRequest(op, outcome string) {}

// ObserveGatewayDuration is a no-op.
func (n *NoopRecorder) ObserveGatewayDuration(op string, duration time.Duration) {}

// IncGatewaySoftFailure is a no-op.
func (n *NoopRecorder) IncGatewaySoftFailure(op string) {}

// IncCustomerInserted is a no-op.
func (n *NoopRecorder) IncCustomerInserted() {}

// IncCustomerReplaced is a no-op.
func (n *NoopRecorder) IncCustomerReplaced() {}

// IncCustomerRemoved is a no-op.
func (n *NoopRecorder) IncCustomerRemoved() {}

// IncListLoaded is a no-op.
func (n *NoopRecorder) IncListLoaded() {}
