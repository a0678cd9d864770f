package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GatewayRequests        uint64
	GatewayErrors          uint64
	GatewaySoftFailures    uint64
	GatewayDurationCount   uint64
	GatewayDurationTotalNs int64
	CustomersInserted      uint64
	CustomersReplaced      uint64
	CustomersRemoved       uint64
	ListsLoaded            uint64
}

// InMemoryRecorder stores metrics in memory. GET /metrics reads them.
type InMemoryRecorder struct {
	gatewayRequests        uint64
	gatewayErrors          uint64
	gatewaySoftFailures    uint64
	gatewayDurationCount   uint64
	gatewayDurationTotalNs int64
	customersInserted      uint64
	customersReplaced      uint64
	customersRemoved       uint64
	listsLoaded            uint64
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		GatewayRequests:        atomic.LoadUint64(&m.gatewayRequests),
		GatewayErrors:          atomic.LoadUint64(&m.gatewayErrors),
		GatewaySoftFailures:    atomic.LoadUint64(&m.gatewaySoftFailures),
		GatewayDurationCount:   atomic.LoadUint64(&m.gatewayDurationCount),
		GatewayDurationTotalNs: atomic.LoadInt64(&m.gatewayDurationTotalNs),
		CustomersInserted:      atomic.LoadUint64(&m.customersInserted),
		CustomersReplaced:      atomic.LoadUint64(&m.customersReplaced),
		CustomersRemoved:       atomic.LoadUint64(&m.customersRemoved),
		ListsLoaded:            atomic.LoadUint64(&m.listsLoaded),
	}
}

// IncGatewayRequest counts a gateway call and, separately, its failures.
func (m *InMemoryRecorder) IncGatewayRequest(op, outcome string) {
	atomic.AddUint64(&m.gatewayRequests, 1)
	if outcome == OutcomeError {
		atomic.AddUint64(&m.gatewayErrors, 1)
	}
}

// ObserveGatewayDuration records gateway call duration.
func (m *InMemoryRecorder) ObserveGatewayDuration(op string, duration time.Duration) {
	atomic.AddUint64(&m.gatewayDurationCount, 1)
	atomic.AddInt64(&m.gatewayDurationTotalNs, duration.Nanoseconds())
}

// IncGatewaySoftFailure increments the swallowed failure counter.
func (m *InMemoryRecorder) IncGatewaySoftFailure(op string) {
	atomic.AddUint64(&m.gatewaySoftFailures, 1)
}

// IncCustomerInserted increments customer inserted counter.
func (m *InMemoryRecorder) IncCustomerInserted() {
	atomic.AddUint64(&m.customersInserted, 1)
}

// IncCustomerReplaced increments customer replaced counter.
func (m *InMemoryRecorder) IncCustomerReplaced() {
	atomic.AddUint64(&m.customersReplaced, 1)
}

// IncCustomerRemoved increments customer removed counter.
func (m *InMemoryRecorder) IncCustomerRemoved() {
	atomic.AddUint64(&m.customersRemoved, 1)
}

// IncListLoaded increments list loaded counter.
func (m *InMemoryRecorder) IncListLoaded() {
	atomic.AddUint64(&m.listsLoaded, 1)
}
