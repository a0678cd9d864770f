package handler

import (
	"fmt"
	"net/http"

	"github.com/custadmin/custadmin/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	// Users service calls
	writeMetric(w, "custadmin_gateway_requests_total{outcome=\"success\"} %d\n", snap.GatewayRequests-snap.GatewayErrors)
	writeMetric(w, "custadmin_gateway_requests_total{outcome=\"error\"} %d\n", snap.GatewayErrors)
	writeMetric(w, "custadmin_gateway_soft_failures_total %d\n", snap.GatewaySoftFailures)
	writeMetric(w, "custadmin_gateway_duration_seconds_count %d\n", snap.GatewayDurationCount)
	writeMetric(w, "custadmin_gateway_duration_seconds_sum %.6f\n", float64(snap.GatewayDurationTotalNs)/1e9)

	// Customer list reconciliation
	writeMetric(w, "custadmin_customers_inserted_total %d\n", snap.CustomersInserted)
	writeMetric(w, "custadmin_customers_replaced_total %d\n", snap.CustomersReplaced)
	writeMetric(w, "custadmin_customers_removed_total %d\n", snap.CustomersRemoved)
	writeMetric(w, "custadmin_customers_lists_loaded_total %d\n", snap.ListsLoaded)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
