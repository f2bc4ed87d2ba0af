// Package metrics registers the Prometheus instruments shared by the
// manager and the IPC server. They are exposed only when the server binary
// is started with -metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RebuildTotal counts snapshot rebuilds by operation and result
	RebuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acroserve_rebuild_total",
		Help: "Total snapshot rebuilds by operation and result",
	}, []string{"operation", "result"})

	// RebuildDuration tracks how long building a snapshot takes
	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acroserve_rebuild_duration_seconds",
		Help:    "Snapshot rebuild duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	// SnapshotVersion is the version of the currently published snapshot
	SnapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acroserve_snapshot_version",
		Help: "Version of the published dictionary snapshot",
	})

	// SnapshotEntries is the entry count of the currently published snapshot
	SnapshotEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acroserve_snapshot_entries",
		Help: "Entries in the published dictionary snapshot",
	})

	// RequestTotal counts IPC requests by op and status
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acroserve_requests_total",
		Help: "Total IPC requests by op and status",
	}, []string{"op", "status"})

	// RequestDuration tracks IPC request latency by op
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "acroserve_request_duration_seconds",
		Help:    "IPC request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
	}, []string{"op"})

	// PopularityReloads counts popularity table reloads by result
	PopularityReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acroserve_popularity_reload_total",
		Help: "Total popularity table reloads by result",
	}, []string{"result"})
)

// Result labels a success or failure.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
