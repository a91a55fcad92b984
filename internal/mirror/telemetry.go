package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const tracerName = "scopesync.mirror"

var (
	// reloadsTotal counts completed domain reloads.
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scopesync_mirror_reloads_total",
		Help: "Completed mirror reloads by domain",
	}, []string{"domain"})

	// remoteCallsTotal counts transport calls by outcome.
	remoteCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scopesync_remote_calls_total",
		Help: "Remote calls by operation and result",
	}, []string{"operation", "result"})

	remoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scopesync_remote_call_duration_seconds",
		Help:    "Remote call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"operation"})

	exportPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scopesync_export_polls_total",
		Help: "Export status polls",
	})
)
