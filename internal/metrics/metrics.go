package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EntitlementDecisions counts access checks by feature, tier and outcome.
	EntitlementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagate",
		Subsystem: "entitlements",
		Name:      "decisions_total",
		Help:      "Feature access checks by feature, tier and outcome.",
	}, []string{"feature", "tier", "outcome"})

	// UsageWrites counts usage ledger appends by feature and status.
	UsageWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagate",
		Subsystem: "usage",
		Name:      "writes_total",
		Help:      "Usage ledger appends by feature and status.",
	}, []string{"feature", "status"})

	// UnmeteredUses counts completed actions whose usage entry could not be written.
	UnmeteredUses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagate",
		Subsystem: "usage",
		Name:      "unmetered_total",
		Help:      "Completed actions that could not be recorded in the usage ledger.",
	}, []string{"feature"})

	// ProfileLoads counts profile/membership loads by outcome.
	ProfileLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagate",
		Subsystem: "profiles",
		Name:      "loads_total",
		Help:      "Profile loads by outcome (ok, not_found, timeout, error).",
	}, []string{"outcome"})

	// ProfileLoadDuration tracks profile/membership load latency.
	ProfileLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mediagate",
		Subsystem: "profiles",
		Name:      "load_duration_seconds",
		Help:      "Profile and membership load duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// ProcessingJobs counts simulated processing jobs by feature and result.
	ProcessingJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagate",
		Subsystem: "processing",
		Name:      "jobs_total",
		Help:      "Gated processing jobs by feature and result.",
	}, []string{"feature", "result"})
)

// serves the default registry for the /metrics route
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
