package authsync

import (
	internalmetrics "github.com/toolvault/authsync/internal/metrics"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess is an exported constant or variable used by the session synchronizer.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the session synchronizer.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginDomainRejected is an exported constant or variable used by the session synchronizer.
	MetricLoginDomainRejected = internalmetrics.MetricLoginDomainRejected
	// MetricMFARequired is an exported constant or variable used by the session synchronizer.
	MetricMFARequired = internalmetrics.MetricMFARequired
	// MetricMFASuccess is an exported constant or variable used by the session synchronizer.
	MetricMFASuccess = internalmetrics.MetricMFASuccess
	// MetricMFAFailure is an exported constant or variable used by the session synchronizer.
	MetricMFAFailure = internalmetrics.MetricMFAFailure
	// MetricMFAChallengeRegenerated is an exported constant or variable used by the session synchronizer.
	MetricMFAChallengeRegenerated = internalmetrics.MetricMFAChallengeRegenerated
	// MetricProfileCacheHit is an exported constant or variable used by the session synchronizer.
	MetricProfileCacheHit = internalmetrics.MetricProfileCacheHit
	// MetricProfileCacheMiss is an exported constant or variable used by the session synchronizer.
	MetricProfileCacheMiss = internalmetrics.MetricProfileCacheMiss
	// MetricProfileResolveSuccess is an exported constant or variable used by the session synchronizer.
	MetricProfileResolveSuccess = internalmetrics.MetricProfileResolveSuccess
	// MetricProfileResolveMissing is an exported constant or variable used by the session synchronizer.
	MetricProfileResolveMissing = internalmetrics.MetricProfileResolveMissing
	// MetricProfileResolveFailure is an exported constant or variable used by the session synchronizer.
	MetricProfileResolveFailure = internalmetrics.MetricProfileResolveFailure
	// MetricProfileFetchDeduped is an exported constant or variable used by the session synchronizer.
	MetricProfileFetchDeduped = internalmetrics.MetricProfileFetchDeduped
	// MetricReconcileStarted is an exported constant or variable used by the session synchronizer.
	MetricReconcileStarted = internalmetrics.MetricReconcileStarted
	// MetricReconcileCommitted is an exported constant or variable used by the session synchronizer.
	MetricReconcileCommitted = internalmetrics.MetricReconcileCommitted
	// MetricReconcileDiscarded is an exported constant or variable used by the session synchronizer.
	MetricReconcileDiscarded = internalmetrics.MetricReconcileDiscarded
	// MetricSessionCheckTimeout is an exported constant or variable used by the session synchronizer.
	MetricSessionCheckTimeout = internalmetrics.MetricSessionCheckTimeout
	// MetricLogout is an exported constant or variable used by the session synchronizer.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutForced is an exported constant or variable used by the session synchronizer.
	MetricLogoutForced = internalmetrics.MetricLogoutForced
	// MetricPasswordChangeSuccess is an exported constant or variable used by the session synchronizer.
	MetricPasswordChangeSuccess = internalmetrics.MetricPasswordChangeSuccess
	// MetricPasswordChangePartial is an exported constant or variable used by the session synchronizer.
	MetricPasswordChangePartial = internalmetrics.MetricPasswordChangePartial
	// MetricPasswordChangeFailure is an exported constant or variable used by the session synchronizer.
	MetricPasswordChangeFailure = internalmetrics.MetricPasswordChangeFailure
	// MetricReconcileLatency is an exported constant or variable used by the session synchronizer.
	MetricReconcileLatency = internalmetrics.MetricReconcileLatency

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and the optional reconcile latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
