package internaldefs

import (
	authsync "github.com/toolvault/authsync"
)

// CounterDef defines a public type used by authsync APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authsync.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authsync APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authsync.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session synchronizer.
var CounterDefs = []CounterDef{
	{ID: authsync.MetricLoginSuccess, Name: "authsync_login_success_total", Help: "Successful login attempts."},
	{ID: authsync.MetricLoginFailure, Name: "authsync_login_failure_total", Help: "Failed login attempts."},
	{ID: authsync.MetricLoginDomainRejected, Name: "authsync_login_domain_rejected_total", Help: "Logins rejected by the allowed-domain gate before any network call."},
	{ID: authsync.MetricMFARequired, Name: "authsync_mfa_required_total", Help: "Login flows requiring a second-factor step-up."},
	{ID: authsync.MetricMFASuccess, Name: "authsync_mfa_success_total", Help: "Successful second-factor verifications."},
	{ID: authsync.MetricMFAFailure, Name: "authsync_mfa_failure_total", Help: "Failed second-factor verifications."},
	{ID: authsync.MetricMFAChallengeRegenerated, Name: "authsync_mfa_challenge_regenerated_total", Help: "Fresh challenges minted after an expired code."},
	{ID: authsync.MetricProfileCacheHit, Name: "authsync_profile_cache_hit_total", Help: "Profile reads served from the persisted cache."},
	{ID: authsync.MetricProfileCacheMiss, Name: "authsync_profile_cache_miss_total", Help: "Profile reads that missed the persisted cache."},
	{ID: authsync.MetricProfileResolveSuccess, Name: "authsync_profile_resolve_success_total", Help: "Authoritative profile fetches that returned a record."},
	{ID: authsync.MetricProfileResolveMissing, Name: "authsync_profile_resolve_missing_total", Help: "Authoritative profile fetches that found no record."},
	{ID: authsync.MetricProfileResolveFailure, Name: "authsync_profile_resolve_failure_total", Help: "Authoritative profile fetches that failed."},
	{ID: authsync.MetricProfileFetchDeduped, Name: "authsync_profile_fetch_deduped_total", Help: "Profile fetches coalesced onto an identical in-flight fetch."},
	{ID: authsync.MetricReconcileStarted, Name: "authsync_reconcile_started_total", Help: "Reconciliation flows started."},
	{ID: authsync.MetricReconcileCommitted, Name: "authsync_reconcile_committed_total", Help: "Reconciliation flows that committed their result."},
	{ID: authsync.MetricReconcileDiscarded, Name: "authsync_reconcile_discarded_total", Help: "Reconciliation commits discarded as stale."},
	{ID: authsync.MetricSessionCheckTimeout, Name: "authsync_session_check_timeout_total", Help: "Session checks abandoned on deadline."},
	{ID: authsync.MetricLogout, Name: "authsync_logout_total", Help: "Orderly logout operations."},
	{ID: authsync.MetricLogoutForced, Name: "authsync_logout_forced_total", Help: "Forced local clears after a failed logout sequence."},
	{ID: authsync.MetricPasswordChangeSuccess, Name: "authsync_password_change_success_total", Help: "Fully completed password changes."},
	{ID: authsync.MetricPasswordChangePartial, Name: "authsync_password_change_partial_total", Help: "Password changes whose profile flag sync failed."},
	{ID: authsync.MetricPasswordChangeFailure, Name: "authsync_password_change_failure_total", Help: "Password changes rejected before the credential rotated."},
}

// HistogramDefs is an exported constant or variable used by the session synchronizer.
var HistogramDefs = []HistogramDef{
	{ID: authsync.MetricReconcileLatency, Name: "authsync_reconcile_latency_milliseconds", Help: "Reconciliation flow latency."},
}

// HistogramBounds is an exported constant or variable used by the session synchronizer.
var HistogramBounds = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"1000",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session synchronizer.
var HistogramBoundSuffix = []string{
	"5",
	"10",
	"25",
	"50",
	"100",
	"250",
	"1000",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
