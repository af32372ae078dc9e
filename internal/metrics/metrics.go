package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes a counter or histogram slot.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginDomainRejected
	MetricMFARequired
	MetricMFASuccess
	MetricMFAFailure
	MetricMFAChallengeRegenerated
	MetricProfileCacheHit
	MetricProfileCacheMiss
	MetricProfileResolveSuccess
	MetricProfileResolveMissing
	MetricProfileResolveFailure
	MetricProfileFetchDeduped
	MetricReconcileStarted
	MetricReconcileCommitted
	MetricReconcileDiscarded
	MetricSessionCheckTimeout
	MetricLogout
	MetricLogoutForced
	MetricPasswordChangeSuccess
	MetricPasswordChangePartial
	MetricPasswordChangeFailure
	MetricReconcileLatency

	MetricIDCount
)

// HistogramBuckets is the number of fixed latency buckets.
const HistogramBuckets = 8

// Bucket upper bounds in milliseconds; the last bucket is +Inf.
var bucketBoundsMillis = [HistogramBuckets - 1]int64{5, 10, 25, 50, 100, 250, 1000}

// Config controls whether metric writes are recorded at all.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

type paddedCounter struct {
	value uint64
	_     [7]uint64
}

// Metrics holds atomic counters and the reconcile latency histogram. A nil or
// disabled Metrics is a valid no-op receiver.
type Metrics struct {
	enabled    bool
	latency    bool
	counters   [MetricIDCount]paddedCounter
	histogram  [HistogramBuckets]paddedCounter
	histoCount paddedCounter
}

// Snapshot is a point-in-time deep copy of all recorded metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc adds one to the counter at id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get returns the current value of the counter at id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// ObserveLatency records a reconcile duration into the fixed bucket set.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m == nil || !m.latency {
		return
	}
	ms := d.Milliseconds()
	bucket := HistogramBuckets - 1
	for i, bound := range bucketBoundsMillis {
		if ms <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histogram[bucket].value, 1)
	atomic.AddUint64(&m.histoCount.value, 1)
}

// Snapshot deep-copies all counters and histogram buckets.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   make(map[MetricID]uint64, MetricIDCount),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v != 0 {
			snap.Counters[id] = v
		}
	}
	if m.latency {
		buckets := make([]uint64, HistogramBuckets)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histogram[i].value)
		}
		snap.Histograms[MetricReconcileLatency] = buckets
	}
	return snap
}
