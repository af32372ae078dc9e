package authsync

import (
	"context"
	"sync"
	"sync/atomic"

	internalaudit "github.com/toolvault/authsync/internal/audit"
	"github.com/toolvault/authsync/internal/kv"
	internalmetrics "github.com/toolvault/authsync/internal/metrics"
	"github.com/toolvault/authsync/internal/mfa"
	"github.com/toolvault/authsync/profile"
)

// Synchronizer is the sole owner of published authentication state. It is
// constructed through [Builder.Build] and safe for concurrent use after
// [Synchronizer.Start].
//
// All shared mutable state (current user, session, second-factor flag, the
// sequence stamp) is only ever written here; other components receive
// read-only snapshots.
type Synchronizer struct {
	config   Config
	backend  IdentityBackend
	store    *kv.Store
	cache    *profile.Cache
	resolver *profile.Resolver
	mfa      *mfa.Controller
	audit    *internalaudit.Dispatcher
	metrics  *internalmetrics.Metrics
	clientID string

	signedOutHook func()

	mu          sync.Mutex
	state       State
	watchers    map[int]chan State
	nextWatcher int

	// seq is the monotonic sequence stamp. Every reconciliation (startup
	// check, push notification, login, post-MFA refresh) increments it at
	// start; a flow may only commit while its captured stamp is still
	// current.
	seq atomic.Uint64

	started   atomic.Bool
	runCancel context.CancelFunc
	runDone   chan struct{}
}

// Start performs the initial reconciliation and begins consuming the
// backend's push notification channel. It returns once the loop is running;
// the initial reconciliation completes asynchronously.
func (s *Synchronizer) Start(ctx context.Context) error {
	if s == nil {
		return ErrSynchronizerNotReady
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel
	s.runDone = make(chan struct{})

	events := s.backend.AuthEvents()
	go func() {
		defer close(s.runDone)
		s.reconcile(runCtx)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
				s.reconcile(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()
	return nil
}

// Close stops the notification loop and flushes the audit pipeline.
func (s *Synchronizer) Close() {
	if s == nil {
		return
	}
	if s.runCancel != nil {
		s.runCancel()
		<-s.runDone
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// Snapshot returns a copy of the current published state.
func (s *Synchronizer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns the published user profile, which may be a provisional
// cached copy while [State.Loading] is true.
func (s *Synchronizer) CurrentUser() *Profile {
	return s.Snapshot().User
}

// Session returns the published session, or nil when signed out.
func (s *Synchronizer) Session() *Session {
	return s.Snapshot().Session
}

// Loading reports whether an authoritative profile fetch is outstanding.
func (s *Synchronizer) Loading() bool {
	return s.Snapshot().Loading
}

// MFAEnabled reports whether the current identity has satisfied (or has
// verified credentials for) a second factor. UI gating only.
func (s *Synchronizer) MFAEnabled() bool {
	return s.Snapshot().MFAEnabled
}

// Subscribe registers a watcher that receives a state snapshot after every
// committed change. Slow watchers miss intermediate snapshots rather than
// blocking commits. The returned cancel function releases the watcher.
func (s *Synchronizer) Subscribe(buffer int) (<-chan State, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan State, buffer)

	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// MetricsSnapshot returns a deep copy of all recorded metrics.
func (s *Synchronizer) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Synchronizer) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// begin opens a new reconciliation flow and returns its stamp. Any flow still
// holding an older stamp becomes stale the moment this returns.
func (s *Synchronizer) begin() uint64 {
	return s.seq.Add(1)
}

// commit applies mutate to the published state iff stamp is still current.
// The return value reports whether the commit happened; stale results are
// discarded unconditionally, which makes reconciliation last-writer-wins by
// start order rather than completion order.
func (s *Synchronizer) commit(stamp uint64, mutate func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.Load() != stamp {
		s.metricInc(MetricReconcileDiscarded)
		return false
	}
	mutate(&s.state)
	snap := s.state
	for _, w := range s.watchers {
		select {
		case w <- snap:
		default:
		}
	}
	return true
}

func clearedState(state *State) {
	state.User = nil
	state.Session = nil
	state.Loading = false
	state.MFAEnabled = false
}
