package authsync

import (
	"context"
	"log"
	"time"

	"github.com/toolvault/authsync/internal/retry"
	"github.com/toolvault/authsync/internal/token"
	"github.com/toolvault/authsync/profile"
)

// reconcile runs the full state reconciliation protocol. It is invoked at
// startup and for every backend-pushed auth notification. Multiple
// reconciliations may be in flight at once; the stamp captured at begin()
// decides which one is allowed to commit.
func (s *Synchronizer) reconcile(ctx context.Context) {
	stamp := s.begin()
	s.metricInc(MetricReconcileStarted)
	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveLatency(time.Since(started))
		}
	}()

	s.commit(stamp, func(st *State) { st.Loading = true })

	sess, err := retry.OnTimeout(ctx, s.config.Retry.SessionCheckRetries, s.config.Retry.Backoff,
		func(ctx context.Context) (*Session, error) {
			return retry.WithTimeout(ctx, s.config.Timeouts.SessionCheck, "session check", s.backend.CurrentSession)
		})
	if err != nil {
		if retry.IsTimeout(err) {
			s.metricInc(MetricSessionCheckTimeout)
			// An unreadable session is indistinguishable from a corrupt
			// one; wipe the fragments and start clean.
			s.sweepSessionFragments(ctx)
		}
		s.mfa.Reset()
		if s.commit(stamp, clearedState) {
			s.emitAudit(ctx, auditEventReconcile, false, "", err, nil)
		}
		return
	}
	if sess == nil {
		s.mfa.Reset()
		s.commit(stamp, clearedState)
		return
	}

	s.enrichSession(sess)

	enabled, eerr := s.mfa.CheckEnabled(ctx)
	if eerr != nil {
		// Gating only; the backend still enforces the factor.
		enabled = false
	}

	cached := s.cache.Read(ctx, sess.IdentityID)
	if cached != nil {
		s.metricInc(MetricProfileCacheHit)
	} else {
		s.metricInc(MetricProfileCacheMiss)
	}

	// Optimistic render: provisional cached profile, loading stays true
	// until the authoritative fetch settles.
	s.commit(stamp, func(st *State) {
		st.Session = sess
		st.User = cached
		st.MFAEnabled = enabled
		st.Loading = true
	})

	go s.resolveProfile(ctx, stamp, sess, false)
}

// resolveProfile finishes a flow by reconciling the authoritative profile
// fetch into published state, still guarded by the flow's stamp.
//
// The two failure shapes are deliberately distinct: a definitively missing
// profile forces a sign-out (an authenticated identity with no application
// record is not a valid user), while an unexpected fetch failure either
// leaves the provisional copy standing (reconcile path) or synthesizes a
// least-privilege Observer profile (login path) so the UI degrades instead
// of breaking.
func (s *Synchronizer) resolveProfile(ctx context.Context, stamp uint64, sess *Session, synthesizeOnError bool) {
	rec, err := s.resolver.Resolve(ctx, sess.IdentityID)
	switch {
	case err == nil && rec != nil:
		s.metricInc(MetricProfileResolveSuccess)
		if s.commit(stamp, func(st *State) {
			st.User = rec
			st.Loading = false
		}) {
			s.metricInc(MetricReconcileCommitted)
		}
	case err == nil && rec == nil:
		s.metricInc(MetricProfileResolveMissing)
		s.emitAudit(ctx, auditEventProfileMissing, false, sess.IdentityID, ErrProfileMissing, nil)
		s.forceSignOut(ctx)
		s.mfa.Reset()
		s.commit(stamp, clearedState)
	default:
		s.metricInc(MetricProfileResolveFailure)
		if synthesizeOnError {
			observer := profile.NewObserver(sess.IdentityID, sess.Email)
			s.commit(stamp, func(st *State) {
				st.User = observer
				st.Loading = false
			})
			return
		}
		// The provisional cached copy (possibly nil) stands.
		s.commit(stamp, func(st *State) { st.Loading = false })
	}
}

// enrichSession fills session fields the backend left blank from the access
// token's claims. Best-effort: an uninspectable token changes nothing.
func (s *Synchronizer) enrichSession(sess *Session) {
	if sess == nil || sess.AccessToken == "" {
		return
	}
	claims, err := token.Inspect(sess.AccessToken)
	if err != nil {
		return
	}
	if sess.IdentityID == "" {
		sess.IdentityID = claims.IdentityID
	}
	if sess.Email == "" {
		sess.Email = claims.Email
	}
	if sess.AssuranceLevel == "" {
		sess.AssuranceLevel = claims.AssuranceLevel
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = claims.IssuedAt
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = claims.ExpiresAt
	}
}

// forceSignOut is the best-effort backend sign-out used when local state is
// being discarded regardless of the outcome.
func (s *Synchronizer) forceSignOut(ctx context.Context) {
	_, err := retry.WithTimeout(ctx, s.config.Timeouts.SignOut, "sign out", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.backend.SignOut(ctx)
	})
	if err != nil {
		log.Print("authsync: backend sign-out failed")
	}
}

func (s *Synchronizer) sweepSessionFragments(ctx context.Context) {
	if _, err := s.store.DeletePrefix(ctx, s.config.Storage.SessionPrefix); err != nil {
		log.Print("authsync: session fragment sweep failed")
	}
}

func (s *Synchronizer) sweepAllAuthKeys(ctx context.Context) {
	if _, err := s.store.DeletePrefix(ctx, s.config.Storage.ProfilePrefix); err != nil {
		log.Print("authsync: profile cache sweep failed")
	}
	s.sweepSessionFragments(ctx)
}
