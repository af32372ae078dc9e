package authsync

import (
	"context"
	"log"

	"github.com/toolvault/authsync/internal/retry"
)

// Logout signs the session out and guarantees a clean local slate.
//
// The backend sign-out is best-effort: its failure is logged, never fatal.
// Persisted keys are swept by prefix for both the application and the
// backend namespaces: stale partial session fragments make a later login
// silently misbehave, so a single well-known key is not enough. In-memory
// state is cleared before the navigation hook runs, so any "confirm before
// leaving" guard keyed on "is a user logged in" observes the cleared state
// first. If anything in this sequence fails unexpectedly, the fallback
// clears everything unconditionally and forces navigation anyway: logout
// must never leave the user stuck in an authenticated-looking broken state.
func (s *Synchronizer) Logout(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Print("authsync: logout sequence failed, forcing local clear")
			s.forceLogout(ctx)
		}
	}()

	identity := ""
	if sess := s.Snapshot().Session; sess != nil {
		identity = sess.IdentityID
	}

	if _, err := retry.WithTimeout(ctx, s.config.Timeouts.SignOut, "sign out", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.backend.SignOut(ctx)
	}); err != nil {
		log.Print("authsync: backend sign-out failed")
	}

	s.sweepAllAuthKeys(ctx)

	stamp := s.begin()
	s.mfa.Reset()
	s.commit(stamp, clearedState)
	s.metricInc(MetricLogout)
	s.emitAudit(ctx, auditEventLogout, true, identity, nil, nil)

	if s.signedOutHook != nil {
		s.signedOutHook()
	}
}

func (s *Synchronizer) forceLogout(ctx context.Context) {
	s.metricInc(MetricLogoutForced)
	s.sweepAllAuthKeys(context.WithoutCancel(ctx))

	stamp := s.begin()
	s.mfa.Reset()
	s.commit(stamp, clearedState)
	s.emitAudit(ctx, auditEventLogoutForced, false, "", nil, nil)

	if s.signedOutHook != nil {
		s.signedOutHook()
	}
}
