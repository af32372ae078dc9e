package authsync

import (
	"context"
	"errors"

	"github.com/toolvault/authsync/internal/retry"
)

// VerifyMFA submits a second-factor code against the challenge armed by
// [Synchronizer.Login].
//
// On success the satisfied-second-factor flag is published eagerly, before
// the profile is re-resolved, so a route guard can never observe
// "authenticated but unflagged" and bounce the user back into the MFA
// prompt. Each failure mode carries its own message because the corrective
// action differs: an expired code needs a fresh one, a missing factor needs
// a full re-authentication.
func (s *Synchronizer) VerifyMFA(ctx context.Context, code string) *OpResult {
	err := s.mfa.Verify(ctx, code)
	if err != nil {
		s.metricInc(MetricMFAFailure)
		switch {
		case errors.Is(err, ErrNoActiveFactor):
			s.emitAudit(ctx, auditEventMFAFailure, false, "", err, nil)
			return &OpResult{Error: MsgNoActiveFactor}
		case errors.Is(err, ErrCodeExpired):
			s.metricInc(MetricMFAChallengeRegenerated)
			s.emitAudit(ctx, auditEventMFAFailure, false, "", err, func() map[string]string {
				return map[string]string{"reason": "challenge_expired"}
			})
			return &OpResult{Error: MsgCodeExpired}
		case errors.Is(err, ErrInvalidCode):
			s.emitAudit(ctx, auditEventMFAFailure, false, "", err, nil)
			return &OpResult{Error: MsgInvalidCode}
		default:
			s.emitAudit(ctx, auditEventMFAFailure, false, "", err, func() map[string]string {
				return map[string]string{"reason": "transport"}
			})
			return &OpResult{Error: MsgTransportFailure}
		}
	}

	s.metricInc(MetricMFASuccess)

	stamp := s.begin()
	s.commit(stamp, func(st *State) {
		st.MFAEnabled = true
		st.Loading = true
	})

	// The session's authentication level changed; pick up the upgraded
	// token bundle before re-resolving.
	sess, serr := retry.OnTimeout(ctx, s.config.Retry.SessionCheckRetries, s.config.Retry.Backoff,
		func(ctx context.Context) (*Session, error) {
			return retry.WithTimeout(ctx, s.config.Timeouts.SessionCheck, "session check", s.backend.CurrentSession)
		})
	if serr != nil || sess == nil {
		sess = s.Snapshot().Session
	} else {
		s.enrichSession(sess)
		s.commit(stamp, func(st *State) { st.Session = sess })
	}

	identity := ""
	if sess != nil {
		identity = sess.IdentityID
	}
	s.emitAudit(ctx, auditEventMFASuccess, true, identity, nil, nil)

	if sess != nil {
		go s.resolveProfile(context.Background(), stamp, sess, true)
	} else {
		s.commit(stamp, func(st *State) { st.Loading = false })
	}

	return &OpResult{Success: true}
}
