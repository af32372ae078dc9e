package authsync

import (
	"context"

	"github.com/toolvault/authsync/internal/retry"
)

// UpdatePassword rotates the credential at the backend, then clears the
// must-change-password flag on the profile, then re-resolves.
//
// The two writes are separable outcomes: a rotated credential whose flag
// failed to sync reports the distinct partial-failure message rather than a
// generic error, because the user's password DID change.
func (s *Synchronizer) UpdatePassword(ctx context.Context, newPassword string) *OpResult {
	current := s.CurrentUser()
	if current == nil {
		return &OpResult{Error: MsgNotAuthenticated}
	}

	if _, err := retry.WithTimeout(ctx, s.config.Timeouts.PasswordUpdate, "password update",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.backend.UpdateCredential(ctx, newPassword)
		}); err != nil {
		s.metricInc(MetricPasswordChangeFailure)
		s.emitAudit(ctx, auditEventPasswordChange, false, current.ID, err, nil)
		return &OpResult{Error: MsgPasswordUpdateFailed}
	}

	updated := *current
	updated.MustChangePassword = false
	if err := s.backend.UpdateProfile(ctx, &updated); err != nil {
		s.metricInc(MetricPasswordChangePartial)
		s.emitAudit(ctx, auditEventPasswordChange, false, current.ID, ErrPartialFailure, func() map[string]string {
			return map[string]string{"reason": "flag_sync_failed"}
		})
		return &OpResult{Error: MsgPasswordPartialFailure}
	}

	s.cache.Write(ctx, &updated)
	s.metricInc(MetricPasswordChangeSuccess)
	s.emitAudit(ctx, auditEventPasswordChange, true, current.ID, nil, nil)

	stamp := s.begin()
	s.commit(stamp, func(st *State) {
		st.User = &updated
		st.Loading = true
	})
	if sess := s.Snapshot().Session; sess != nil {
		go s.resolveProfile(context.Background(), stamp, sess, false)
	} else {
		s.commit(stamp, func(st *State) { st.Loading = false })
	}

	return &OpResult{Success: true}
}
