package authsync

import (
	"context"
	"time"

	internalaudit "github.com/toolvault/authsync/internal/audit"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginDomainRejected = "login_domain_rejected"
	auditEventMFARequired         = "mfa_required"
	auditEventMFASuccess          = "mfa_success"
	auditEventMFAFailure          = "mfa_failure"
	auditEventReconcile           = "reconcile"
	auditEventProfileMissing      = "profile_missing_signout"
	auditEventLogout              = "logout"
	auditEventLogoutForced        = "logout_forced"
	auditEventPasswordChange      = "password_change"
)

func (s *Synchronizer) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identityID string,
	cause error,
	metadata func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp:  time.Now(),
		EventType:  eventType,
		IdentityID: identityID,
		ClientID:   s.clientID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	s.audit.Emit(ctx, event)
}

// AuditDropped returns the number of audit events discarded because of
// backpressure.
func (s *Synchronizer) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}
