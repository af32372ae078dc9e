package authsync

import (
	"context"
	"errors"
	"strings"

	"github.com/toolvault/authsync/internal/retry"
	"github.com/toolvault/authsync/internal/token"
)

// Login verifies credentials and establishes session state.
//
// The email is normalized and validated against the allowed organizational
// domain before any network call. Credential verification retries without
// bound on timeouts but gives up immediately on an explicit rejection. When a
// second factor is required, the call returns MFARequired without publishing
// a user; otherwise the session is published immediately with the cached
// profile and authoritative resolution continues asynchronously; login
// latency is never gated on profile-fetch latency.
func (s *Synchronizer) Login(ctx context.Context, email, password string) *LoginResult {
	email = strings.ToLower(strings.TrimSpace(email))
	if !s.emailAllowed(email) {
		s.metricInc(MetricLoginDomainRejected)
		s.emitAudit(ctx, auditEventLoginDomainRejected, false, "", ErrInvalidDomain, func() map[string]string {
			return map[string]string{"email": email}
		})
		return &LoginResult{Error: MsgInvalidDomain}
	}

	stamp := s.begin()

	sess, err := retry.OnTimeout(ctx, -1, s.config.Retry.Backoff,
		func(ctx context.Context) (*Session, error) {
			return retry.WithTimeout(ctx, s.config.Timeouts.CredentialVerify, "credential verify",
				func(ctx context.Context) (*Session, error) {
					return s.backend.VerifyCredentials(ctx, email, password)
				})
		})
	if err != nil {
		s.metricInc(MetricLoginFailure)
		if errors.Is(err, ErrCredentialRejected) {
			s.emitAudit(ctx, auditEventLoginFailure, false, "", ErrCredentialRejected, func() map[string]string {
				return map[string]string{"email": email, "reason": "credential_rejected"}
			})
			return &LoginResult{Error: MsgCredentialRejected}
		}
		s.emitAudit(ctx, auditEventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{"email": email, "reason": "transport"}
		})
		return &LoginResult{Error: MsgTransportFailure}
	}

	s.enrichSession(sess)

	enabled, eerr := s.mfa.CheckEnabled(ctx)
	if eerr != nil {
		enabled = false
	}
	if enabled && sess.AssuranceLevel != token.AAL2 {
		if cerr := s.mfa.BeginChallenge(ctx); cerr != nil {
			s.metricInc(MetricLoginFailure)
			s.emitAudit(ctx, auditEventLoginFailure, false, sess.IdentityID, cerr, func() map[string]string {
				return map[string]string{"reason": "mfa_challenge_failed"}
			})
			return &LoginResult{Error: MsgTransportFailure}
		}
		s.metricInc(MetricMFARequired)
		s.emitAudit(ctx, auditEventMFARequired, true, sess.IdentityID, nil, nil)
		// No resolved user is exposed until the second factor passes.
		s.commit(stamp, func(st *State) {
			st.Session = sess
			st.User = nil
			st.MFAEnabled = false
			st.Loading = false
		})
		return &LoginResult{Success: true, MFARequired: true}
	}

	cached := s.cache.Read(ctx, sess.IdentityID)
	if cached != nil {
		s.metricInc(MetricProfileCacheHit)
	} else {
		s.metricInc(MetricProfileCacheMiss)
	}

	s.commit(stamp, func(st *State) {
		st.Session = sess
		st.User = cached
		st.MFAEnabled = enabled
		st.Loading = true
	})
	s.metricInc(MetricLoginSuccess)
	s.emitAudit(ctx, auditEventLoginSuccess, true, sess.IdentityID, nil, nil)

	// Detached: resolution must outlive the caller's request context.
	go s.resolveProfile(context.Background(), stamp, sess, true)

	return &LoginResult{Success: true}
}

func (s *Synchronizer) emailAllowed(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return email[at+1:] == strings.ToLower(s.config.Domain.AllowedDomain)
}
