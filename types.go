package authsync

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/toolvault/authsync/internal/audit"
	"github.com/toolvault/authsync/internal/mfa"
	"github.com/toolvault/authsync/profile"
)

// Profile is the application user record, distinct from the identity
// backend's credential record. See [profile.Record].
type Profile = profile.Record

// Role is the dashboard access tier carried on a [Profile].
type Role = profile.Role

const (
	// RoleAdmin is an exported constant or variable used by the session synchronizer.
	RoleAdmin = profile.RoleAdmin
	// RoleOwner is an exported constant or variable used by the session synchronizer.
	RoleOwner = profile.RoleOwner
	// RoleObserver is an exported constant or variable used by the session synchronizer.
	RoleObserver = profile.RoleObserver
)

// Session is the opaque token bundle issued by the identity backend. It is
// owned exclusively by [Synchronizer]: replaced wholesale on login/refresh,
// cleared on logout.
type Session struct {
	IdentityID   string
	Email        string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time

	// AssuranceLevel is the backend's authentication level for this session
	// ("aal1" after the credential check, "aal2" after a second factor).
	AssuranceLevel string
}

// Factor is a durable backend-side second-factor credential; the client only
// ever reads factors.
type Factor = mfa.Factor

// Challenge is a transient second-factor challenge.
type Challenge = mfa.Challenge

// AuthEventType classifies a backend-pushed auth-state notification.
type AuthEventType string

const (
	// AuthSignedIn is an exported constant or variable used by the session synchronizer.
	AuthSignedIn AuthEventType = "SIGNED_IN"
	// AuthSignedOut is an exported constant or variable used by the session synchronizer.
	AuthSignedOut AuthEventType = "SIGNED_OUT"
	// AuthTokenRefreshed is an exported constant or variable used by the session synchronizer.
	AuthTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is a push-style notification from the identity backend (sign-in
// elsewhere, token refresh, sign-out elsewhere). Every event triggers a full
// stamp-guarded reconciliation; the payload is advisory.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// IdentityBackend is the interface callers must implement to integrate
// authsync with their identity service. It mirrors the backend's assumed
// capability surface: credential verification, session lookup, second-factor
// challenge/verify, credential update, and the profile store keyed by
// identity id.
//
// Error contract: VerifyCredentials returns [ErrCredentialRejected] for an
// explicit credential failure (never retried); VerifyChallenge returns
// [ErrChallengeExpired] or [ErrInvalidCode] for those backend outcomes;
// FetchProfile returns (nil, nil) when the backend definitively has no record
// for the identity id.
type IdentityBackend interface {
	VerifyCredentials(ctx context.Context, email, password string) (*Session, error)
	CurrentSession(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context) error
	UpdateCredential(ctx context.Context, newPassword string) error

	ListFactors(ctx context.Context) ([]Factor, error)
	CreateChallenge(ctx context.Context, factorID string) (*Challenge, error)
	VerifyChallenge(ctx context.Context, factorID, challengeID, code string) error

	FetchProfile(ctx context.Context, identityID string) (*Profile, error)
	UpdateProfile(ctx context.Context, rec *Profile) error

	AuthEvents() <-chan AuthEvent
}

// LoginResult is returned by [Synchronizer.Login].
type LoginResult struct {
	Success     bool
	MFARequired bool
	Error       string
}

// OpResult is returned by [Synchronizer.VerifyMFA] and
// [Synchronizer.UpdatePassword].
type OpResult struct {
	Success bool
	Error   string
}

// State is the reactive projection published to the UI layer. User may be a
// provisional cached record while Loading is true; it is authoritative once
// Loading drops to false.
type State struct {
	User       *Profile
	Session    *Session
	Loading    bool
	MFAEnabled bool
}

// AuditEvent is a structured audit record emitted by the synchronizer.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
