package authsync

import (
	"errors"

	"github.com/toolvault/authsync/internal/mfa"
)

var (
	// ErrInvalidDomain is an exported constant or variable used by the session synchronizer.
	ErrInvalidDomain = errors.New("email domain not allowed")
	// ErrCredentialRejected is an exported constant or variable used by the session synchronizer.
	ErrCredentialRejected = errors.New("credential rejected")
	// ErrProfileMissing is an exported constant or variable used by the session synchronizer.
	ErrProfileMissing = errors.New("no profile for identity")
	// ErrPartialFailure is an exported constant or variable used by the session synchronizer.
	ErrPartialFailure = errors.New("password updated but profile sync failed")
	// ErrNotAuthenticated is an exported constant or variable used by the session synchronizer.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSynchronizerNotReady is an exported constant or variable used by the session synchronizer.
	ErrSynchronizerNotReady = errors.New("synchronizer not initialized")
	// ErrAlreadyStarted is an exported constant or variable used by the session synchronizer.
	ErrAlreadyStarted = errors.New("synchronizer already started")
)

// Second-factor sentinels are shared with the internal state machine so that
// backend adapters and the controller classify the same values.
var (
	// ErrNoActiveFactor is an exported constant or variable used by the session synchronizer.
	ErrNoActiveFactor = mfa.ErrNoActiveFactor
	// ErrCodeExpired is an exported constant or variable used by the session synchronizer.
	ErrCodeExpired = mfa.ErrCodeExpired
	// ErrInvalidCode is an exported constant or variable used by the session synchronizer.
	ErrInvalidCode = mfa.ErrInvalidCode
	// ErrChallengeExpired is what an [IdentityBackend] must return from
	// VerifyChallenge when the backend reports the challenge expired.
	ErrChallengeExpired = mfa.ErrChallengeExpired
	// ErrMFAUnavailable is an exported constant or variable used by the session synchronizer.
	ErrMFAUnavailable = mfa.ErrUnavailable
)

// User-visible result messages. Each failure case carries its own corrective
// action, so the messages are specific rather than generic.
const (
	// MsgInvalidDomain is an exported constant or variable used by the session synchronizer.
	MsgInvalidDomain = "Please sign in with your organization email address."
	// MsgCredentialRejected is an exported constant or variable used by the session synchronizer.
	MsgCredentialRejected = "Invalid email or password."
	// MsgTransportFailure is an exported constant or variable used by the session synchronizer.
	MsgTransportFailure = "Something went wrong. Please try again."
	// MsgNoActiveFactor is an exported constant or variable used by the session synchronizer.
	MsgNoActiveFactor = "No active authentication factor. Please sign in again."
	// MsgCodeExpired is an exported constant or variable used by the session synchronizer.
	MsgCodeExpired = "Code expired. Please enter a fresh code from your authenticator app."
	// MsgInvalidCode is an exported constant or variable used by the session synchronizer.
	MsgInvalidCode = "Invalid verification code."
	// MsgNotAuthenticated is an exported constant or variable used by the session synchronizer.
	MsgNotAuthenticated = "You must be signed in to change your password."
	// MsgPasswordUpdateFailed is an exported constant or variable used by the session synchronizer.
	MsgPasswordUpdateFailed = "Failed to update password."
	// MsgPasswordPartialFailure is an exported constant or variable used by the session synchronizer.
	MsgPasswordPartialFailure = "Password updated but profile sync failed"
)
