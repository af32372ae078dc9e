package mfa

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/toolvault/authsync/internal/retry"
)

// State is the lifecycle position of the second-factor flow.
type State uint8

const (
	StateDisabled State = iota
	StateEnrolling
	StateChallenged
	StateVerified
)

// FactorTOTP is the only factor type the dashboard enrolls.
const FactorTOTP = "totp"

var (
	// ErrNoActiveFactor reports a verify attempt with no armed factor; the
	// caller must re-authenticate before trying again.
	ErrNoActiveFactor = errors.New("no active mfa factor")
	// ErrCodeExpired reports that the active challenge expired; a fresh
	// challenge has been issued and a new time-based code is required.
	ErrCodeExpired = errors.New("mfa code expired")
	// ErrInvalidCode reports a wrong code against a live challenge.
	ErrInvalidCode = errors.New("invalid mfa code")
	// ErrChallengeExpired is what Deps adapters return when the backend
	// rejects a challenge as expired. It is internal to the state machine;
	// callers observe ErrCodeExpired.
	ErrChallengeExpired = errors.New("mfa challenge expired")
	// ErrUnavailable wraps transport failures from the factor backend.
	ErrUnavailable = errors.New("mfa backend unavailable")
)

// Factor mirrors the backend's durable second-factor credential. The client
// only ever reads factors.
type Factor struct {
	ID       string
	Type     string
	Verified bool
}

// Challenge is transient: it exists between creation and verified/discarded.
type Challenge struct {
	ID       string
	FactorID string
	IssuedAt time.Time
}

// Deps captures the backend capabilities the controller needs. Adapters must
// map backend-specific failures to ErrChallengeExpired and ErrInvalidCode so
// the state machine can classify them.
type Deps struct {
	ListFactors     func(ctx context.Context) ([]Factor, error)
	CreateChallenge func(ctx context.Context, factorID string) (*Challenge, error)
	VerifyChallenge func(ctx context.Context, factorID, challengeID, code string) error
}

// Timeouts bounds each backend call the controller makes.
type Timeouts struct {
	Challenge time.Duration
	Verify    time.Duration
}

// Controller holds the second-factor flow for one client. At most one
// challenge is active per login attempt.
type Controller struct {
	mu       sync.Mutex
	deps     Deps
	timeouts Timeouts

	state     State
	factorID  string
	challenge *Challenge
}

func NewController(deps Deps, timeouts Timeouts) *Controller {
	return &Controller{
		deps:     deps,
		timeouts: timeouts,
	}
}

// State returns the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveChallengeID returns the id of the outstanding challenge, if any.
func (c *Controller) ActiveChallengeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge == nil {
		return ""
	}
	return c.challenge.ID
}

// CheckEnabled reports whether the identity has a verified TOTP factor. The
// result gates UI only; authorization stays with the backend.
func (c *Controller) CheckEnabled(ctx context.Context) (bool, error) {
	factor, err := c.verifiedFactor(ctx)
	if err != nil {
		return false, err
	}
	return factor != "", nil
}

// BeginChallenge arms the first verified factor and issues a challenge for
// it. Used by login when the backend reports a second-factor requirement.
func (c *Controller) BeginChallenge(ctx context.Context) error {
	factorID, err := c.verifiedFactor(ctx)
	if err != nil {
		return err
	}
	if factorID == "" {
		return ErrNoActiveFactor
	}

	c.mu.Lock()
	c.factorID = factorID
	c.state = StateEnrolling
	c.mu.Unlock()

	return c.Challenge(ctx, factorID)
}

// Challenge asks the backend to issue a challenge for factorID and stores it
// as the single active challenge.
func (c *Controller) Challenge(ctx context.Context, factorID string) error {
	ch, err := retry.WithTimeout(ctx, c.timeouts.Challenge, "mfa challenge", func(ctx context.Context) (*Challenge, error) {
		return c.deps.CreateChallenge(ctx, factorID)
	})
	if err != nil {
		return err
	}
	if ch.IssuedAt.IsZero() {
		ch.IssuedAt = time.Now()
	}

	c.mu.Lock()
	c.factorID = factorID
	c.challenge = ch
	c.state = StateChallenged
	c.mu.Unlock()
	return nil
}

// Verify submits code against the active challenge, creating one first when
// none is outstanding.
//
// Expiry handling is deliberate: a stale 30-second TOTP code is guaranteed to
// fail against a regenerated challenge, so on an expiry signal the controller
// issues a fresh challenge and returns [ErrCodeExpired] instead of silently
// retrying the same code. An invalid code leaves the challenge reusable.
func (c *Controller) Verify(ctx context.Context, code string) error {
	c.mu.Lock()
	factorID := c.factorID
	c.mu.Unlock()
	if factorID == "" {
		return ErrNoActiveFactor
	}

	c.mu.Lock()
	challenge := c.challenge
	c.mu.Unlock()
	if challenge == nil {
		if err := c.Challenge(ctx, factorID); err != nil {
			return err
		}
		c.mu.Lock()
		challenge = c.challenge
		c.mu.Unlock()
	}

	_, err := retry.WithTimeout(ctx, c.timeouts.Verify, "mfa verify", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.deps.VerifyChallenge(ctx, factorID, challenge.ID, code)
	})
	switch {
	case err == nil:
		c.mu.Lock()
		c.challenge = nil
		c.factorID = ""
		c.state = StateVerified
		c.mu.Unlock()
		return nil
	case errors.Is(err, ErrChallengeExpired):
		c.mu.Lock()
		c.challenge = nil
		c.mu.Unlock()
		if cerr := c.Challenge(ctx, factorID); cerr != nil {
			// The expired challenge is already gone; the caller still needs
			// a fresh code either way.
			return ErrCodeExpired
		}
		return ErrCodeExpired
	case errors.Is(err, ErrInvalidCode):
		return ErrInvalidCode
	default:
		return err
	}
}

// Reset discards all second-factor state. Used on logout and on any
// reconciliation that finds no session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factorID = ""
	c.challenge = nil
	c.state = StateDisabled
}

func (c *Controller) verifiedFactor(ctx context.Context) (string, error) {
	factors, err := retry.WithTimeout(ctx, c.timeouts.Challenge, "mfa factor list", func(ctx context.Context) ([]Factor, error) {
		return c.deps.ListFactors(ctx)
	})
	if err != nil {
		return "", err
	}
	for _, f := range factors {
		if f.Type == FactorTOTP && f.Verified {
			return f.ID, nil
		}
	}
	return "", nil
}
