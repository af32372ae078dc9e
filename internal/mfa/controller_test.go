package mfa

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeFactorBackend struct {
	factors []Factor

	challenges     int
	verifications  []string
	expireNext     bool
	acceptCode     string
	listErr        error
	challengeDelay time.Duration
}

func (f *fakeFactorBackend) deps() Deps {
	return Deps{
		ListFactors: func(ctx context.Context) ([]Factor, error) {
			if f.listErr != nil {
				return nil, f.listErr
			}
			return f.factors, nil
		},
		CreateChallenge: func(ctx context.Context, factorID string) (*Challenge, error) {
			if f.challengeDelay > 0 {
				select {
				case <-time.After(f.challengeDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			f.challenges++
			return &Challenge{
				ID:       fmt.Sprintf("ch-%d", f.challenges),
				FactorID: factorID,
				IssuedAt: time.Now(),
			}, nil
		},
		VerifyChallenge: func(ctx context.Context, factorID, challengeID, code string) error {
			f.verifications = append(f.verifications, challengeID+":"+code)
			if f.expireNext {
				f.expireNext = false
				return ErrChallengeExpired
			}
			if code != f.acceptCode {
				return ErrInvalidCode
			}
			return nil
		},
	}
}

func testTimeouts() Timeouts {
	return Timeouts{Challenge: time.Second, Verify: time.Second}
}

func verifiedTOTPFactor() []Factor {
	return []Factor{{ID: "f1", Type: FactorTOTP, Verified: true}}
}

func TestCheckEnabledRequiresVerifiedTOTP(t *testing.T) {
	backend := &fakeFactorBackend{factors: []Factor{
		{ID: "f1", Type: FactorTOTP, Verified: false},
		{ID: "f2", Type: "phone", Verified: true},
	}}
	c := NewController(backend.deps(), testTimeouts())

	enabled, err := c.CheckEnabled(context.Background())
	if err != nil {
		t.Fatalf("CheckEnabled failed: %v", err)
	}
	if enabled {
		t.Fatal("unverified or non-totp factors must not count as enabled")
	}

	backend.factors = verifiedTOTPFactor()
	enabled, err = c.CheckEnabled(context.Background())
	if err != nil {
		t.Fatalf("CheckEnabled failed: %v", err)
	}
	if !enabled {
		t.Fatal("expected verified totp factor to enable mfa")
	}
}

func TestVerifyWithoutFactorFailsFast(t *testing.T) {
	backend := &fakeFactorBackend{}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.Verify(context.Background(), "123456"); !errors.Is(err, ErrNoActiveFactor) {
		t.Fatalf("expected ErrNoActiveFactor, got %v", err)
	}
	if len(backend.verifications) != 0 {
		t.Fatal("expected no backend submission without an armed factor")
	}
}

func TestBeginChallengeArmsAndIssues(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor()}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge failed: %v", err)
	}
	if c.State() != StateChallenged {
		t.Fatalf("expected StateChallenged, got %v", c.State())
	}
	if c.ActiveChallengeID() != "ch-1" {
		t.Fatalf("expected stored challenge, got %q", c.ActiveChallengeID())
	}
}

func TestVerifySuccessClearsStateAndChallenge(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor(), acceptCode: "654321"}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge failed: %v", err)
	}
	if err := c.Verify(context.Background(), "654321"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if c.State() != StateVerified {
		t.Fatalf("expected StateVerified, got %v", c.State())
	}
	if c.ActiveChallengeID() != "" {
		t.Fatal("expected challenge cleared after success")
	}
	if err := c.Verify(context.Background(), "654321"); !errors.Is(err, ErrNoActiveFactor) {
		t.Fatalf("factor must be cleared after success, got %v", err)
	}
}

func TestVerifyInvalidCodeKeepsChallengeReusable(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor(), acceptCode: "654321"}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge failed: %v", err)
	}
	if err := c.Verify(context.Background(), "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if c.ActiveChallengeID() != "ch-1" {
		t.Fatal("invalid code must leave the challenge in place")
	}
	if err := c.Verify(context.Background(), "654321"); err != nil {
		t.Fatalf("expected same challenge to remain usable, got %v", err)
	}
}

func TestVerifyExpiryRegeneratesAndNeverResubmits(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor(), acceptCode: "654321", expireNext: true}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge failed: %v", err)
	}
	if err := c.Verify(context.Background(), "111111"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}

	// Exactly one submission happened; the stale code was not retried
	// against the regenerated challenge.
	if len(backend.verifications) != 1 {
		t.Fatalf("expected a single submission, got %v", backend.verifications)
	}
	if backend.challenges != 2 {
		t.Fatalf("expected regenerated challenge, got %d challenges", backend.challenges)
	}
	if c.ActiveChallengeID() != "ch-2" {
		t.Fatalf("expected fresh challenge armed, got %q", c.ActiveChallengeID())
	}

	// A fresh code against the fresh challenge succeeds.
	if err := c.Verify(context.Background(), "654321"); err != nil {
		t.Fatalf("Verify with fresh code failed: %v", err)
	}
}

func TestVerifyCreatesChallengeWhenNoneOutstanding(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor(), acceptCode: "654321"}
	c := NewController(backend.deps(), testTimeouts())

	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("BeginChallenge failed: %v", err)
	}
	c.Reset()
	if err := c.BeginChallenge(context.Background()); err != nil {
		t.Fatalf("re-arm failed: %v", err)
	}

	// Drop the challenge but keep the factor armed, simulating a discarded
	// challenge from an earlier attempt.
	c.mu.Lock()
	c.challenge = nil
	c.mu.Unlock()

	if err := c.Verify(context.Background(), "654321"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if backend.challenges != 3 {
		t.Fatalf("expected Verify to mint a challenge first, got %d", backend.challenges)
	}
}

func TestChallengeTimeoutClassified(t *testing.T) {
	backend := &fakeFactorBackend{factors: verifiedTOTPFactor(), challengeDelay: 50 * time.Millisecond}
	c := NewController(backend.deps(), Timeouts{Challenge: 5 * time.Millisecond, Verify: time.Second})

	err := c.BeginChallenge(context.Background())
	if err == nil {
		t.Fatal("expected challenge timeout")
	}
}
