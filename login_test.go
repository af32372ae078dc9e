package authsync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginRejectsForeignDomainBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@elsewhere.com", "pw")
	if res.Success {
		t.Fatal("expected rejection for foreign domain")
	}
	if res.Error != MsgInvalidDomain {
		t.Fatalf("expected %q, got %q", MsgInvalidDomain, res.Error)
	}
	if calls := backend.snapshotCalls(); calls.Verify != 0 {
		t.Fatalf("expected no credential verification for rejected domain, got %d calls", calls.Verify)
	}
	if got := counterValue(s, MetricLoginDomainRejected); got != 1 {
		t.Fatalf("expected domain-rejected counter 1, got %d", got)
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	backend := newFakeBackend()
	var seen string
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		seen = email
		return testSession(t, "u1", email, "aal1"), nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "  Alice@ToolVault.IO ", "pw")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if seen != "alice@toolvault.io" {
		t.Fatalf("expected normalized email, backend saw %q", seen)
	}
}

func TestLoginCredentialRejectionIsTerminal(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(context.Context, string, string) (*Session, error) {
		return nil, ErrCredentialRejected
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "wrong")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != MsgCredentialRejected {
		t.Fatalf("expected %q, got %q", MsgCredentialRejected, res.Error)
	}
	if calls := backend.snapshotCalls(); calls.Verify != 1 {
		t.Fatalf("expected exactly one verification attempt, got %d", calls.Verify)
	}
}

func TestLoginRetriesTimedOutAttempts(t *testing.T) {
	backend := newFakeBackend()
	attempt := 0
	backend.verifyFn = func(ctx context.Context, email, _ string) (*Session, error) {
		attempt++
		if attempt == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return testSession(t, "u1", email, "aal1"), nil
	}
	s, _, done := buildTestSync(t, backend, func(cfg *Config) {
		cfg.Timeouts.CredentialVerify = 30 * time.Millisecond
		cfg.Retry.Backoff = 5 * time.Millisecond
	})
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success {
		t.Fatalf("expected success after retry, got error %q", res.Error)
	}
	if calls := backend.snapshotCalls(); calls.Verify != 2 {
		t.Fatalf("expected two verification attempts, got %d", calls.Verify)
	}
}

func TestLoginTransportFailureMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(context.Context, string, string) (*Session, error) {
		return nil, errors.New("connection refused")
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if res.Error != MsgTransportFailure {
		t.Fatalf("expected %q, got %q", MsgTransportFailure, res.Error)
	}
}

func TestLoginPublishesSessionBeforeProfileSettles(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		return testSession(t, "u1", email, "aal1"), nil
	}
	release := make(chan struct{})
	backend.fetchFn = func(ctx context.Context, identityID string) (*Profile, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return profileFor(identityID), nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}

	snap := s.Snapshot()
	if snap.Session == nil {
		t.Fatal("expected session published immediately after login")
	}
	if !snap.Loading {
		t.Fatal("expected loading while authoritative fetch is outstanding")
	}
	if snap.User != nil {
		t.Fatal("expected no provisional user with an empty cache")
	}

	close(release)
	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.User != nil && !snap.Loading
	}, "authoritative profile never settled")

	if got := s.CurrentUser().ID; got != "u1" {
		t.Fatalf("expected resolved profile u1, got %q", got)
	}
}

func TestLoginSynthesizesObserverOnFetchFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		return testSession(t, "u1", email, "aal1"), nil
	}
	backend.fetchFn = func(context.Context, string) (*Profile, error) {
		return nil, errors.New("profile service down")
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}

	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.User != nil && !snap.Loading
	}, "synthesized profile never published")

	user := s.CurrentUser()
	if user.Role != RoleObserver {
		t.Fatalf("expected least-privilege observer role, got %q", user.Role)
	}
	if user.ID != "u1" || user.Email != "alice@toolvault.io" {
		t.Fatalf("expected identity carried onto synthesized profile, got %+v", user)
	}
	if s.Session() == nil {
		t.Fatal("expected session to survive a degraded profile fetch")
	}
}

func TestLoginMissingProfileForcesSignOut(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		return testSession(t, "u1", email, "aal1"), nil
	}
	backend.fetchFn = func(context.Context, string) (*Profile, error) {
		return nil, nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success {
		t.Fatalf("expected initial success, got error %q", res.Error)
	}

	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Session == nil && snap.User == nil && !snap.Loading
	}, "missing profile never forced a sign-out")

	if calls := backend.snapshotCalls(); calls.SignOut == 0 {
		t.Fatal("expected backend sign-out for identity without a profile")
	}
	if got := counterValue(s, MetricProfileResolveMissing); got != 1 {
		t.Fatalf("expected resolve-missing counter 1, got %d", got)
	}
}

func TestLoginRequiresSecondFactor(t *testing.T) {
	backend := newFakeBackend()
	backend.factors = []Factor{{ID: "factor-1", Type: "totp", Verified: true}}
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		return testSession(t, "u1", email, "aal1"), nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success || !res.MFARequired {
		t.Fatalf("expected MFA-required result, got %+v", res)
	}

	snap := s.Snapshot()
	if snap.Session == nil {
		t.Fatal("expected session held for the pending challenge")
	}
	if snap.User != nil {
		t.Fatal("expected no user exposed before the second factor passes")
	}
	if snap.MFAEnabled {
		t.Fatal("expected second-factor flag unset until verification")
	}

	calls := backend.snapshotCalls()
	if calls.Challenge != 1 {
		t.Fatalf("expected one challenge created, got %d", calls.Challenge)
	}
	if calls.Fetch != 0 {
		t.Fatalf("expected no profile fetch before verification, got %d", calls.Fetch)
	}
}

func TestLoginSkipsSecondFactorAtHigherAssurance(t *testing.T) {
	backend := newFakeBackend()
	backend.factors = []Factor{{ID: "factor-1", Type: "totp", Verified: true}}
	backend.verifyFn = func(_ context.Context, email, _ string) (*Session, error) {
		return testSession(t, "u1", email, "aal2"), nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success || res.MFARequired {
		t.Fatalf("expected direct success for aal2 session, got %+v", res)
	}
	if !s.MFAEnabled() {
		t.Fatal("expected second-factor flag for an enrolled identity")
	}
}

func TestLoginFillsSessionFromTokenClaims(t *testing.T) {
	backend := newFakeBackend()
	backend.verifyFn = func(context.Context, string, string) (*Session, error) {
		// The backend returns a bare token bundle; everything else comes
		// from the token's claims.
		return &Session{AccessToken: signTestToken(t, "u1", "alice@toolvault.io", "aal1")}, nil
	}
	s, _, done := buildTestSync(t, backend, nil)
	defer done()

	res := s.Login(context.Background(), "alice@toolvault.io", "pw")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}

	sess := s.Session()
	if sess == nil {
		t.Fatal("expected session")
	}
	if sess.IdentityID != "u1" || sess.Email != "alice@toolvault.io" {
		t.Fatalf("expected identity fields from token claims, got %+v", sess)
	}
	if sess.AssuranceLevel != "aal1" {
		t.Fatalf("expected assurance level from token claims, got %q", sess.AssuranceLevel)
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatal("expected expiry from token claims")
	}
}
