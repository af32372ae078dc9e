package authsync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fakeBackend is a scriptable IdentityBackend. Unset hooks fall back to
// permissive defaults so happy-path tests stay short.
type fakeBackend struct {
	mu sync.Mutex

	verifyFn          func(ctx context.Context, email, password string) (*Session, error)
	sessionFn         func(ctx context.Context) (*Session, error)
	signOutErr        error
	updateCredErr     error
	factors           []Factor
	listFactorsErr    error
	challengeFn       func(ctx context.Context, factorID string) (*Challenge, error)
	verifyChallengeFn func(ctx context.Context, factorID, challengeID, code string) error
	fetchFn           func(ctx context.Context, identityID string) (*Profile, error)
	updateProfileFn   func(ctx context.Context, rec *Profile) error

	events chan AuthEvent

	verifyCalls          int
	sessionCalls         int
	signOutCalls         int
	challengeCalls       int
	verifyChallengeCalls int
	fetchCalls           int
	updateCredCalls      int
	updateProfileCalls   int
}

type fakeBackendCalls struct {
	Verify          int
	Session         int
	SignOut         int
	Challenge       int
	VerifyChallenge int
	Fetch           int
	UpdateCred      int
	UpdateProfile   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events: make(chan AuthEvent, 4),
	}
}

func (b *fakeBackend) snapshotCalls() fakeBackendCalls {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fakeBackendCalls{
		Verify:          b.verifyCalls,
		Session:         b.sessionCalls,
		SignOut:         b.signOutCalls,
		Challenge:       b.challengeCalls,
		VerifyChallenge: b.verifyChallengeCalls,
		Fetch:           b.fetchCalls,
		UpdateCred:      b.updateCredCalls,
		UpdateProfile:   b.updateProfileCalls,
	}
}

func (b *fakeBackend) VerifyCredentials(ctx context.Context, email, password string) (*Session, error) {
	b.mu.Lock()
	b.verifyCalls++
	fn := b.verifyFn
	b.mu.Unlock()

	if fn == nil {
		return nil, ErrCredentialRejected
	}
	return fn(ctx, email, password)
}

func (b *fakeBackend) CurrentSession(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	b.sessionCalls++
	fn := b.sessionFn
	b.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

func (b *fakeBackend) SignOut(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signOutCalls++
	return b.signOutErr
}

func (b *fakeBackend) UpdateCredential(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateCredCalls++
	return b.updateCredErr
}

func (b *fakeBackend) ListFactors(context.Context) ([]Factor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listFactorsErr != nil {
		return nil, b.listFactorsErr
	}
	out := make([]Factor, len(b.factors))
	copy(out, b.factors)
	return out, nil
}

func (b *fakeBackend) CreateChallenge(ctx context.Context, factorID string) (*Challenge, error) {
	b.mu.Lock()
	b.challengeCalls++
	n := b.challengeCalls
	fn := b.challengeFn
	b.mu.Unlock()

	if fn == nil {
		return &Challenge{
			ID:       fmt.Sprintf("ch-%d", n),
			FactorID: factorID,
			IssuedAt: time.Now(),
		}, nil
	}
	return fn(ctx, factorID)
}

func (b *fakeBackend) VerifyChallenge(ctx context.Context, factorID, challengeID, code string) error {
	b.mu.Lock()
	b.verifyChallengeCalls++
	fn := b.verifyChallengeFn
	b.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, factorID, challengeID, code)
}

func (b *fakeBackend) FetchProfile(ctx context.Context, identityID string) (*Profile, error) {
	b.mu.Lock()
	b.fetchCalls++
	fn := b.fetchFn
	b.mu.Unlock()

	if fn == nil {
		return profileFor(identityID), nil
	}
	return fn(ctx, identityID)
}

func (b *fakeBackend) UpdateProfile(ctx context.Context, rec *Profile) error {
	b.mu.Lock()
	b.updateProfileCalls++
	fn := b.updateProfileFn
	b.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, rec)
}

func (b *fakeBackend) AuthEvents() <-chan AuthEvent {
	return b.events
}

func profileFor(identityID string) *Profile {
	now := time.Now()
	return &Profile{
		ID:        identityID,
		Email:     identityID + "@toolvault.io",
		Name:      "Test User",
		Role:      RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func signTestToken(t *testing.T, identityID, email, aal string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   identityID,
		"email": email,
		"aal":   aal,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func testSession(t *testing.T, identityID, email, aal string) *Session {
	t.Helper()

	now := time.Now()
	return &Session{
		IdentityID:     identityID,
		Email:          email,
		AccessToken:    signTestToken(t, identityID, email, aal),
		RefreshToken:   uuid.NewString(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
		AssuranceLevel: aal,
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func buildTestSync(t *testing.T, backend *fakeBackend, mutate func(*Config)) (*Synchronizer, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Domain.AllowedDomain = "toolvault.io"
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := NewBuilder().
		WithConfig(cfg).
		WithBackend(backend).
		WithRedis(rdb).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return s, mr, func() {
		s.Close()
		mr.Close()
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func counterValue(s *Synchronizer, id MetricID) uint64 {
	return s.MetricsSnapshot().Counters[id]
}
