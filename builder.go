package authsync

import (
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	internalaudit "github.com/toolvault/authsync/internal/audit"
	"github.com/toolvault/authsync/internal/kv"
	"github.com/toolvault/authsync/internal/mfa"
	"github.com/toolvault/authsync/profile"
)

// Builder assembles a [Synchronizer]. Construction is allocation-only until
// [Builder.Build]; no I/O happens before [Synchronizer.Start].
type Builder struct {
	config        Config
	configSet     bool
	backend       IdentityBackend
	redis         redis.UniversalClient
	auditSink     AuditSink
	signedOutHook func()
	built         bool
}

// NewBuilder creates an empty [Builder].
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the configuration. Unset fields receive defaults in Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.configSet = true
	return b
}

// WithBackend sets the identity backend integration. Required.
func (b *Builder) WithBackend(backend IdentityBackend) *Builder {
	b.backend = backend
	return b
}

// WithRedis sets the durable key-value client backing the profile cache and
// the logout key sweep. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the sink receiving audit events. Optional; without it a
// [NoOpSink] is used when auditing is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithSignedOutHook installs the navigation trigger invoked by logout after
// in-memory state is cleared. Optional.
func (b *Builder) WithSignedOutHook(hook func()) *Builder {
	b.signedOutHook = hook
	return b
}

// Build validates the configuration and assembles the synchronizer.
func (b *Builder) Build() (*Synchronizer, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.backend == nil {
		return nil, errors.New("identity backend required")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if !b.configSet {
		return nil, errors.New("config required")
	}

	cfg := b.config
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	store := kv.New(b.redis)
	cache := profile.NewCache(store, cfg.Storage.ProfilePrefix)

	s := &Synchronizer{
		config:        cfg,
		backend:       b.backend,
		store:         store,
		cache:         cache,
		clientID:      uuid.NewString(),
		signedOutHook: b.signedOutHook,
		watchers:      make(map[int]chan State),
	}

	s.metrics = NewMetrics(cfg.Metrics)
	s.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	s.resolver = profile.NewResolver(b.backend.FetchProfile, cache, cfg.Timeouts.ProfileFetch)
	s.resolver.OnDeduped = func() { s.metricInc(MetricProfileFetchDeduped) }

	s.mfa = mfa.NewController(mfa.Deps{
		ListFactors:     b.backend.ListFactors,
		CreateChallenge: b.backend.CreateChallenge,
		VerifyChallenge: b.backend.VerifyChallenge,
	}, mfa.Timeouts{
		Challenge: cfg.Timeouts.MFAChallenge,
		Verify:    cfg.Timeouts.MFAVerify,
	})

	b.built = true
	return s, nil
}
