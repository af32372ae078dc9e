package authsync

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authsync APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Domain   DomainConfig
	Timeouts TimeoutConfig
	Retry    RetryConfig
	Storage  StorageConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
DOMAIN CONFIG
====================================
*/

// DomainConfig restricts which email domain may sign in. The check is local
// pre-network validation; the backend still enforces its own rules.
type DomainConfig struct {
	AllowedDomain string // e.g. "toolvault.io"
}

/*
====================================
TIMEOUT CONFIG
====================================
*/

// TimeoutConfig bounds every backend call the synchronizer makes. These are
// the only deadlines; there is no operation-wide cancellation token.
type TimeoutConfig struct {
	SessionCheck     time.Duration // current-session lookup (default 5s)
	CredentialVerify time.Duration // per-attempt credential check (default 10s)
	ProfileFetch     time.Duration // authoritative profile fetch (default 90s)
	MFAChallenge     time.Duration // challenge creation (default 10s)
	MFAVerify        time.Duration // challenge verification (default 15s)
	PasswordUpdate   time.Duration // credential update (default 15s)
	SignOut          time.Duration // best-effort sign-out (default 5s)
}

/*
====================================
RETRY CONFIG
====================================
*/

// RetryConfig controls timeout-only retry. Credential verification always
// retries without bound (a login must not give up because one attempt timed
// out); SessionCheckRetries bounds the idempotent session read.
type RetryConfig struct {
	SessionCheckRetries int
	Backoff             time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the key prefixes in the durable store. Both namespaces
// are swept by prefix on logout, because the backend rotates its own key
// names and stale partial session fragments make a later login misbehave.
type StorageConfig struct {
	ProfilePrefix string // default "toolvault-profile:"
	SessionPrefix string // the backend's own session namespace, default "sb-session:"
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authsync APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authsync APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration the dashboard ships with. The
// allowed domain has no default and must be set by the caller.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Timeouts.SessionCheck <= 0 {
		c.Timeouts.SessionCheck = 5 * time.Second
	}
	if c.Timeouts.CredentialVerify <= 0 {
		c.Timeouts.CredentialVerify = 10 * time.Second
	}
	if c.Timeouts.ProfileFetch <= 0 {
		c.Timeouts.ProfileFetch = 90 * time.Second
	}
	if c.Timeouts.MFAChallenge <= 0 {
		c.Timeouts.MFAChallenge = 10 * time.Second
	}
	if c.Timeouts.MFAVerify <= 0 {
		c.Timeouts.MFAVerify = 15 * time.Second
	}
	if c.Timeouts.PasswordUpdate <= 0 {
		c.Timeouts.PasswordUpdate = 15 * time.Second
	}
	if c.Timeouts.SignOut <= 0 {
		c.Timeouts.SignOut = 5 * time.Second
	}
	if c.Retry.SessionCheckRetries <= 0 {
		c.Retry.SessionCheckRetries = 1
	}
	if c.Retry.Backoff <= 0 {
		c.Retry.Backoff = 500 * time.Millisecond
	}
	if c.Storage.ProfilePrefix == "" {
		c.Storage.ProfilePrefix = "toolvault-profile:"
	}
	if c.Storage.SessionPrefix == "" {
		c.Storage.SessionPrefix = "sb-session:"
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = 256
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Domain.AllowedDomain) == "" {
		return errors.New("allowed email domain must be configured")
	}
	if strings.Contains(c.Domain.AllowedDomain, "@") {
		return errors.New("allowed email domain must not contain '@'")
	}
	if c.Storage.ProfilePrefix == c.Storage.SessionPrefix {
		return errors.New("profile and session storage prefixes must differ")
	}
	return nil
}
