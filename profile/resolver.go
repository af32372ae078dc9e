package profile

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/toolvault/authsync/internal/retry"
)

// FetchFunc is the authoritative profile lookup. It returns (nil, nil) when
// the backend definitively has no record for the identity id; any transport
// or timeout failure is a non-nil error. The distinction matters: absence
// forces a sign-out upstream, failure does not.
type FetchFunc func(ctx context.Context, identityID string) (*Record, error)

// Resolver deduplicates concurrent authoritative fetches per identity id and
// writes successful results through to the cache.
type Resolver struct {
	group   singleflight.Group
	fetch   FetchFunc
	cache   *Cache
	timeout time.Duration

	// OnDeduped, when set, is invoked once per caller that joined an
	// already-in-flight fetch instead of issuing its own.
	OnDeduped func()
}

func NewResolver(fetch FetchFunc, cache *Cache, timeout time.Duration) *Resolver {
	return &Resolver{
		fetch:   fetch,
		cache:   cache,
		timeout: timeout,
	}
}

// Resolve fetches the authoritative record for identityID under the
// resolver's deadline. Concurrent calls for the same id share one in-flight
// fetch; the in-flight entry is dropped when it settles so a later call
// issues a fresh fetch.
func (r *Resolver) Resolve(ctx context.Context, identityID string) (*Record, error) {
	v, err, shared := r.group.Do(identityID, func() (any, error) {
		rec, ferr := retry.WithTimeout(ctx, r.timeout, "profile fetch", func(ctx context.Context) (*Record, error) {
			return r.fetch(ctx, identityID)
		})
		if ferr != nil {
			return nil, ferr
		}
		if rec != nil {
			r.cache.Write(ctx, rec)
		}
		return rec, nil
	})
	if shared && r.OnDeduped != nil {
		r.OnDeduped()
	}
	if err != nil {
		return nil, err
	}
	rec, _ := v.(*Record)
	return rec, nil
}
