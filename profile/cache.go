package profile

import (
	"context"
	"log"

	"github.com/toolvault/authsync/internal/kv"
)

// Cache is the durable provisional copy of previously resolved records,
// keyed by identity id under an application-specific prefix so it cannot
// collide with the identity backend's own keys.
type Cache struct {
	store  *kv.Store
	prefix string
}

func NewCache(store *kv.Store, prefix string) *Cache {
	return &Cache{
		store:  store,
		prefix: prefix,
	}
}

// Prefix returns the cache's key namespace, used by the logout sweep.
func (c *Cache) Prefix() string {
	if c == nil {
		return ""
	}
	return c.prefix
}

func (c *Cache) key(identityID string) string {
	return c.prefix + identityID
}

// Read returns the cached record for identityID, or nil on a miss. Any
// storage or decode failure is a miss; the cache never fails a flow.
func (c *Cache) Read(ctx context.Context, identityID string) *Record {
	if c == nil || c.store == nil || identityID == "" {
		return nil
	}

	var rec Record
	if err := c.store.GetJSON(ctx, c.key(identityID), &rec); err != nil {
		return nil
	}
	if rec.ID == "" {
		return nil
	}
	return &rec
}

// Write stores rec as the provisional copy for its identity id. Best-effort:
// a failed write only costs the next session a cache miss.
func (c *Cache) Write(ctx context.Context, rec *Record) {
	if c == nil || c.store == nil || rec == nil || rec.ID == "" {
		return
	}
	if err := c.store.SetJSON(ctx, c.key(rec.ID), rec); err != nil {
		log.Print("authsync: profile cache write failed")
	}
}
