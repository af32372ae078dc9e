// Package profile owns the application-level user record and the two layers
// that produce it: a durable provisional cache for instant render and a
// deduplicated authoritative resolver.
//
// # Architecture boundaries
//
// The cache is an optimization, never a source of truth: every storage or
// decode failure degrades to a miss, and a cached record is always superseded
// by a completed authoritative fetch, never the reverse. The resolver
// guarantees at most one outstanding backend fetch per identity id.
package profile
