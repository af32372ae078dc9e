// Package authsync owns client-side authentication and session state for the
// ToolVault internal tool-catalog dashboard.
//
// The package is designed around one hazard: overlapping asynchronous
// reconciliation flows (startup bootstrap racing backend-pushed auth
// notifications). Every flow captures a monotonic sequence stamp when it
// starts and may only commit its result while that stamp is still current, so
// an older, slower flow can never overwrite a newer one's result even if it
// finishes later.
//
// # Architecture boundaries
//
// authsync is the public surface. It exposes [Synchronizer], [Builder],
// [Config], the [IdentityBackend] integration interface, and value types.
// Flow coordination (deadline/retry discipline, the second-factor state
// machine, profile caching and deduplicated resolution, audit dispatch)
// lives under internal/ and is never exported. The [profile] sub-package
// carries the application user record shared with integrators.
//
// # What this package must NOT do
//
//   - Enforce authorization. The identity backend is the enforcement point;
//     everything here (second-factor flags included) gates UI only.
//   - Persist credentials or session tokens itself. Durable state is limited
//     to the provisional profile cache under its own key prefix.
//   - Surface transport errors to the UI: the five public operations return
//     result values with short, case-specific messages instead of errors.
package authsync
