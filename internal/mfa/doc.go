// Package mfa owns the client-side second-factor state machine.
//
// States progress Disabled → Enrolling → Challenged → Verified. Challenged may
// transition back to a fresh Challenged when the backend reports the active
// challenge expired; the controller never resubmits a code against a
// regenerated challenge. The backend remains the enforcement point; this
// state machine exists for flow control and UI gating only.
package mfa
