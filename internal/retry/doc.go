// Package retry provides the deadline and retry discipline shared by every
// backend call the synchronizer makes.
//
// # Design
//
// [WithTimeout] wraps a single call in a derived context and converts a missed
// deadline into a labelled [*TimeoutError]. [OnTimeout] re-invokes an
// operation only when the previous failure classifies as a timeout; semantic
// failures (rejected credentials, invalid codes) are always terminal.
//
// # What this package must NOT do
//
//   - Retry on anything other than a timeout classification.
//   - Leak timers or contexts on either the success or the failure path.
//   - Import any sibling package.
package retry
