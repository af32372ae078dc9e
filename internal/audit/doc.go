// Package audit implements the asynchronous audit pipeline for authsync.
//
// Events are emitted by the synchronizer, buffered by [Dispatcher], and
// forwarded to a caller-supplied [Sink]. Dispatch never blocks an
// authentication operation: when the buffer is full and DropIfFull is set,
// events are counted and discarded.
package audit
