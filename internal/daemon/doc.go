// Package daemon coordinates the long-running redraft process.
//
// It wires configuration, queue storage, the workflow manager, and the HTTP
// API into a single lifecycle with flock-based locking to prevent multiple
// instances. On shutdown any in-flight job is marked failed; the daemon never
// retries, clients resubmit.
//
// Keep orchestration logic here: individual pipeline steps live in their own
// packages while the daemon focuses on startup, shutdown, and the API surface.
package daemon
