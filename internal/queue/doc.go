// Package queue persists rewrite jobs in SQLite and provides the atomic
// status transitions the workflow manager relies on.
//
// Jobs move through pending, transforming, transformed, publishing, and end
// in completed or failed. Terminal statuses never change. Workers claim jobs
// with a compare-and-swap update so the same job is never executed twice even
// with several workers polling concurrently.
package queue
