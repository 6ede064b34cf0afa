// Package workflow advances jobs through the transform and publish stages.
//
// The Manager runs a pool of identical workers. Each worker polls the queue
// for the oldest actionable job and claims it with a compare-and-swap status
// transition, so a job is executed at most once even with many workers. While
// a stage runs, a heartbeat loop stamps the job row; a reaper goroutine fails
// any processing job whose heartbeat expired, and a retention sweeper evicts
// terminal jobs and their artifacts after the configured window.
//
// Failed and completed are terminal. The daemon never retries a failed job;
// clients resubmit instead.
package workflow
