package queue

import (
	"context"
	"fmt"
	"time"
)

// Claim atomically transitions a job from one status to another. It returns
// false when the job was already claimed or moved by another worker, which
// makes it safe to race several workers against the same queue.
func (s *Store) Claim(ctx context.Context, id int64, from, to Status) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		now,
		now,
		id,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateHeartbeat refreshes the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// FailStaleProcessing marks processing jobs whose heartbeat expired before the
// cutoff as failed. A worker that lost its job this way observes the status
// change on its next write and abandons the work, so a job is never published
// twice.
func (s *Store) FailStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
        SET status = ?, error_message = ?, failure_code = ?,
            progress_stage = 'Failed', progress_percent = 0,
            progress_message = ?, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (?, ?) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusFailed,
		"processing heartbeat expired",
		FailureStaleJob,
		"processing heartbeat expired",
		now,
		StatusTransforming,
		StatusPublishing,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return res.RowsAffected()
}

// FailAllProcessing marks every in-flight job as failed. Used when the daemon
// shuts down so clients are not left polling jobs that will never finish.
func (s *Store) FailAllProcessing(ctx context.Context, message string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
        SET status = ?, error_message = ?, failure_code = ?,
            progress_stage = 'Failed', progress_percent = 0,
            progress_message = ?, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (?, ?)`,
		StatusFailed,
		message,
		FailureStaleJob,
		message,
		now,
		StatusTransforming,
		StatusPublishing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail processing jobs: %w", err)
	}
	return res.RowsAffected()
}
