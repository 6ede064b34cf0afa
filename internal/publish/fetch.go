package publish

import (
	"context"
	"fmt"
	"os"

	"redraft/internal/queue"
	"redraft/internal/services"
)

// Fetch resolves a download handle to artifact bytes. It distinguishes an
// unknown handle from a job that exists but has not finished, and surfaces
// the failure code for jobs that ended in failure.
func Fetch(ctx context.Context, store *queue.Store, handle string) (*queue.Job, []byte, error) {
	job, err := store.GetByHandle(ctx, handle)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "publish", "fetch", "look up handle", err)
	}
	if job == nil {
		return nil, nil, services.Wrap(services.ErrNotFound, "publish", "fetch", "unknown download handle", nil)
	}

	switch job.Status {
	case queue.StatusFailed:
		code := job.FailureCode
		if code == "" {
			code = queue.FailureRewriteFailed
		}
		return job, nil, services.WithFailureCode(
			services.Wrap(services.ErrValidation, "publish", "fetch",
				fmt.Sprintf("job failed: %s", job.ErrorMessage), nil),
			code,
		)
	case queue.StatusCompleted:
	default:
		return job, nil, services.Wrap(services.ErrNotReady, "publish", "fetch", "job still processing", nil)
	}

	content, err := os.ReadFile(job.ArtifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return job, nil, services.Wrap(services.ErrNotFound, "publish", "fetch", "artifact removed", err)
		}
		return job, nil, services.Wrap(services.ErrTransient, "publish", "fetch", "read artifact", err)
	}
	return job, content, nil
}
