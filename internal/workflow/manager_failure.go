package workflow

import (
	"context"
	"errors"
	"strings"

	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = stageName + " failed"
	}
	job.SetFailed(message, failureCodeFor(stageName, stageErr))
	if m.metrics != nil {
		m.metrics.JobFailed(job.FailureCode)
	}

	logger.Error("stage failed",
		logging.String("failure_code", job.FailureCode),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastJob(job)
}

// failureCodeFor resolves the machine-readable code clients see. Stage
// handlers attach specific codes; anything untagged falls back by stage.
func failureCodeFor(stageName string, err error) string {
	if code, ok := services.FailureCode(err); ok {
		return code
	}
	switch stageName {
	case "publish":
		return queue.FailurePublishFailed
	default:
		if errors.Is(err, services.ErrTimeout) {
			return queue.FailureTimeout
		}
		return queue.FailureRewriteFailed
	}
}
