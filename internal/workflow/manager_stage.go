package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
)

func (m *Manager) processJob(ctx context.Context, workerLogger *slog.Logger, job *queue.Job) error {
	stg, ok := m.stageByStart[job.Status]
	if !ok {
		workerLogger.Warn("no stage configured for status", logging.String("status", string(job.Status)))
		m.waitForJobOrShutdown(ctx)
		return nil
	}

	// Another worker may have taken the job between poll and claim.
	claimed, err := m.store.Claim(ctx, job.ID, stg.startStatus, stg.processingStatus)
	if err != nil {
		m.setLastError(err)
		workerLogger.Error("failed to claim job", logging.Error(err))
		return err
	}
	if !claimed {
		return nil
	}

	fresh, err := m.store.GetByID(ctx, job.ID)
	if err != nil || fresh == nil {
		if err == nil {
			err = fmt.Errorf("job %d vanished after claim", job.ID)
		}
		m.setLastError(err)
		return err
	}
	job = fresh

	stageCtx := services.WithJobID(ctx, job.JobID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, workerLogger)

	return m.executeStage(stageCtx, stageLogger, stg, job)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	stageStart := time.Now()
	if m.metrics != nil {
		m.metrics.JobStarted()
		defer func() {
			m.metrics.JobFinished(stg.name, time.Since(stageStart).Seconds())
		}()
	}
	stageLogger.Info("stage started",
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("filename", job.OriginalFilename),
	)

	if err := stg.handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, stg.name, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	// The reaper may have failed the job while the stage ran. Terminal
	// statuses are immutable, so check before persisting a result.
	current, err := m.store.GetByID(ctx, job.ID)
	if err == nil && current != nil && current.Status != stg.processingStatus {
		stageLogger.Warn("job status changed during execution, abandoning result",
			logging.String("status", string(current.Status)))
		return nil
	}

	job.Status = stg.doneStatus
	job.LastHeartbeat = nil
	if job.Status == queue.StatusCompleted && job.ProgressPercent < 100 {
		job.SetProgress("Completed", "result ready for download", 100)
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String("next_status", string(job.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	if m.metrics != nil && job.Status == queue.StatusCompleted {
		m.metrics.JobsCompleted.Inc()
	}
	m.setLastJob(job)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, job.ID)

	execErr := stg.handler.Execute(ctx, job)
	hbCancel()
	hbWG.Wait()
	return execErr
}
