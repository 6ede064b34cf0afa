package workflow_test

import (
	"context"
	"testing"
	"time"

	"redraft/internal/config"
	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
	"redraft/internal/stage"
	"redraft/internal/testsupport"
	"redraft/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Job)
	executeHook func(*queue.Job)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, job *queue.Job) error {
	if s.prepareHook != nil {
		s.prepareHook(job)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, job *queue.Job) error {
	if s.executeHook != nil {
		s.executeHook(job)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func workflowConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.TransformWorkers = 1
	return cfg
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Job {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		job, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job != nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManagerProcessesJobThroughBothStages(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	transformer := newStubStage("transform")
	transformer.executeHook = func(job *queue.Job) {
		job.ResultText = "改写后：" + job.SourceText
	}
	publisher := newStubStage("publish")
	publisher.executeHook = func(job *queue.Job) {
		job.ArtifactPath = "/tmp/" + job.DownloadHandle + ".txt"
	}

	mgr := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{
		Transformer: transformer,
		Publisher:   publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "sermon.txt", "他说“经上记着”。")
	done := waitForStatus(t, store, job.ID, queue.StatusCompleted)

	if done.ResultText != "改写后：他说“经上记着”。" {
		t.Fatalf("unexpected result text %q", done.ResultText)
	}
	if done.ArtifactPath == "" {
		t.Fatal("expected artifact path to be recorded")
	}
	if done.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %v", done.ProgressPercent)
	}
	if done.LastHeartbeat != nil {
		t.Fatal("expected heartbeat to be cleared on completion")
	}
	if done.Status.Public() != queue.StateCompleted {
		t.Fatalf("unexpected public state %s", done.Status.Public())
	}
}

func TestManagerFailureIsTerminalWithCode(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	transformer := newStubStage("transform")
	transformer.executeErr = services.WithFailureCode(
		services.Wrap(services.ErrExternalTool, "transform", "rewrite", "model request failed", nil),
		queue.FailureRewriteFailed,
	)

	mgr := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{
		Transformer: transformer,
		Publisher:   newStubStage("publish"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "sermon.txt", "原文")
	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)

	if failed.FailureCode != queue.FailureRewriteFailed {
		t.Fatalf("expected failure code %s, got %s", queue.FailureRewriteFailed, failed.FailureCode)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("expected error message to be recorded")
	}
	if !queue.IsTerminal(failed.Status) {
		t.Fatal("expected failed status to be terminal")
	}
}

func TestManagerPublishFailureUsesPublishCode(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	publisher := newStubStage("publish")
	publisher.executeErr = services.Wrap(services.ErrExternalTool, "publish", "write", "disk full", nil)

	mgr := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{
		Transformer: newStubStage("transform"),
		Publisher:   publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "sermon.txt", "原文")
	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)

	if failed.FailureCode != queue.FailurePublishFailed {
		t.Fatalf("expected failure code %s, got %s", queue.FailurePublishFailed, failed.FailureCode)
	}
}

func TestManagerStatusIncludesStageHealth(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	transformer := newStubStage("transform")
	transformer.health = stage.Unhealthy("transform", "rewrite API key missing")

	mgr := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{
		Transformer: transformer,
		Publisher:   newStubStage("publish"),
	})

	status := mgr.Status(context.Background())
	if status.Running {
		t.Fatal("expected manager to report not running before Start")
	}
	health, ok := status.StageHealth["transform"]
	if !ok {
		t.Fatal("expected stage health entry for transform")
	}
	if health.Ready {
		t.Fatalf("expected not ready health, got %+v", health)
	}
	if health.Detail != "rewrite API key missing" {
		t.Fatalf("unexpected health detail %q", health.Detail)
	}
}

func TestManagerStartRequiresHandlers(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{})
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail without handlers")
	}
}

func TestReapStaleJobsFailsExpiredProcessing(t *testing.T) {
	cfg := workflowConfig(t)
	cfg.Workflow.HeartbeatTimeout = 1
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "sermon.txt", "原文")
	claimed, err := store.Claim(ctx, job.ID, queue.StatusPending, queue.StatusTransforming)
	if err != nil || !claimed {
		t.Fatalf("Claim failed: claimed=%v err=%v", claimed, err)
	}

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), time.Second, time.Second)
	time.Sleep(1100 * time.Millisecond)
	if err := monitor.ReapStaleJobs(ctx, logging.NewNop()); err != nil {
		t.Fatalf("ReapStaleJobs failed: %v", err)
	}

	reaped, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reaped.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", reaped.Status)
	}
	if reaped.FailureCode != queue.FailureStaleJob {
		t.Fatalf("expected failure code %s, got %s", queue.FailureStaleJob, reaped.FailureCode)
	}
}
