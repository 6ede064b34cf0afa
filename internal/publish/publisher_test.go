package publish_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"redraft/internal/logging"
	"redraft/internal/publish"
	"redraft/internal/queue"
	"redraft/internal/services"
	"redraft/internal/testsupport"
)

func TestExecuteWritesArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	pub := publish.New(cfg, store, logging.NewNop())

	job := testsupport.NewJob(t, store, "a.txt", "source")
	job.ResultText = "润色后的全文。"

	if err := pub.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := pub.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := publish.ArtifactPath(cfg, job.DownloadHandle)
	if job.ArtifactPath != want {
		t.Errorf("artifact path = %q, want %q", job.ArtifactPath, want)
	}
	content, err := os.ReadFile(job.ArtifactPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(content) != "润色后的全文。" {
		t.Errorf("artifact content = %q", content)
	}
}

func TestPrepareRejectsEmptyResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	pub := publish.New(cfg, store, logging.NewNop())

	job := testsupport.NewJob(t, store, "a.txt", "source")
	if err := pub.Prepare(context.Background(), job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	pub := publish.New(cfg, store, logging.NewNop())
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "a.txt", "source")

	// Unknown handle.
	if _, _, err := publish.Fetch(ctx, store, "no-such-handle"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// Known handle, still processing.
	if _, _, err := publish.Fetch(ctx, store, job.DownloadHandle); !errors.Is(err, services.ErrNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}

	// Completed.
	job.ResultText = "完成的文本"
	if err := pub.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	job.Status = queue.StatusCompleted
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, content, err := publish.Fetch(ctx, store, job.DownloadHandle)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fetched.JobID != job.JobID {
		t.Errorf("wrong job returned")
	}
	if string(content) != "完成的文本" {
		t.Errorf("content = %q", content)
	}
}

func TestFetchFailedJobCarriesCode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "a.txt", "source")
	job.SetFailed("rewrite call failed", queue.FailureRewriteFailed)
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, _, err := publish.Fetch(ctx, store, job.DownloadHandle)
	if err == nil {
		t.Fatal("expected error for failed job")
	}
	code, ok := services.FailureCode(err)
	if !ok || code != queue.FailureRewriteFailed {
		t.Fatalf("code = %q ok = %v", code, ok)
	}
}

func TestHealthCheckWritableDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	pub := publish.New(cfg, store, logging.NewNop())

	if health := pub.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}
}
