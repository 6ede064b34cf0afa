package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"redraft/internal/queue"
	"redraft/internal/testsupport"
)

func TestNewJobAssignsIdentifiers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.NewJob(ctx, "sermon.docx", "原文内容")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected internal ID to be assigned")
	}
	if job.JobID == "" || job.DownloadHandle == "" {
		t.Fatalf("expected identifiers, got %#v", job)
	}
	if job.JobID == job.DownloadHandle {
		t.Fatal("job id and download handle must differ")
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("status = %s", job.Status)
	}

	other, err := store.NewJob(ctx, "sermon.docx", "原文内容")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if other.JobID == job.JobID {
		t.Fatal("job ids must be unique across submissions")
	}
}

func TestLookupByPublicIdentifiers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "a.txt", "text")

	byJobID, err := store.GetByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if byJobID == nil || byJobID.ID != job.ID {
		t.Fatalf("unexpected job: %#v", byJobID)
	}

	byHandle, err := store.GetByHandle(ctx, job.DownloadHandle)
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if byHandle == nil || byHandle.ID != job.ID {
		t.Fatalf("unexpected job: %#v", byHandle)
	}

	missing, err := store.GetByJobID(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("GetByJobID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown job id, got %#v", missing)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "a.txt", "source")

	job.Status = queue.StatusTransformed
	job.ResultText = "rewritten"
	job.SetProgress("Transforming", "rewrite complete", 100)
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusTransformed {
		t.Errorf("status = %s", fetched.Status)
	}
	if fetched.ResultText != "rewritten" {
		t.Errorf("result text = %q", fetched.ResultText)
	}
	if fetched.ProgressPercent != 100 {
		t.Errorf("progress = %f", fetched.ProgressPercent)
	}
}

func TestClaimIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "a.txt", "text")

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Claim(ctx, job.ID, queue.StatusPending, queue.StatusTransforming)
			if err != nil {
				t.Errorf("Claim: %v", err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusTransforming {
		t.Fatalf("status = %s", fetched.Status)
	}
	if fetched.LastHeartbeat == nil {
		t.Fatal("claim should set heartbeat")
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "first.txt", "a")
	testsupport.NewJob(t, store, "second.txt", "b")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending job, got %#v", next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusPublishing)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil, got %#v", none)
	}
}

func TestFailStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewJob(t, store, "stale.txt", "a")
	fresh := testsupport.NewJob(t, store, "fresh.txt", "b")

	for _, job := range []*queue.Job{stale, fresh} {
		if ok, err := store.Claim(ctx, job.ID, queue.StatusPending, queue.StatusTransforming); err != nil || !ok {
			t.Fatalf("claim setup: ok=%v err=%v", ok, err)
		}
	}

	old := time.Now().UTC().Add(-5 * time.Minute)
	staleJob, _ := store.GetByID(ctx, stale.ID)
	staleJob.LastHeartbeat = &old
	if err := store.Update(ctx, staleJob); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err := store.FailStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("FailStaleProcessing: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	failed, _ := store.GetByID(ctx, stale.ID)
	if failed.Status != queue.StatusFailed {
		t.Errorf("stale job status = %s", failed.Status)
	}
	if failed.FailureCode != queue.FailureStaleJob {
		t.Errorf("failure code = %q", failed.FailureCode)
	}

	alive, _ := store.GetByID(ctx, fresh.ID)
	if alive.Status != queue.StatusTransforming {
		t.Errorf("fresh job status = %s", alive.Status)
	}
}

func TestExpiredTerminalSelectsOldTerminalJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	done := testsupport.NewJob(t, store, "done.txt", "a")
	running := testsupport.NewJob(t, store, "running.txt", "b")

	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ok, err := store.Claim(ctx, running.ID, queue.StatusPending, queue.StatusTransforming); err != nil || !ok {
		t.Fatalf("claim setup: ok=%v err=%v", ok, err)
	}

	expired, err := store.ExpiredTerminal(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("ExpiredTerminal: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != done.ID {
		t.Fatalf("expected only the completed job, got %#v", expired)
	}
}

func TestHealthAggregatesCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "p.txt", "a")
	claimed := testsupport.NewJob(t, store, "t.txt", "b")
	if ok, err := store.Claim(ctx, claimed.ID, queue.StatusPending, queue.StatusTransforming); err != nil || !ok {
		t.Fatalf("claim setup: ok=%v err=%v", ok, err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Processing != 1 {
		t.Fatalf("unexpected health: %#v", health)
	}
}

func TestPublicStateMapping(t *testing.T) {
	cases := map[queue.Status]queue.PublicState{
		queue.StatusPending:      queue.StatePending,
		queue.StatusTransforming: queue.StateRunning,
		queue.StatusTransformed:  queue.StateRunning,
		queue.StatusPublishing:   queue.StateRunning,
		queue.StatusCompleted:    queue.StateCompleted,
		queue.StatusFailed:       queue.StateFailed,
	}
	for status, want := range cases {
		if got := status.Public(); got != want {
			t.Errorf("%s.Public() = %s, want %s", status, got, want)
		}
	}
}
