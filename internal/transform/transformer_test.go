package transform_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
	"redraft/internal/services/rewrite"
	"redraft/internal/testsupport"
	"redraft/internal/transform"
)

type fakeRewriter struct {
	fn  func(ctx context.Context, text string) (rewrite.Result, error)
	err error
}

func (f *fakeRewriter) Rewrite(ctx context.Context, text string) (rewrite.Result, error) {
	if f.fn != nil {
		return f.fn(ctx, text)
	}
	return rewrite.Result{}, f.err
}

func (f *fakeRewriter) HealthCheck(context.Context) error { return nil }

func TestExecutePreservesQuotedScripture(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := `牧师引用约翰福音3:16说：“神爱世人，甚至将他的独生子赐给他们。”然后他总结了这一段。`

	rewriter := &fakeRewriter{fn: func(ctx context.Context, text string) (rewrite.Result, error) {
		if strings.Contains(text, "神爱世人") {
			t.Error("quoted scripture was forwarded to the model")
		}
		// Reword everything but keep placeholders intact.
		improved := strings.Replace(text, "牧师引用", "讲道者引用了", 1)
		return rewrite.Result{ImprovedText: improved, ChangesMade: "调整措辞"}, nil
	}}

	handler := transform.New(cfg, store, logging.NewNop(), rewriter)
	job := testsupport.NewJob(t, store, "sermon.txt", source)

	if err := handler.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(job.ResultText, "“神爱世人，甚至将他的独生子赐给他们。”") {
		t.Errorf("preserved span missing from result: %q", job.ResultText)
	}
	if !strings.Contains(job.ResultText, "讲道者引用了") {
		t.Errorf("surrounding prose was not rewritten: %q", job.ResultText)
	}
}

func TestExecuteFailsWhenPlaceholderDropped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	rewriter := &fakeRewriter{fn: func(ctx context.Context, text string) (rewrite.Result, error) {
		return rewrite.Result{ImprovedText: "占位符全部丢失的文本", ChangesMade: "x"}, nil
	}}

	handler := transform.New(cfg, store, logging.NewNop(), rewriter)
	job := testsupport.NewJob(t, store, "sermon.txt", "诗篇23:1说：“耶和华是我的牧者。”阿们。")

	err := handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	code, ok := services.FailureCode(err)
	if !ok || code != queue.FailureMissingPlaceholder {
		t.Fatalf("failure code = %q ok = %v", code, ok)
	}
}

func TestExecuteClassifiesRewriteFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	rewriter := &fakeRewriter{err: errors.New("upstream exploded")}
	handler := transform.New(cfg, store, logging.NewNop(), rewriter)
	job := testsupport.NewJob(t, store, "a.txt", "一段没有引用的文本。")

	err := handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	code, ok := services.FailureCode(err)
	if !ok || code != queue.FailureRewriteFailed {
		t.Fatalf("failure code = %q ok = %v", code, ok)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("expected external tool marker, got %v", err)
	}
}

func TestExecuteClassifiesTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	rewriter := &fakeRewriter{fn: func(ctx context.Context, text string) (rewrite.Result, error) {
		return rewrite.Result{}, context.DeadlineExceeded
	}}
	handler := transform.New(cfg, store, logging.NewNop(), rewriter)
	job := testsupport.NewJob(t, store, "a.txt", "文本。")

	err := handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	code, _ := services.FailureCode(err)
	if code != queue.FailureTimeout {
		t.Fatalf("failure code = %q", code)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Errorf("expected timeout marker, got %v", err)
	}
}

func TestPrepareRejectsEmptySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := transform.New(cfg, store, logging.NewNop(), &fakeRewriter{})
	job := &queue.Job{}

	if err := handler.Prepare(context.Background(), job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHealthCheckRequiresAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Rewrite.APIKey = ""
	store := testsupport.MustOpenStore(t, cfg)

	handler := transform.New(cfg, store, logging.NewNop(), &fakeRewriter{})
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without api key")
	}
}
