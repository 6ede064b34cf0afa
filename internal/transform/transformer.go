package transform

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"redraft/internal/config"
	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/scripture"
	"redraft/internal/services"
	"redraft/internal/services/rewrite"
	"redraft/internal/stage"
)

// Rewriter is the slice of the rewrite client the transformer depends on.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (rewrite.Result, error)
	HealthCheck(ctx context.Context) error
}

// Transformer rewrites job text through the external model while keeping
// quoted scripture byte-identical.
type Transformer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	rewriter Rewriter
}

// New constructs the transform stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, rewriter Rewriter) *Transformer {
	return &Transformer{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "transform"),
		rewriter: rewriter,
	}
}

// Prepare validates the job carries text to rewrite.
func (t *Transformer) Prepare(ctx context.Context, job *queue.Job) error {
	if strings.TrimSpace(job.SourceText) == "" {
		return services.Wrap(services.ErrValidation, "transform", "prepare", "job has no source text", nil)
	}
	job.SetProgress("Transforming", "rewrite queued", 0)
	return nil
}

// Execute masks preserved spans, invokes the rewrite model, and restores the
// spans into the rewritten text. Quoted passages never reach the model in a
// form it could alter.
func (t *Transformer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)

	spans := scripture.DetectSpans(job.SourceText)
	masked, err := Mask(job.SourceText, spans)
	if err != nil {
		return services.Wrap(services.ErrTransient, "transform", "mask", "substitute placeholders", err)
	}
	logger.Info("masked preserved spans",
		logging.Int("span_count", len(spans)),
		logging.Int("source_bytes", len(job.SourceText)))

	job.SetProgress("Transforming", "rewriting text", 25)
	if err := t.store.Update(ctx, job); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	rewriteCtx := ctx
	if t.cfg.Rewrite.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		rewriteCtx, cancel = context.WithTimeout(ctx, time.Duration(t.cfg.Rewrite.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	result, err := t.rewriter.Rewrite(rewriteCtx, masked.Text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.WithFailureCode(
				services.Wrap(services.ErrTimeout, "transform", "rewrite", "rewrite call timed out", err),
				queue.FailureTimeout,
			)
		}
		return services.WithFailureCode(
			services.Wrap(services.ErrExternalTool, "transform", "rewrite", "rewrite call failed", err),
			queue.FailureRewriteFailed,
		)
	}

	restored, err := Restore(result.ImprovedText, masked.Tokens)
	if err != nil {
		var missing *MissingPlaceholderError
		if errors.As(err, &missing) {
			return services.WithFailureCode(
				services.Wrap(services.ErrExternalTool, "transform", "restore", "model dropped a placeholder", err),
				queue.FailureMissingPlaceholder,
			)
		}
		return services.Wrap(services.ErrTransient, "transform", "restore", "restore placeholders", err)
	}

	job.ResultText = restored
	job.SetProgress("Transforming", "rewrite complete", 100)
	logger.Info("transform complete",
		logging.Int("result_bytes", len(restored)),
		logging.String("changes", result.ChangesMade))
	return nil
}

// HealthCheck verifies the rewrite service is reachable and configured.
func (t *Transformer) HealthCheck(ctx context.Context) stage.Health {
	const name = "transform"
	if t.rewriter == nil {
		return stage.Unhealthy(name, "rewrite client not configured")
	}
	if strings.TrimSpace(t.cfg.Rewrite.APIKey) == "" {
		return stage.Unhealthy(name, "rewrite api key missing")
	}
	return stage.Healthy(name)
}
