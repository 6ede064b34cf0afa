package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"redraft/internal/config"
	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
	"redraft/internal/stage"
)

// Publisher writes completed rewrite results into the artifacts directory so
// downloads never depend on the database row staying around.
type Publisher struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs the publish stage handler.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// Prepare validates the job carries a rewrite result.
func (p *Publisher) Prepare(ctx context.Context, job *queue.Job) error {
	if strings.TrimSpace(job.ResultText) == "" {
		return services.Wrap(services.ErrValidation, "publish", "prepare", "job has no result text", nil)
	}
	job.SetProgress("Publishing", "writing artifact", 0)
	return nil
}

// Execute writes the artifact under the download handle using a temp file and
// rename so a partially written artifact is never observable.
func (p *Publisher) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)

	dir := p.cfg.ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "publish", "mkdir", "create artifacts directory", err)
	}

	target := ArtifactPath(p.cfg, job.DownloadHandle)
	tmp, err := os.CreateTemp(dir, ".redraft-*.tmp")
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "write", "create temp artifact", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(job.ResultText); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "publish", "write", "write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "publish", "write", "close artifact", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "publish", "write", "rename artifact into place", err)
	}

	job.ArtifactPath = target
	job.SetProgress("Publishing", "artifact ready", 100)
	logger.Info("artifact published",
		logging.String("path", target),
		logging.Int("bytes", len(job.ResultText)))
	return nil
}

// HealthCheck verifies the artifacts directory is writable.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publish"
	dir := p.cfg.ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("artifacts directory: %v", err))
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("artifacts directory not writable: %v", err))
	}
	probe.Close()
	os.Remove(probe.Name())
	return stage.Healthy(name)
}

// ArtifactPath returns where the artifact for a download handle lives.
func ArtifactPath(cfg *config.Config, handle string) string {
	return filepath.Join(cfg.ArtifactsDir(), handle+".txt")
}
