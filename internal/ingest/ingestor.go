package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"redraft/internal/config"
	"redraft/internal/extract"
	"redraft/internal/logging"
	"redraft/internal/queue"
	"redraft/internal/services"
)

// MaxUploadBytes is the largest accepted upload. Uploads of exactly this size
// are accepted; one byte more is rejected.
const MaxUploadBytes = 10 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".txt":  {},
	".doc":  {},
	".docx": {},
}

// Ingestor validates uploads, extracts their text, and enqueues rewrite jobs.
type Ingestor struct {
	store     *queue.Store
	extractor *extract.Extractor
	logger    *slog.Logger
}

// New constructs an ingestor.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		store:     store,
		extractor: extract.New(cfg.Extract),
		logger:    logging.NewComponentLogger(logger, "ingest"),
	}
}

// Accept validates the upload and inserts a pending job. Validation failures
// are rejected synchronously and never become jobs.
func (i *Ingestor) Accept(ctx context.Context, filename string, content []byte) (*queue.Job, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, services.WithFailureCode(
			services.Wrap(services.ErrValidation, "ingest", "validate",
				fmt.Sprintf("unsupported file type %q", ext), nil),
			queue.FailureUnsupportedFileType,
		)
	}
	if len(content) > MaxUploadBytes {
		return nil, services.WithFailureCode(
			services.Wrap(services.ErrValidation, "ingest", "validate",
				fmt.Sprintf("file is %d bytes, limit is %d", len(content), MaxUploadBytes), nil),
			queue.FailureFileTooLarge,
		)
	}

	text, err := i.extractor.Text(ctx, ext, content)
	if err != nil {
		return nil, services.WithFailureCode(
			services.Wrap(services.ErrValidation, "ingest", "extract",
				fmt.Sprintf("could not extract text from %q", filename), err),
			queue.FailureExtractionFailed,
		)
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.WithFailureCode(
			services.Wrap(services.ErrValidation, "ingest", "extract",
				fmt.Sprintf("%q contains no extractable text", filename), nil),
			queue.FailureExtractionFailed,
		)
	}

	job, err := i.store.NewJob(ctx, filepath.Base(filename), text)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "enqueue", "persist job", err)
	}

	i.logger.Info("upload accepted",
		logging.String(logging.FieldJobID, job.JobID),
		logging.String("filename", job.OriginalFilename),
		logging.Int("upload_bytes", len(content)),
		logging.Int("text_bytes", len(text)))
	return job, nil
}
