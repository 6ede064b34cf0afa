package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a rewrite job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTransforming Status = "transforming"
	StatusTransformed  Status = "transformed"
	StatusPublishing   Status = "publishing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// PublicState is the coarse job state exposed through the API.
type PublicState string

const (
	StatePending   PublicState = "pending"
	StateRunning   PublicState = "running"
	StateCompleted PublicState = "completed"
	StateFailed    PublicState = "failed"
)

// Failure codes persisted alongside failed jobs and returned to clients.
const (
	FailureUnsupportedFileType = "unsupported_file_type"
	FailureFileTooLarge        = "file_too_large"
	FailureExtractionFailed    = "extraction_failed"
	FailureRewriteFailed       = "rewrite_failed"
	FailureMissingPlaceholder  = "missing_placeholder"
	FailureTimeout             = "timeout"
	FailureStaleJob            = "stale_job"
	FailurePublishFailed       = "publish_failed"
)

// DaemonStopReason is the error message set when jobs fail due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusTransforming,
	StatusTransformed,
	StatusPublishing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusTransforming: {},
	StatusPublishing:   {},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Job represents a document rewrite job persisted in SQLite.
type Job struct {
	ID               int64
	JobID            string
	DownloadHandle   string
	OriginalFilename string
	Status           Status
	SourceText       string
	ResultText       string
	ArtifactPath     string
	ErrorMessage     string
	FailureCode      string
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastHeartbeat    *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status can never change again.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// Public maps an internal status to the coarse state exposed to clients.
func (s Status) Public() PublicState {
	switch s {
	case StatusPending:
		return StatePending
	case StatusCompleted:
		return StateCompleted
	case StatusFailed:
		return StateFailed
	default:
		return StateRunning
	}
}

// SetProgress updates all three progress fields atomically.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given error message and failure code.
// Clears the heartbeat and sets progress fields appropriately.
func (j *Job) SetFailed(message, code string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.FailureCode = code
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.ProgressStage = "Failed"
	j.LastHeartbeat = nil
}
