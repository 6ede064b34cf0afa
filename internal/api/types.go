package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SubmitResponse is returned when an upload is accepted for processing.
type SubmitResponse struct {
	JobID          string `json:"jobId"`
	DownloadHandle string `json:"downloadHandle"`
	State          string `json:"state"`
}

// JobStatus describes a job in a transport-friendly format. SourceText and
// ResultText never leave the daemon; clients fetch results via the download
// handle instead.
type JobStatus struct {
	JobID          string      `json:"jobId"`
	DownloadHandle string      `json:"downloadHandle"`
	Filename       string      `json:"filename"`
	State          string      `json:"state"`
	Status         string      `json:"status"`
	Progress       JobProgress `json:"progress"`
	ErrorMessage   string      `json:"errorMessage,omitempty"`
	FailureCode    string      `json:"failureCode,omitempty"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	UpdatedAt      string      `json:"updatedAt,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	Workers     int            `json:"workers"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastJob     *JobStatus     `json:"lastJob,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of jobs for API responses.
type QueueListResponse struct {
	Jobs []JobStatus `json:"jobs"`
}

// ErrorResponse is the uniform error payload. Code is machine-readable and
// stable; Message is for humans.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
