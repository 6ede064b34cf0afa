package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if c.Paths.APIBind == "" {
		problems = append(problems, "paths.api_bind must not be empty")
	}

	if c.Rewrite.BaseURL == "" {
		problems = append(problems, "rewrite.base_url must not be empty")
	}
	if c.Rewrite.Model == "" {
		problems = append(problems, "rewrite.model must not be empty")
	}
	if c.Rewrite.TimeoutSeconds <= 0 {
		problems = append(problems, "rewrite.timeout_seconds must be positive")
	}

	if c.Extract.DocConverter == "" {
		problems = append(problems, "extract.doc_converter must not be empty")
	}
	if c.Extract.TimeoutSeconds <= 0 {
		problems = append(problems, "extract.timeout_seconds must be positive")
	}

	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		problems = append(problems, "workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		problems = append(problems, "workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	if c.Workflow.TransformWorkers <= 0 {
		problems = append(problems, "workflow.transform_workers must be positive")
	}

	if c.Retention.Hours < 0 {
		problems = append(problems, "retention.hours must not be negative")
	}
	if c.Retention.SweepIntervalMinutes <= 0 {
		problems = append(problems, "retention.sweep_interval_minutes must be positive")
	}

	switch c.Logging.Format {
	case "", "pretty", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of pretty, json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
