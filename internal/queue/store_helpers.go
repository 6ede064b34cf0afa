package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, job_id, download_handle, original_filename, status, source_text, result_text, artifact_path, error_message, failure_code, progress_stage, progress_percent, progress_message, created_at, updated_at, last_heartbeat"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id               int64
		jobID            string
		downloadHandle   string
		originalFilename string
		statusStr        string
		sourceText       sql.NullString
		resultText       sql.NullString
		artifactPath     sql.NullString
		errorMessage     sql.NullString
		failureCode      sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&downloadHandle,
		&originalFilename,
		&statusStr,
		&sourceText,
		&resultText,
		&artifactPath,
		&errorMessage,
		&failureCode,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:               id,
		JobID:            jobID,
		DownloadHandle:   downloadHandle,
		OriginalFilename: originalFilename,
		Status:           Status(statusStr),
		SourceText:       sourceText.String,
		ResultText:       resultText.String,
		ArtifactPath:     artifactPath.String,
		ErrorMessage:     errorMessage.String,
		FailureCode:      failureCode.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			job.LastHeartbeat = &heartbeat
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
