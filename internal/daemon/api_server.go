package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"redraft/internal/api"
	"redraft/internal/config"
	"redraft/internal/ingest"
	"redraft/internal/logging"
	"redraft/internal/publish"
	"redraft/internal/queue"
	"redraft/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api_bind is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return authMiddleware(cfg.Paths.APIToken, next)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/jobs", auth(srv.instrument("/api/v1/jobs", srv.handleSubmit)))
	mux.HandleFunc("/api/v1/jobs/", auth(srv.instrument("/api/v1/jobs/{id}", srv.handleJobStatus)))
	mux.HandleFunc("/api/v1/download/", auth(srv.instrument("/api/v1/download/{handle}", srv.handleDownload)))
	mux.HandleFunc("/api/status", auth(srv.instrument("/api/status", srv.handleStatus)))
	mux.HandleFunc("/api/queue", auth(srv.instrument("/api/queue", srv.handleQueue)))
	mux.HandleFunc("/api/queue/", auth(srv.instrument("/api/queue/{id}", srv.handleQueueJob)))
	mux.Handle("/metrics", d.metrics.Handler())

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// instrument stamps a request id into the context and records metrics under a
// stable path label so handle values never explode label cardinality.
func (s *apiServer) instrument(pathLabel string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := services.WithRequestID(r.Context(), requestID)
		next(recorder, r.WithContext(ctx))

		s.daemon.metrics.ObserveHTTPRequest(
			r.Method,
			pathLabel,
			strconv.Itoa(recorder.status),
			time.Since(start).Seconds(),
		)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	// One extra byte over the limit yields a clean file_too_large rather
	// than a truncated read.
	r.Body = http.MaxBytesReader(w, r.Body, ingest.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", "multipart form must contain a file field")
		return
	}
	defer file.Close()

	content, err := readUpload(file)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, queue.FailureFileTooLarge, "upload exceeds size limit")
		return
	}

	job, err := s.daemon.Submit(r.Context(), header.Filename, content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, api.SubmitResponse{
		JobID:          job.JobID,
		DownloadHandle: job.DownloadHandle,
		State:          string(job.Status.Public()),
	})
}

func (s *apiServer) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusNotFound, "job_not_found", "job not found")
		return
	}

	job, err := s.daemon.Describe(r.Context(), jobID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job_not_found", "job not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromJob(job))
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	handle := strings.TrimPrefix(r.URL.Path, "/api/v1/download/")
	if handle == "" || strings.Contains(handle, "/") {
		writeError(w, http.StatusNotFound, "job_not_found", "unknown download handle")
		return
	}

	job, content, err := publish.Fetch(r.Context(), s.daemon.store, handle)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "job_not_found", "unknown download handle")
		case errors.Is(err, services.ErrNotReady):
			writeError(w, http.StatusNotFound, "not_ready", "job is still processing")
		case errors.Is(err, services.ErrValidation):
			code, _ := services.FailureCode(err)
			if code == "" {
				code = queue.FailureRewriteFailed
			}
			writeError(w, http.StatusUnprocessableEntity, code, job.ErrorMessage)
		default:
			s.writeServiceError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", downloadFilename(job)))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.log().Warn("failed to stream artifact", logging.Error(err))
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
	})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		s.handleQueueClear(w, r)
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := queue.ParseStatus(value)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_status", fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, status)
	}

	jobs, err := s.daemon.ListQueue(r.Context(), statuses)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.QueueListResponse{Jobs: api.FromJobs(jobs)})
}

func (s *apiServer) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	var (
		removed int64
		err     error
	)
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	switch scope {
	case "", "all":
		removed, err = s.daemon.ClearQueue(r.Context())
	case "completed":
		removed, err = s.daemon.ClearCompleted(r.Context())
	case "failed":
		removed, err = s.daemon.ClearFailed(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "invalid_scope", fmt.Sprintf("unknown scope %q", scope))
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *apiServer) handleQueueJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	if idStr == "" || strings.Contains(idStr, "/") {
		writeError(w, http.StatusNotFound, "job_not_found", "job not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid queue job id")
		return
	}
	job, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "job_not_found", "job not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromJob(job))
}

// writeServiceError maps service sentinel errors onto HTTP statuses.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	code, _ := services.FailureCode(err)
	switch {
	case errors.Is(err, services.ErrValidation):
		status := http.StatusUnprocessableEntity
		if code == queue.FailureFileTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		if code == "" {
			code = "validation_failed"
		}
		writeError(w, status, code, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "job_not_found", err.Error())
	default:
		s.log().Error("api request failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func downloadFilename(job *queue.Job) string {
	name := strings.TrimSuffix(job.OriginalFilename, extOf(job.OriginalFilename))
	if name == "" {
		name = job.DownloadHandle
	}
	return name + ".txt"
}

func extOf(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}

func readUpload(file multipart.File) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(file, ingest.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
