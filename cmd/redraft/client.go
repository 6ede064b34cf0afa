package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"redraft/internal/api"
)

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// apiError is a decoded daemon error response.
type apiError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Code
}

// IsNotReady reports whether the daemon is still processing the job.
func (e *apiError) IsNotReady() bool {
	return e.Code == "not_ready"
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Submit uploads a document and returns the accepted job identifiers.
func (c *apiClient) Submit(ctx context.Context, path string) (api.SubmitResponse, error) {
	var submitted api.SubmitResponse

	file, err := os.Open(path)
	if err != nil {
		return submitted, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return submitted, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return submitted, fmt.Errorf("read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return submitted, fmt.Errorf("finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs", &body)
	if err != nil {
		return submitted, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	err = c.do(req, http.StatusAccepted, &submitted)
	return submitted, err
}

// Job fetches the status of a job by its public identifier.
func (c *apiClient) Job(ctx context.Context, jobID string) (api.JobStatus, error) {
	var status api.JobStatus
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return status, err
	}
	err = c.do(req, http.StatusOK, &status)
	return status, err
}

// Download retrieves the rewritten document for a handle.
func (c *apiClient) Download(ctx context.Context, handle string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/download/"+url.PathEscape(handle), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

// DaemonStatus fetches daemon runtime information.
func (c *apiClient) DaemonStatus(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return status, err
	}
	err = c.do(req, http.StatusOK, &status)
	return status, err
}

// QueueList fetches jobs, optionally filtered by status.
func (c *apiClient) QueueList(ctx context.Context, statuses []string) (api.QueueListResponse, error) {
	var list api.QueueListResponse
	endpoint := c.baseURL + "/api/queue"
	if len(statuses) > 0 {
		query := url.Values{}
		for _, status := range statuses {
			query.Add("status", status)
		}
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return list, err
	}
	err = c.do(req, http.StatusOK, &list)
	return list, err
}

// QueueClear removes jobs in the given scope: all, completed, or failed.
func (c *apiClient) QueueClear(ctx context.Context, scope string) (int64, error) {
	endpoint := c.baseURL + "/api/queue"
	if scope != "" {
		endpoint += "?scope=" + url.QueryEscape(scope)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Removed int64 `json:"removed"`
	}
	if err := c.do(req, http.StatusOK, &payload); err != nil {
		return 0, err
	}
	return payload.Removed, nil
}

func (c *apiClient) do(req *http.Request, wantStatus int, out any) error {
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

func (c *apiClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &apiError{StatusCode: resp.StatusCode}
	var payload api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Code != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		return apiErr
	}
	apiErr.Code = "unexpected_response"
	apiErr.Message = fmt.Sprintf("daemon returned HTTP %d", resp.StatusCode)
	return apiErr
}
