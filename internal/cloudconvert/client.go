// Package cloudconvert is a small client for the CloudConvert v2 jobs API.
package cloudconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	liveBaseURL    = "https://api.cloudconvert.com/v2"
	liveSyncURL    = "https://sync.api.cloudconvert.com/v2"
	sandboxBaseURL = "https://api.sandbox.cloudconvert.com/v2"
	sandboxSyncURL = "https://sync.api.sandbox.cloudconvert.com/v2"
)

type Options struct {
	APIKey  string
	Sandbox bool
	// BaseURL and SyncURL override the hosts derived from Sandbox.
	BaseURL    string
	SyncURL    string
	HTTPClient *http.Client
}

type Client struct {
	apiKey  string
	baseURL string
	syncURL string
	http    *http.Client
}

func New(opts Options) *Client {
	base, sync := liveBaseURL, liveSyncURL
	if opts.Sandbox {
		base, sync = sandboxBaseURL, sandboxSyncURL
	}
	if opts.BaseURL != "" {
		base = opts.BaseURL
	}
	if opts.SyncURL != "" {
		sync = opts.SyncURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Waiting on a job holds the request open; the caller's context bounds it.
		httpClient = &http.Client{Timeout: 0}
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimSuffix(base, "/"),
		syncURL: strings.TrimSuffix(sync, "/"),
		http:    httpClient,
	}
}

// CreateJob submits a job definition.
func (c *Client) CreateJob(ctx context.Context, req JobRequest) (*Job, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}

	var out envelope[Job]
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body), &out); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &out.Data, nil
}

// WaitJob blocks on the sync API until the job is finished or failed.
func (c *Client) WaitJob(ctx context.Context, id string) (*Job, error) {
	var out envelope[Job]
	if err := c.do(ctx, http.MethodGet, c.syncURL+"/jobs/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("wait job %s: %w", id, err)
	}
	return &out.Data, nil
}

// Upload sends the file to an import/upload task. Form parameters precede the file part.
func (c *Client) Upload(ctx context.Context, task *Task, filename string, r io.Reader) error {
	if task == nil || task.Result == nil || task.Result.Form == nil {
		return fmt.Errorf("upload: task %q has no upload form", taskName(task))
	}
	form := task.Result.Form

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, form.Parameters, filename, r))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.URL, pr)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload: %w", decodeAPIError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writeUploadForm(mw *multipart.Writer, params map[string]any, filename string, r io.Reader) error {
	for k, v := range params {
		if err := mw.WriteField(k, fmt.Sprint(v)); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// Convert runs one file through import/upload, convert and export/url and returns
// the first exported file.
func (c *Client) Convert(ctx context.Context, conv Conversion) (*File, error) {
	recipe := conv.Recipe
	recipe.Operation = OperationConvert
	recipe.Input = ImportTaskName
	recipe.OutputFormat = conv.To

	job, err := c.CreateJob(ctx, JobRequest{
		Tag: conv.From + "-to-" + conv.To,
		Tasks: map[string]any{
			ImportTaskName:  ImportUploadTask{Operation: OperationImportUpload},
			ConvertTaskName: recipe,
			ExportTaskName:  ExportURLTask{Operation: OperationExportURL, Input: ConvertTaskName},
		},
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("cloudconvert job created", "job_id", job.ID, "tag", job.Tag, "filename", conv.Filename)

	importTask, ok := job.Task(ImportTaskName)
	if !ok {
		return nil, fmt.Errorf("job %s: missing %s task", job.ID, ImportTaskName)
	}

	start := time.Now()
	if err := c.Upload(ctx, importTask, conv.Filename, bytes.NewReader(conv.Content)); err != nil {
		return nil, err
	}

	done, err := c.WaitJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	slog.Debug("cloudconvert job settled", "job_id", done.ID, "status", done.Status, "duration_ms", time.Since(start).Milliseconds())

	if failed, ok := done.FailedTask(); ok {
		return nil, &JobError{JobID: done.ID, Task: failed.Name, Code: failed.Code, Message: failed.Message}
	}

	return exportedFile(done)
}

// exportedFile returns the first file of the finished export/url task.
func exportedFile(job *Job) (*File, error) {
	for _, t := range job.Tasks {
		if t.Operation != OperationExportURL || t.Status != StatusFinished {
			continue
		}
		if t.Result != nil && len(t.Result.Files) > 0 {
			f := t.Result.Files[0]
			return &f, nil
		}
	}
	return nil, ErrNoOutput
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

func taskName(t *Task) string {
	if t == nil {
		return ""
	}
	return t.Name
}
