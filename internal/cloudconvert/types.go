package cloudconvert

import (
	"errors"
	"fmt"
)

// Task operations used by the three-stage conversion job.
const (
	OperationImportUpload = "import/upload"
	OperationConvert      = "convert"
	OperationExportURL    = "export/url"

	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusFinished   = "finished"
	StatusError      = "error"

	ImportTaskName  = "import-1"
	ConvertTaskName = "convert-1"
	ExportTaskName  = "export-1"
)

// ErrNoOutput is returned when a finished job has no exported file.
var ErrNoOutput = errors.New("conversion process did not produce an output file")

// JobRequest is the body of POST /jobs. Tasks are keyed by task name.
type JobRequest struct {
	Tag   string         `json:"tag,omitempty"`
	Tasks map[string]any `json:"tasks"`
}

type ImportUploadTask struct {
	Operation string `json:"operation"`
}

type ExportURLTask struct {
	Operation string `json:"operation"`
	Input     string `json:"input"`
}

// ConvertTask is the recipe of the convert stage. Zero fields are not sent.
type ConvertTask struct {
	Operation    string `json:"operation"`
	Input        string `json:"input"`
	OutputFormat string `json:"output_format"`
	Engine       string `json:"engine,omitempty"`

	VideoCodec     string `json:"video_codec,omitempty"`
	AudioCodec     string `json:"audio_codec,omitempty"`
	CRF            int    `json:"crf,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	VideoStartTime string `json:"video_start_time,omitempty"`
	VideoEndTime   string `json:"video_end_time,omitempty"`

	AudioBitrate int `json:"audio_bitrate,omitempty"`
	AudioQScale  int `json:"audio_qscale,omitempty"`

	Quality int    `json:"quality,omitempty"`
	Pages   string `json:"pages,omitempty"`
}

type Job struct {
	ID     string `json:"id"`
	Tag    string `json:"tag"`
	Status string `json:"status"`
	Tasks  []Task `json:"tasks"`
}

// Task finds a task of the job by name.
func (j *Job) Task(name string) (*Task, bool) {
	for i := range j.Tasks {
		if j.Tasks[i].Name == name {
			return &j.Tasks[i], true
		}
	}
	return nil, false
}

// FailedTask returns the first task in error state.
func (j *Job) FailedTask() (*Task, bool) {
	for i := range j.Tasks {
		if j.Tasks[i].Status == StatusError {
			return &j.Tasks[i], true
		}
	}
	return nil, false
}

type Task struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Operation string      `json:"operation"`
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Code      string      `json:"code,omitempty"`
	Result    *TaskResult `json:"result,omitempty"`
}

type TaskResult struct {
	Form  *UploadForm `json:"form,omitempty"`
	Files []File      `json:"files,omitempty"`
}

// UploadForm describes where and how the import/upload task accepts the file.
type UploadForm struct {
	URL        string         `json:"url"`
	Parameters map[string]any `json:"parameters"`
}

type File struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cloudconvert: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("cloudconvert: %d: %s", e.StatusCode, e.Message)
}

// JobError reports a job that ended with a failed task.
type JobError struct {
	JobID   string
	Task    string
	Code    string
	Message string
}

func (e *JobError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cloudconvert: job %s failed in task %s", e.JobID, e.Task)
	}
	return e.Message
}

// Conversion is one file to push through import, convert and export.
type Conversion struct {
	From     string
	To       string
	Filename string
	Recipe   ConvertTask
	Content  []byte
}

type envelope[T any] struct {
	Data T `json:"data"`
}
