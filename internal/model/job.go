package model

// JobStatus tracks the lifecycle of an audio conversion job
type JobStatus string

const (
	JobStatusStarting   JobStatus = "starting"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"

	// JobStatusNotFound is returned by status queries for jobs that were
	// never submitted or have already finished and been cleaned up.
	JobStatusNotFound JobStatus = "not found"
)

// Job is one in-flight audio-to-VTT conversion, keyed by the absolute path
// of the source audio file. Message is set only when Status is "error".
type Job struct {
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

// TaskStatusResponse is the body of GET /api/v1/task-status
type TaskStatusResponse struct {
	ActiveTasks map[string]Job `json:"active_tasks"`
}

// ConvertProcessResponse is the body of GET /api/v1/convert-process
type ConvertProcessResponse struct {
	Status JobStatus `json:"status"`
}

// ConvertAcceptedResponse is returned when an upload is queued for conversion
type ConvertAcceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Audio   string `json:"audio"`
}
