package jobx

import (
	"encoding/json"
	"time"
)

// DefaultQueue is where jobs land when no queue is named.
const DefaultQueue = "default"

// JobStatus is the lifecycle state of a stored job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusRetrying  JobStatus = "retrying"
	JobStatusFailed    JobStatus = "failed"
)

// Job is what producers enqueue. MaxRetries counts retries after the
// first attempt, so a job with MaxRetries 2 runs at most three times.
type Job struct {
	Type       string          `json:"type"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	MaxRetries int             `json:"max_retries"`
}

// JobInfo is the stored form of a job, including its runtime state.
// Attempts counts dequeues, so inside a handler it is the number of the
// current attempt.
type JobInfo struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Status     JobStatus       `json:"status"`
	Error      string          `json:"error,omitempty"`
	MaxRetries int             `json:"max_retries"`
	Attempts   int             `json:"attempts"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
