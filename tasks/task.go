package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/alt-coder/chartflow/charts"
)

// Status is a task's position in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// Task is one rendering job tracked by the service. A task owns a single
// flow run; its status is written only by the runner goroutine driving that
// flow.
type Task struct {
	ID        uuid.UUID       `json:"id"`
	Request   *charts.Request `json:"request"`
	Status    Status          `json:"status"`
	Artifacts []string        `json:"artifacts,omitempty"`
	Error     string          `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// New builds a pending task for the request.
func New(req *charts.Request) *Task {
	return &Task{
		ID:        uuid.New(),
		Request:   req,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Duration reports how long the task ran, zero while unfinished.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// MarkRunning transitions the task to running.
func (t *Task) MarkRunning() {
	now := time.Now().UTC()
	t.Status = StatusRunning
	t.StartedAt = &now
}

// MarkSucceeded finishes the task with its rendered artifacts.
func (t *Task) MarkSucceeded(artifacts []string) {
	now := time.Now().UTC()
	t.Status = StatusSucceeded
	t.Artifacts = artifacts
	t.FinishedAt = &now
}

// MarkFailed finishes the task with an error.
func (t *Task) MarkFailed(err error) {
	now := time.Now().UTC()
	t.Status = StatusFailed
	t.Error = err.Error()
	t.FinishedAt = &now
}

// MarkCanceled finishes the task as canceled by the caller.
func (t *Task) MarkCanceled() {
	now := time.Now().UTC()
	t.Status = StatusCanceled
	t.FinishedAt = &now
}

// Clone returns a copy safe to hand across goroutines.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Artifacts = append([]string(nil), t.Artifacts...)
	return &clone
}
