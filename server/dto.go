package server

import (
	"time"

	"github.com/alt-coder/chartflow/charts"
	"github.com/alt-coder/chartflow/tasks"
)

// CreateTaskRequest is the create-task payload: inline chart specs or a
// prompt, never both.
type CreateTaskRequest struct {
	Prompt   string        `json:"prompt,omitempty"`
	Charts   []charts.Spec `json:"charts,omitempty"`
	Parallel bool          `json:"parallel,omitempty"`
}

func (r *CreateTaskRequest) toDomain() *charts.Request {
	return &charts.Request{
		Prompt:   r.Prompt,
		Charts:   r.Charts,
		Parallel: r.Parallel,
	}
}

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Artifacts  []string   `json:"artifacts,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func taskFromDomain(t *tasks.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID.String(),
		Status:     string(t.Status),
		Artifacts:  t.Artifacts,
		Error:      t.Error,
		CreatedAt:  t.CreatedAt,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
	}
}

// ListTasksResponse wraps a task listing.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}
