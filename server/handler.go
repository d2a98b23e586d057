package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alt-coder/chartflow/tasks"
)

// Handler serves the task protocol over the store and runner.
type Handler struct {
	store  *tasks.Store
	runner *tasks.Runner
	log    *zap.Logger
}

// NewHandler builds the API handler.
func NewHandler(store *tasks.Store, runner *tasks.Runner, log *zap.Logger) *Handler {
	return &Handler{store: store, runner: runner, log: log}
}

// CreateTask accepts a rendering request and launches its flow.
// POST /v1/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	task := tasks.New(req.toDomain())
	if err := h.runner.Start(task); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, tasks.ErrShuttingDown) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	snapshot, _ := h.store.Get(task.ID)
	c.JSON(http.StatusAccepted, taskFromDomain(snapshot))
}

// GetTask returns one task.
// GET /v1/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		return
	}
	task, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		return
	}
	c.JSON(http.StatusOK, taskFromDomain(task))
}

// ListTasks returns tasks, newest first.
// GET /v1/tasks?status=...&limit=...
func (h *Handler) ListTasks(c *gin.Context) {
	filter := tasks.Filter{Status: tasks.Status(c.Query("status")), Limit: 50}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = parsed
	}

	listed := h.store.List(filter)
	resp := ListTasksResponse{Tasks: make([]TaskResponse, len(listed)), Count: len(listed)}
	for i, t := range listed {
		resp.Tasks[i] = taskFromDomain(t)
	}
	c.JSON(http.StatusOK, resp)
}

// CancelTask cancels a running task's context. Already-running node phases
// finish on their own; the flow stops at the next point that observes the
// cancellation.
// POST /v1/tasks/:id/cancel
func (h *Handler) CancelTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		return
	}
	task, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		return
	}
	if task.Status.IsTerminal() {
		c.JSON(http.StatusConflict, errorResponse{Error: "task already finished"})
		return
	}
	if !h.runner.Cancel(id) {
		c.JSON(http.StatusConflict, errorResponse{Error: "task is not running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "canceling"})
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": h.store.Count()})
}
