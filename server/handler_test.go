package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alt-coder/chartflow/charts"
	"github.com/alt-coder/chartflow/tasks"
)

func newTestServer(t *testing.T) (*gin.Engine, *tasks.Store, *tasks.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := charts.NewRenderer(t.TempDir())
	require.NoError(t, err)
	pipeline := charts.NewPipeline(renderer)

	store := tasks.NewStore()
	metrics := NewMetrics()
	runner := tasks.NewRunner(store, pipeline, zap.NewNop(),
		tasks.WithObserver(metrics.ObserveTask))
	handler := NewHandler(store, runner, zap.NewNop())
	return NewRouter(handler, metrics, zap.NewNop()), store, runner
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) TaskResponse {
	t.Helper()
	var resp TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func barChart(title string) charts.Spec {
	return charts.Spec{
		Type:   charts.TypeBar,
		Title:  title,
		Labels: []string{"Q1", "Q2"},
		Series: []charts.Series{{Name: "2025", Values: []float64{1, 2}}},
	}
}

func waitStatus(t *testing.T, store *tasks.Store, id string, want tasks.Status) tasks.Task {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	var got tasks.Task
	require.Eventually(t, func() bool {
		snapshot, ok := store.Get(parsed)
		if !ok || snapshot.Status != want {
			return false
		}
		got = *snapshot
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestCreateTask(t *testing.T) {
	router, store, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/tasks",
		CreateTaskRequest{Charts: []charts.Spec{barChart("Revenue")}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	created := decodeTask(t, w)
	assert.NotEmpty(t, created.ID)

	done := waitStatus(t, store, created.ID, tasks.StatusSucceeded)
	assert.Len(t, done.Artifacts, 1)
}

func TestCreateTaskInvalidBody(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskRejectsEmptyRequest(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/tasks", CreateTaskRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "prompt or at least one chart")
}

func TestCreateTaskPromptWithoutGenerator(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/tasks", CreateTaskRequest{Prompt: "plot revenue"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "generator")
}

func TestCreateTaskDuringShutdown(t *testing.T) {
	router, _, runner := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(ctx))

	w := doJSON(t, router, http.MethodPost, "/v1/tasks",
		CreateTaskRequest{Charts: []charts.Spec{barChart("Revenue")}})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "shutting down")
}

func TestGetTask(t *testing.T) {
	router, store, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/tasks",
		CreateTaskRequest{Charts: []charts.Spec{barChart("Revenue")}})
	require.Equal(t, http.StatusAccepted, w.Code)
	created := decodeTask(t, w)
	waitStatus(t, store, created.ID, tasks.StatusSucceeded)

	got := doJSON(t, router, http.MethodGet, "/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, string(tasks.StatusSucceeded), decodeTask(t, got).Status)
}

func TestGetTaskBadID(t *testing.T) {
	router, _, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/v1/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTaskNotFound(t *testing.T) {
	router, _, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/v1/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTasks(t *testing.T) {
	router, store, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPost, "/v1/tasks",
			CreateTaskRequest{Charts: []charts.Spec{barChart(fmt.Sprintf("Chart %d", i))}})
		require.Equal(t, http.StatusAccepted, w.Code)
		waitStatus(t, store, decodeTask(t, w).ID, tasks.StatusSucceeded)
	}

	w := doJSON(t, router, http.MethodGet, "/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ListTasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)

	limited := doJSON(t, router, http.MethodGet, "/v1/tasks?limit=1", nil)
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	none := doJSON(t, router, http.MethodGet, "/v1/tasks?status=failed", nil)
	require.NoError(t, json.Unmarshal(none.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	bad := doJSON(t, router, http.MethodGet, "/v1/tasks?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCancelTask(t *testing.T) {
	router, store, _ := newTestServer(t)

	bad := doJSON(t, router, http.MethodPost, "/v1/tasks/not-a-uuid/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	missing := doJSON(t, router, http.MethodPost, "/v1/tasks/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	w := doJSON(t, router, http.MethodPost, "/v1/tasks",
		CreateTaskRequest{Charts: []charts.Spec{barChart("Revenue")}})
	require.Equal(t, http.StatusAccepted, w.Code)
	created := decodeTask(t, w)
	waitStatus(t, store, created.ID, tasks.StatusSucceeded)

	finished := doJSON(t, router, http.MethodPost, "/v1/tasks/"+created.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, finished.Code)
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	doJSON(t, router, http.MethodGet, "/health", nil)
	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chartflow_http_requests_total")
}
