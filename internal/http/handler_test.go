package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "todo-manager.com/todo-manager/internal/data_models"
	model "todo-manager.com/todo-manager/internal/models"
	repository "todo-manager.com/todo-manager/internal/repositories"
	"todo-manager.com/todo-manager/internal/services"
)

type failingWrites struct {
	*repository.MemoryStore
	fail atomic.Bool
}

func (f *failingWrites) Set(ctx context.Context, key, value string) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func setupServer(t *testing.T, kv repository.KeyValueStore, rateLimit int) (*echo.Echo, *services.TaskStore) {
	t.Helper()

	logger := log.New(io.Discard)
	store := services.NewTaskStore(repository.NewTaskRepository(kv, ""), logger)
	require.NoError(t, store.Initialize(context.Background()))

	e := echo.New()
	Register(e, NewHandler(store), rateLimit, logger)
	return e, store
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestListTasks(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)

	rec := do(e, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.TaskListResponse](t, rec)
	assert.Equal(t, len(store.Tasks()), list.Count)
	assert.Equal(t, store.Tasks(), list.Tasks)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = do(e, http.MethodGet, "/tasks?priority=High&completed=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, task := range decode[dto.TaskListResponse](t, rec).Tasks {
		assert.Equal(t, model.PriorityHigh, task.Priority)
		assert.False(t, task.Completed)
	}

	rec = do(e, http.MethodGet, "/tasks?priority=urgent", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTask(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)
	want, _ := store.Get(2)

	rec := do(e, http.MethodGet, "/tasks/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, decode[model.Task](t, rec))

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/tasks/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/tasks/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/tasks/0", "").Code)
}

func TestCreateTask(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)
	nextID := store.NextID()

	rec := do(e, http.MethodPost, "/tasks", `{"name":"Buy groceries today","description":"Pick up milk, eggs, bread from the store"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[model.Task](t, rec)
	assert.Equal(t, nextID, created.ID)
	assert.Equal(t, model.PriorityLow, created.Priority)
	assert.False(t, created.Completed)
}

func TestCreateTask_Validation(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)
	before := store.Tasks()

	rec := do(e, http.MethodPost, "/tasks", `{"name":"too short","description":"   ","priority":"High"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode[dto.ValidationErrorResponse](t, rec)
	assert.Equal(t, "Task name must have at least 10 characters", body.Errors["name"])
	assert.Equal(t, "Description is required", body.Errors["description"])
	assert.Equal(t, before, store.Tasks())

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/tasks", `{"name":`).Code)
}

func TestUpdateTask(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)
	before, _ := store.Get(1)

	rec := do(e, http.MethodPut, "/tasks/1", `{"priority":"High"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	want := before
	want.Priority = model.PriorityHigh
	assert.Equal(t, want, decode[model.Task](t, rec))

	rec = do(e, http.MethodPut, "/tasks/1", `{"name":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPut, "/tasks/77", `{"priority":"High"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleCompleted(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)

	rec := do(e, http.MethodPatch, "/tasks/1/completed", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.Task](t, rec).Completed)

	got, _ := store.Get(1)
	assert.True(t, got.Completed)

	assert.Equal(t, http.StatusUnprocessableEntity, do(e, http.MethodPatch, "/tasks/1/completed", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPatch, "/tasks/500/completed", `{"completed":false}`).Code)
}

func TestDeleteTask(t *testing.T) {
	e, store := setupServer(t, repository.NewMemoryStore(), 1000)

	rec := do(e, http.MethodDelete, "/tasks/4", "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	_, ok := store.Get(4)
	assert.True(t, ok)

	rec = do(e, http.MethodDelete, "/tasks/4?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok = store.Get(4)
	assert.False(t, ok)

	rec = do(e, http.MethodDelete, "/tasks/4?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersistenceWarning(t *testing.T) {
	kv := &failingWrites{MemoryStore: repository.NewMemoryStore()}
	e, store := setupServer(t, kv, 1000)
	kv.fail.Store(true)

	rec := do(e, http.MethodPatch, "/tasks/2/completed", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Warning"), "could not be saved")

	got, _ := store.Get(2)
	assert.True(t, got.Completed)
}

func TestRateLimiter(t *testing.T) {
	e, _ := setupServer(t, repository.NewMemoryStore(), 2)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/tasks", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/tasks", "").Code)

	rec := do(e, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
