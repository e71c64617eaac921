package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "todo-manager.com/todo-manager/internal/data_models"
	apperrors "todo-manager.com/todo-manager/internal/errors"
	"todo-manager.com/todo-manager/internal/filters"
	"todo-manager.com/todo-manager/internal/forms"
	"todo-manager.com/todo-manager/internal/http/validators"
	"todo-manager.com/todo-manager/internal/services"
)

const warningHeader = "Warning"

type Handler struct {
	store *services.TaskStore
}

func NewHandler(store *services.TaskStore) *Handler {
	return &Handler{
		store: store,
	}
}

func (h *Handler) ListTasks(c echo.Context) error {
	f, err := filters.FromQuery(c.QueryParam("name"), c.QueryParam("priority"), c.QueryParam("completed"))
	if err != nil {
		return httpError(err)
	}

	tasks := h.store.Filtered(f)
	return c.JSON(http.StatusOK, dto.TaskListResponse{
		Count: len(tasks),
		Tasks: tasks,
	})
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	task, ok := h.store.Get(id)
	if !ok {
		return httpError(apperrors.ErrTaskNotFound)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.ErrInvalidJSON)
	}
	if errs := validators.ValidateCreateTaskRequest(&req); errs != nil {
		return validationFailed(c, errs)
	}

	task, err := h.store.Create(c.Request().Context(), req.Name, req.Description, req.Priority)
	if err != nil && !persistWarning(c, err) {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.ErrInvalidJSON)
	}

	current, ok := h.store.Get(id)
	if !ok {
		return httpError(apperrors.ErrTaskNotFound)
	}
	if errs := validators.ValidateUpdateTaskRequest(current, &req); errs != nil {
		return validationFailed(c, errs)
	}

	task, outcome, err := h.store.Update(c.Request().Context(), id, req.TaskUpdate())
	return h.respondOutcome(c, task, outcome, err)
}

func (h *Handler) ToggleCompleted(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.ToggleCompletedRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.ErrInvalidJSON)
	}
	if req.Completed == nil {
		return validationFailed(c, forms.ValidationErrors{"completed": "Completed is required"})
	}

	task, outcome, err := h.store.ToggleCompleted(c.Request().Context(), id, *req.Completed)
	return h.respondOutcome(c, task, outcome, err)
}

// DeleteTask needs ?confirm=true; the query flag is the confirmation answer.
func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	answer := services.ConfirmFunc(func(context.Context, string) bool {
		return confirmed
	})

	outcome, err := h.store.Delete(c.Request().Context(), id, answer)
	if err != nil && !persistWarning(c, err) {
		return httpError(err)
	}

	switch outcome {
	case services.OutcomeDeclined:
		return httpError(apperrors.ErrDeleteNotConfirmed)
	case services.OutcomeNotFound:
		return httpError(apperrors.ErrTaskNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) respondOutcome(c echo.Context, task any, outcome services.Outcome, err error) error {
	if err != nil && !persistWarning(c, err) {
		return httpError(err)
	}
	if outcome == services.OutcomeNotFound {
		return httpError(apperrors.ErrTaskNotFound)
	}
	return c.JSON(http.StatusOK, task)
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, httpError(apperrors.ErrInvalidTaskID)
	}
	return id, nil
}

// persistWarning reports a failed write in the Warning header and tells the
// caller to go on with the normal response, since the change itself was made.
func persistWarning(c echo.Context, err error) bool {
	if !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return false
	}
	c.Response().Header().Set(warningHeader, `199 - "`+apperrors.ErrPersistenceFailed.Message+`"`)
	return true
}

func validationFailed(c echo.Context, errs forms.ValidationErrors) error {
	return c.JSON(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
		Message: apperrors.ErrValidationFailed.Message,
		Errors:  errs,
	})
}

func httpError(err error) error {
	return echo.NewHTTPError(apperrors.StatusCode(err), apperrors.Message(err))
}
