package dto

import model "todo-manager.com/todo-manager/internal/models"

type CreateTaskRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
}

type UpdateTaskRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Priority    *model.Priority `json:"priority"`
	Completed   *bool           `json:"completed"`
}

func (r UpdateTaskRequest) TaskUpdate() model.TaskUpdate {
	return model.TaskUpdate{
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
		Completed:   r.Completed,
	}
}

type ToggleCompletedRequest struct {
	Completed *bool `json:"completed"`
}

type TaskListResponse struct {
	Count int          `json:"count"`
	Tasks []model.Task `json:"tasks"`
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}
