package validators

import (
	dto "todo-manager.com/todo-manager/internal/data_models"
	"todo-manager.com/todo-manager/internal/forms"
	model "todo-manager.com/todo-manager/internal/models"
)

// ValidateCreateTaskRequest fills the default priority and checks the fields
// the same way the task form does.
func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) forms.ValidationErrors {
	if r.Priority == "" {
		r.Priority = model.PriorityLow
	}
	return forms.Validate(forms.Fields{
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
	})
}

// ValidateUpdateTaskRequest checks current with the request merged over it.
func ValidateUpdateTaskRequest(current model.Task, r *dto.UpdateTaskRequest) forms.ValidationErrors {
	merged := r.TaskUpdate().Apply(current)
	return forms.Validate(forms.FieldsOf(merged))
}
