package forms

import (
	"context"
	"errors"

	apperrors "todo-manager.com/todo-manager/internal/errors"
	model "todo-manager.com/todo-manager/internal/models"
	"todo-manager.com/todo-manager/internal/services"
)

// TaskWriter is the part of the task store a form submits to.
type TaskWriter interface {
	Create(ctx context.Context, name, description string, priority model.Priority) (model.Task, error)
	Update(ctx context.Context, id int, upd model.TaskUpdate) (model.Task, services.Outcome, error)
}

// Form holds the create/edit form. At most one task is under edit; choosing
// another one replaces it without warning.
type Form struct {
	store  TaskWriter
	open   bool
	target int
	fields Fields
	errors ValidationErrors
}

func NewForm(store TaskWriter) *Form {
	return &Form{
		store:  store,
		fields: DefaultFields(),
	}
}

func (f *Form) IsOpen() bool { return f.open }

// Editing returns the id of the task under edit.
func (f *Form) Editing() (int, bool) {
	return f.target, f.target != 0
}

func (f *Form) Fields() Fields { return f.fields }

func (f *Form) Errors() ValidationErrors { return f.errors }

// Toggle shows or hides the form. Either way it leaves edit mode with empty fields.
func (f *Form) Toggle() {
	f.open = !f.open
	f.reset()
}

func (f *Form) Close() {
	f.open = false
	f.reset()
}

// Edit loads t into the form and opens it.
func (f *Form) Edit(t model.Task) {
	f.target = t.ID
	f.fields = FieldsOf(t)
	f.errors = nil
	f.open = true
}

func (f *Form) SetName(v string)             { f.fields.Name = v }
func (f *Form) SetDescription(v string)      { f.fields.Description = v }
func (f *Form) SetPriority(p model.Priority) { f.fields.Priority = p }

// Submit validates the content and creates or updates a task. On validation
// failure nothing is written and the content stays as typed. A persistence
// warning still counts as a completed submission.
func (f *Form) Submit(ctx context.Context) (model.Task, ValidationErrors, error) {
	if errs := Validate(f.fields); errs != nil {
		f.errors = errs
		return model.Task{}, errs, nil
	}
	f.errors = nil

	if f.target == 0 {
		created, err := f.store.Create(ctx, f.fields.Name, f.fields.Description, f.fields.Priority)
		if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
			return model.Task{}, nil, err
		}
		f.reset()
		return created, nil, err
	}

	updated, outcome, err := f.store.Update(ctx, f.target, f.fields.Update())
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return model.Task{}, nil, err
	}
	if outcome == services.OutcomeNotFound {
		// The task vanished while under edit. Keep the typed content so it can
		// be submitted again as a new task.
		f.target = 0
		return model.Task{}, nil, apperrors.ErrTaskNotFound
	}
	f.reset()
	return updated, nil, err
}

func (f *Form) reset() {
	f.target = 0
	f.fields = DefaultFields()
	f.errors = nil
}
