// Package forms validates task input and tracks the create/edit form state.
package forms

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	model "todo-manager.com/todo-manager/internal/models"
)

const (
	MinNameLength        = 10
	MinDescriptionLength = 20
)

// Fields is the editable content of a task form.
type Fields struct {
	Name        string         `json:"name" validate:"notblank,trimmin=10"`
	Description string         `json:"description" validate:"notblank,trimmin=20"`
	Priority    model.Priority `json:"priority" validate:"oneof=Low Medium High"`
	Completed   bool           `json:"completed"`
}

func DefaultFields() Fields {
	return Fields{Priority: model.PriorityLow}
}

func FieldsOf(t model.Task) Fields {
	return Fields{
		Name:        t.Name,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
	}
}

// Update converts the form content to a full TaskUpdate.
func (f Fields) Update() model.TaskUpdate {
	return model.TaskUpdate{
		Name:        &f.Name,
		Description: &f.Description,
		Priority:    &f.Priority,
		Completed:   &f.Completed,
	}
}

// ValidationErrors maps a JSON field name to its message.
type ValidationErrors map[string]string

// Fields returns the failing field names in sorted order.
func (v ValidationErrors) Fields() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v ValidationErrors) Error() string {
	keys := v.Fields()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return v
}

var messages = map[string]map[string]string{
	"name": {
		"notblank": "Task name is required",
		"trimmin":  "Task name must have at least 10 characters",
	},
	"description": {
		"notblank": "Description is required",
		"trimmin":  "Task description must have at least 20 characters",
	},
	"priority": {
		"oneof": "Priority must be one of Low, Medium or High",
	},
}

// Validate checks every field and returns nil when the input is acceptable.
func Validate(f Fields) ValidationErrors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{"form": err.Error()}
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}
