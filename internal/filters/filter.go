// Package filters derives the visible task list from three independent predicates.
package filters

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "todo-manager.com/todo-manager/internal/errors"
	model "todo-manager.com/todo-manager/internal/models"
)

// Filter is conjunctive. The zero value of each field means unset, so the zero
// Filter passes every task.
type Filter struct {
	Name      string
	Priority  model.Priority
	Completed *bool
}

func (f Filter) Matches(t model.Task) bool {
	if !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f Filter) IsZero() bool {
	return f.Name == "" && f.Priority == "" && f.Completed == nil
}

func (f *Filter) Reset() {
	*f = Filter{}
}

// Set assigns one predicate from its textual form. An empty value unsets it.
func (f *Filter) Set(field, value string) error {
	switch field {
	case "name":
		f.Name = value
	case "priority":
		if value == "" {
			f.Priority = ""
			return nil
		}
		p, ok := model.ParsePriority(value)
		if !ok {
			return fmt.Errorf("%w: priority %q", apperrors.ErrInvalidFilter, value)
		}
		f.Priority = p
	case "completed":
		if value == "" {
			f.Completed = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: completed %q", apperrors.ErrInvalidFilter, value)
		}
		f.Completed = &b
	default:
		return fmt.Errorf("%w: unknown field %q", apperrors.ErrInvalidFilter, field)
	}
	return nil
}

func FromQuery(name, priority, completed string) (Filter, error) {
	var f Filter
	if err := f.Set("name", name); err != nil {
		return Filter{}, err
	}
	if err := f.Set("priority", priority); err != nil {
		return Filter{}, err
	}
	if err := f.Set("completed", completed); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// String renders the active predicates, e.g. `name~"milk" priority=High`.
func (f Filter) String() string {
	var parts []string
	if f.Name != "" {
		parts = append(parts, fmt.Sprintf("name~%q", f.Name))
	}
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.Completed != nil {
		parts = append(parts, "completed="+strconv.FormatBool(*f.Completed))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
