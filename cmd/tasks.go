package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	dto "todo-manager.com/todo-manager/internal/data_models"
	apperrors "todo-manager.com/todo-manager/internal/errors"
	"todo-manager.com/todo-manager/internal/filters"
	"todo-manager.com/todo-manager/internal/forms"
	model "todo-manager.com/todo-manager/internal/models"
	"todo-manager.com/todo-manager/internal/services"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		name, priority, completed string
		asJSON                    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.FromQuery(name, priority, completed)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			tasks := a.store.Filtered(filter)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dto.TaskListResponse{Count: len(tasks), Tasks: tasks})
			}

			printTasks(cmd.OutOrStdout(), tasks)
			if !filter.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) matching %s\n", len(tasks), filter)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "case-insensitive substring of the task name")
	cmd.Flags().StringVar(&priority, "priority", "", "Low, Medium or High")
	cmd.Flags().StringVar(&completed, "completed", "", "true or false")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var name, description, priority string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			form := forms.NewForm(a.store)
			form.Toggle()
			form.SetName(name)
			form.SetDescription(description)
			form.SetPriority(model.Priority(priority))

			task, errs, err := form.Submit(cmd.Context())
			return reportSubmit(cmd.OutOrStdout(), "created", task, errs, err)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "task name (at least 10 characters)")
	cmd.Flags().StringVar(&description, "description", "", "task description (at least 20 characters)")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityLow), "Low, Medium or High")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var name, description, priority string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task's name, description or priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			current, ok := a.store.Get(id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, apperrors.ErrTaskNotFound)
			}

			form := forms.NewForm(a.store)
			form.Edit(current)
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.SetName(name)
			}
			if flags.Changed("description") {
				form.SetDescription(description)
			}
			if flags.Changed("priority") {
				form.SetPriority(model.Priority(priority))
			}

			task, errs, err := form.Submit(cmd.Context())
			return reportSubmit(cmd.OutOrStdout(), "updated", task, errs, err)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new task name")
	cmd.Flags().StringVar(&description, "description", "", "new task description")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority: Low, Medium or High")
	return cmd
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID true|false",
		Short: "Mark a task completed or not completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			completed, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("completed must be true or false, got %q", args[1])
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			task, outcome, err := a.store.ToggleCompleted(cmd.Context(), id, completed)
			if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
				return err
			}
			if outcome == services.OutcomeNotFound {
				return fmt.Errorf("task %d: %w", id, apperrors.ErrTaskNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d completed=%t\n", task.ID, task.Completed)
			return err
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			var confirm services.Confirmer = services.NewPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = services.Confirmed
			}

			outcome, err := a.store.Delete(cmd.Context(), id, confirm)
			if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
				return err
			}
			switch outcome {
			case services.OutcomeNotFound:
				return fmt.Errorf("task %d: %w", id, apperrors.ErrTaskNotFound)
			case services.OutcomeDeclined:
				fmt.Fprintln(cmd.OutOrStdout(), "delete cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d deleted\n", id)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func reportSubmit(w io.Writer, verb string, task model.Task, errs forms.ValidationErrors, err error) error {
	if errs != nil {
		for _, field := range errs.Fields() {
			fmt.Fprintf(w, "%s: %s\n", field, errs[field])
		}
		return apperrors.ErrValidationFailed
	}
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return err
	}
	fmt.Fprintf(w, "task %d %s\n", task.ID, verb)
	printTasks(w, []model.Task{task})
	return err
}

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidTaskID, s)
	}
	return id, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PRIORITY", "DONE", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, task := range tasks {
		done := " "
		if task.Completed {
			done = "x"
		}
		t.Row(strconv.Itoa(task.ID), task.Name, string(task.Priority), done, task.Description)
	}
	fmt.Fprintln(w, t.String())
}
