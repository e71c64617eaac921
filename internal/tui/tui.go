// Package tui is an interactive terminal front end for the task store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "todo-manager.com/todo-manager/internal/errors"
	"todo-manager.com/todo-manager/internal/filters"
	"todo-manager.com/todo-manager/internal/forms"
	model "todo-manager.com/todo-manager/internal/models"
	"todo-manager.com/todo-manager/internal/services"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeNameFilter
)

const (
	focusName = iota
	focusDescription
	focusPriority
	focusCount
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("60")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type Model struct {
	ctx    context.Context
	store  *services.TaskStore
	form   *forms.Form
	filter filters.Filter

	tasks  []model.Task
	cursor int
	mode   mode

	name        textinput.Model
	description textinput.Model
	focus       int
	nameFilter  textinput.Model

	pendingDelete int
	status        string
}

func New(ctx context.Context, store *services.TaskStore) Model {
	name := textinput.New()
	name.Placeholder = "Task name"
	name.CharLimit = 120
	name.Width = 50

	description := textinput.New()
	description.Placeholder = "Description"
	description.CharLimit = 500
	description.Width = 50

	nameFilter := textinput.New()
	nameFilter.Placeholder = "Filter by name..."
	nameFilter.Prompt = "/ "
	nameFilter.Width = 40

	m := Model{
		ctx:         ctx,
		store:       store,
		form:        forms.NewForm(store),
		name:        name,
		description: description,
		nameFilter:  nameFilter,
		status:      "n new, e edit, space toggle, d delete, / filter, q quit",
	}
	m.refresh()
	return m
}

func Run(ctx context.Context, store *services.TaskStore) error {
	_, err := tea.NewProgram(New(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeNameFilter:
			return m.updateNameFilter(msg)
		default:
			return m.updateList(msg)
		}
	case tea.WindowSizeMsg:
		width := max(msg.Width-10, 20)
		m.name.Width = width
		m.description.Width = width
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "n":
		m.form.Toggle()
		if m.form.IsOpen() {
			cmd := m.enterForm()
			return m, cmd
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.form.Edit(t)
			cmd := m.enterForm()
			return m, cmd
		}
	case " ":
		if t, ok := m.selected(); ok {
			_, outcome, err := m.store.ToggleCompleted(m.ctx, t.ID, !t.Completed)
			m.status = describe(fmt.Sprintf("Task %d updated", t.ID), outcome, err)
			m.refresh()
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.pendingDelete = t.ID
			m.mode = modeConfirmDelete
			m.status = services.DeletePrompt + " (y/n)"
		}
	case "/":
		m.mode = modeNameFilter
		cmd := m.nameFilter.Focus()
		return m, cmd
	case "p":
		m.filter.Priority = nextPriority(m.filter.Priority)
		m.refresh()
	case "c":
		m.filter.Completed = nextCompleted(m.filter.Completed)
		m.refresh()
	case "r":
		m.filter.Reset()
		m.nameFilter.SetValue("")
		m.refresh()
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDelete
	m.pendingDelete = 0
	m.mode = modeList

	answer := services.Declined
	if strings.ToLower(msg.String()) == "y" {
		answer = services.Confirmed
	}

	outcome, err := m.store.Delete(m.ctx, id, answer)
	if outcome == services.OutcomeDeclined {
		m.status = "Delete cancelled"
		return m, nil
	}
	m.status = describe(fmt.Sprintf("Task %d deleted", id), outcome, err)
	m.refresh()
	return m, nil
}

func (m Model) updateNameFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.nameFilter.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.nameFilter, cmd = m.nameFilter.Update(msg)
	m.filter.Name = m.nameFilter.Value()
	m.refresh()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.Close()
		m.mode = modeList
		m.status = "Form closed"
		return m, nil
	case "tab", "down":
		cmd := m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case "enter":
		return m.submit()
	}

	if m.focus == focusPriority {
		switch msg.String() {
		case "right", "l", " ":
			next := nextPriority(m.form.Fields().Priority)
			if next == "" {
				next = model.PriorityLow
			}
			m.form.SetPriority(next)
		case "left", "h":
			m.form.SetPriority(prevPriority(m.form.Fields().Priority))
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.form.SetName(m.name.Value())
	m.form.SetDescription(m.description.Value())

	_, editing := m.form.Editing()
	task, errs, err := m.form.Submit(m.ctx)
	if errs != nil {
		m.status = "Fix the highlighted fields"
		return m, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		m.status = "Error: " + apperrors.Message(err)
		m.refresh()
		return m, nil
	}

	verb := "created"
	if editing {
		verb = "updated"
	}
	m.status = describe(fmt.Sprintf("Task %d %s", task.ID, verb), services.OutcomeApplied, err)
	m.form.Close()
	m.mode = modeList
	m.name.Blur()
	m.description.Blur()
	m.refresh()
	return m, nil
}

func (m *Model) enterForm() tea.Cmd {
	fields := m.form.Fields()
	m.name.SetValue(fields.Name)
	m.name.CursorEnd()
	m.description.SetValue(fields.Description)
	m.description.CursorEnd()
	m.mode = modeForm
	return m.setFocus(focusName)
}

func (m *Model) setFocus(f int) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.description.Blur()
	switch f {
	case focusName:
		return m.name.Focus()
	case focusDescription:
		return m.description.Focus()
	}
	return nil
}

func (m *Model) refresh() {
	m.tasks = m.store.Filtered(m.filter)
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
}

func (m Model) selected() (model.Task, bool) {
	if len(m.tasks) == 0 {
		return model.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("filters: %s  (p priority, c completed, r reset)", m.filter)))
	b.WriteString("\n")
	if m.mode == modeNameFilter {
		b.WriteString(m.nameFilter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("  no tasks match"))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", check, t.Name, badgeStyle.Render(string(t.Priority)))
		switch {
		case i == m.cursor:
			line = selectedStyle.Render("> " + line)
		case t.Completed:
			line = "  " + doneStyle.Render(line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.mode == modeForm {
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(m.formView()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.status))
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder

	title := "Create New Task"
	if _, editing := m.form.Editing(); editing {
		title = "Update Task"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	errs := m.form.Errors()
	b.WriteString(m.name.View())
	b.WriteString("\n")
	if msg, ok := errs["name"]; ok {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString(m.description.View())
	b.WriteString("\n")
	if msg, ok := errs["description"]; ok {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}

	priority := fmt.Sprintf("Priority: < %s >", m.form.Fields().Priority)
	if m.focus == focusPriority {
		priority = selectedStyle.Render(priority)
	}
	b.WriteString(priority)
	b.WriteString("\n")

	var other []string
	for field, msg := range errs {
		if field != "name" && field != "description" {
			other = append(other, msg)
		}
	}
	sort.Strings(other)
	for _, msg := range other {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab next field, enter save, esc close"))
	return b.String()
}

func describe(done string, outcome services.Outcome, err error) string {
	switch {
	case errors.Is(err, apperrors.ErrPersistenceFailed):
		return done + ", but " + apperrors.ErrPersistenceFailed.Message
	case err != nil:
		return "Error: " + apperrors.Message(err)
	case outcome == services.OutcomeNotFound:
		return "Task no longer exists"
	}
	return done
}

func nextPriority(p model.Priority) model.Priority {
	switch p {
	case "":
		return model.PriorityLow
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	}
	return ""
}

func prevPriority(p model.Priority) model.Priority {
	switch p {
	case model.PriorityHigh:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityLow
	case model.PriorityLow:
		return model.PriorityHigh
	}
	return model.PriorityLow
}

func nextCompleted(c *bool) *bool {
	switch {
	case c == nil:
		v := false
		return &v
	case !*c:
		v := true
		return &v
	}
	return nil
}
