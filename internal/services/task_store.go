package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	apperrors "todo-manager.com/todo-manager/internal/errors"
	"todo-manager.com/todo-manager/internal/filters"
	model "todo-manager.com/todo-manager/internal/models"
	repository "todo-manager.com/todo-manager/internal/repositories"
	"todo-manager.com/todo-manager/internal/seed"
)

// TaskStore owns the ordered task sequence and the next-id counter. It is the
// only writer of persisted state; readers get copies.
type TaskStore struct {
	repo   *repository.TaskRepository
	logger *log.Logger

	mu          sync.Mutex
	initialized bool
	tasks       []model.Task
	nextID      int
}

func NewTaskStore(repo *repository.TaskRepository, logger *log.Logger) *TaskStore {
	return &TaskStore{
		repo:   repo,
		logger: logger,
	}
}

// Initialize loads the persisted sequence, or seeds the defaults when storage is
// empty or unreadable. Only the first call does anything.
func (s *TaskStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	tasks, nextID, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.tasks = tasks
		s.nextID = max(nextID, calcNextID(tasks))
		s.initialized = true
		s.logger.Info("loaded tasks", "key", s.repo.Key(), "count", len(tasks), "next_id", s.nextID)
		return nil

	case errors.Is(err, repository.ErrNoStoredTasks), errors.Is(err, repository.ErrMalformedTasks):
		if errors.Is(err, repository.ErrMalformedTasks) {
			s.logger.Warn("stored tasks are unusable, seeding defaults", "key", s.repo.Key(), "err", err)
		} else {
			s.logger.Info("no stored tasks, seeding defaults", "key", s.repo.Key())
		}
		s.tasks = seed.Tasks()
		s.nextID = seed.NextID()
		s.initialized = true
		return s.persistLocked(ctx)

	default:
		// Storage could not be read at all. Keep the defaults in memory but leave
		// whatever is stored alone until the first mutation.
		s.logger.Warn("could not read stored tasks, using defaults", "key", s.repo.Key(), "err", err)
		s.tasks = seed.Tasks()
		s.nextID = seed.NextID()
		s.initialized = true
		return nil
	}
}

func (s *TaskStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Tasks returns a copy of the sequence in insertion order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

func (s *TaskStore) Filtered(f filters.Filter) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.Apply(s.tasks)
}

func (s *TaskStore) Get(id int) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		return model.Task{}, false
	}
	return s.tasks[idx], true
}

// NextID reports the id the next Create will assign.
func (s *TaskStore) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// Create appends a new, not yet completed task. An empty priority means Low;
// any other value outside Low, Medium and High is rejected.
func (s *TaskStore) Create(ctx context.Context, name, description string, priority model.Priority) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	if priority == "" {
		priority = model.PriorityLow
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidPriority, priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return model.Task{}, apperrors.ErrStoreNotInitialized
	}

	created := model.Task{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		Priority:    priority,
		Completed:   false,
	}
	s.tasks = append(s.tasks, created)
	s.nextID++

	s.logger.Debug("task created", "id", created.ID)
	return created, s.persistLocked(ctx)
}

// Update merges the supplied fields over the task with the given id.
func (s *TaskStore) Update(ctx context.Context, id int, upd model.TaskUpdate) (model.Task, Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, OutcomeRejected, err
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return model.Task{}, OutcomeRejected, fmt.Errorf("%w: %q", apperrors.ErrInvalidPriority, *upd.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return model.Task{}, OutcomeRejected, apperrors.ErrStoreNotInitialized
	}

	idx := s.indexOf(id)
	if idx == -1 {
		s.logger.Debug("update of unknown task", "id", id)
		return model.Task{}, OutcomeNotFound, nil
	}

	updated := upd.Apply(s.tasks[idx])
	s.tasks[idx] = updated

	s.logger.Debug("task updated", "id", id)
	return updated, OutcomeApplied, s.persistLocked(ctx)
}

func (s *TaskStore) ToggleCompleted(ctx context.Context, id int, completed bool) (model.Task, Outcome, error) {
	return s.Update(ctx, id, model.TaskUpdate{Completed: &completed})
}

// Delete removes the task once confirm agrees. The question is asked before the
// store is locked, so a slow prompt does not block other callers.
func (s *TaskStore) Delete(ctx context.Context, id int, confirm Confirmer) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeRejected, err
	}
	if !s.Initialized() {
		return OutcomeRejected, apperrors.ErrStoreNotInitialized
	}

	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		s.logger.Debug("delete declined", "id", id)
		return OutcomeDeclined, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx == -1 {
		s.logger.Debug("delete of unknown task", "id", id)
		return OutcomeNotFound, nil
	}

	s.tasks = slices.Delete(s.tasks, idx, idx+1)

	s.logger.Debug("task deleted", "id", id)
	return OutcomeApplied, s.persistLocked(ctx)
}

// Persist writes the whole sequence again. Mutations call it implicitly; callers
// use it to retry after ErrPersistenceFailed.
func (s *TaskStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return apperrors.ErrStoreNotInitialized
	}
	return s.persistLocked(ctx)
}

func (s *TaskStore) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.tasks, s.nextID); err != nil {
		s.logger.Warn("failed to persist tasks", "key", s.repo.Key(), "err", err)
		return fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err)
	}
	return nil
}

func (s *TaskStore) indexOf(id int) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool {
		return t.ID == id
	})
}

// calcNextID returns max(id)+1 so a missing counter never hands out a used id.
func calcNextID(ts []model.Task) int {
	maxID := 0
	for _, t := range ts {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
