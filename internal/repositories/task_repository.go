package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	model "todo-manager.com/todo-manager/internal/models"
)

const DefaultTasksKey = "tasks"

var (
	ErrNoStoredTasks  = errors.New("no stored tasks")
	ErrMalformedTasks = errors.New("stored tasks are malformed")
)

//go:embed tasks.schema.json
var tasksSchemaSource string

var tasksSchema = jsonschema.MustCompileString("tasks.schema.json", tasksSchemaSource)

// TaskRepository encodes the task sequence as one JSON value under a fixed key.
// The next-id counter lives under "<key>:next_id" so ids are never reused
// after the highest task is deleted.
type TaskRepository struct {
	kv  KeyValueStore
	key string
}

func NewTaskRepository(kv KeyValueStore, key string) *TaskRepository {
	if key == "" {
		key = DefaultTasksKey
	}
	return &TaskRepository{kv: kv, key: key}
}

func (r *TaskRepository) Key() string {
	return r.key
}

func (r *TaskRepository) counterKey() string {
	return r.key + ":next_id"
}

// Load reads the persisted sequence. It returns ErrNoStoredTasks when nothing
// (or an empty list) is stored and wraps ErrMalformedTasks when the payload does
// not decode. nextID is 0 when the counter is missing, unreadable or invalid.
func (r *TaskRepository) Load(ctx context.Context) (tasks []model.Task, nextID int, err error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, 0, fmt.Errorf("read %q: %w", r.key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, 0, ErrNoStoredTasks
	}

	tasks, err = DecodeTasks([]byte(raw))
	if err != nil {
		return nil, 0, err
	}
	if len(tasks) == 0 {
		return nil, 0, ErrNoStoredTasks
	}

	// An unreadable counter leaves nextID at 0; the tasks are still returned.
	counter, ok, err := r.kv.Get(ctx, r.counterKey())
	if err == nil && ok {
		if n, convErr := strconv.Atoi(strings.TrimSpace(counter)); convErr == nil && n > 0 {
			nextID = n
		}
	}

	return tasks, nextID, nil
}

// Save overwrites the stored sequence and counter.
func (r *TaskRepository) Save(ctx context.Context, tasks []model.Task, nextID int) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}

	if err := r.kv.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("write %q: %w", r.key, err)
	}
	if err := r.kv.Set(ctx, r.counterKey(), strconv.Itoa(nextID)); err != nil {
		return fmt.Errorf("write %q: %w", r.counterKey(), err)
	}
	return nil
}

func EncodeTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses a persisted payload and checks it against the task list schema.
func DecodeTasks(data []byte) ([]model.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTasks, err)
	}
	if err := tasksSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTasks, err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTasks, err)
	}

	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedTasks, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return tasks, nil
}
