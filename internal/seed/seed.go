// Package seed holds the task list used when storage has nothing usable.
package seed

import (
	_ "embed"

	model "todo-manager.com/todo-manager/internal/models"
	repository "todo-manager.com/todo-manager/internal/repositories"
)

//go:embed tasks.json
var defaultTasks []byte

// Tasks returns a fresh copy of the default sequence.
func Tasks() []model.Task {
	tasks, err := repository.DecodeTasks(defaultTasks)
	if err != nil {
		panic("seed: " + err.Error())
	}
	return tasks
}

// NextID is the first id handed out after seeding.
func NextID() int {
	maxID := 0
	for _, t := range Tasks() {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
