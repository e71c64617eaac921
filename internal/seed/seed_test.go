package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_SeedIsUsable(t *testing.T) {
	tasks := Tasks()
	require.Len(t, tasks, 10)

	for i, task := range tasks {
		assert.Equal(t, i+1, task.ID)
		assert.True(t, task.Priority.Valid())
		assert.GreaterOrEqual(t, len(task.Name), 10)
		assert.GreaterOrEqual(t, len(task.Description), 20)
	}
	assert.Equal(t, 11, NextID())
}

func TestTasks_ReturnsCopy(t *testing.T) {
	first := Tasks()
	first[0].Name = "changed by caller"

	assert.NotEqual(t, "changed by caller", Tasks()[0].Name)
}
