package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/model"
)

func ids(tasks []model.TaskRecord) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSortTasks(t *testing.T) {
	tasks := model.SampleTasks()

	assert.Equal(t, []int{1, 2, 3}, ids(SortTasks(tasks, SortByID, false)))
	assert.Equal(t, []int{3, 2, 1}, ids(SortTasks(tasks, SortByID, true)))
	assert.Equal(t, []int{1, 2, 3}, ids(SortTasks(tasks, SortByProgress, false)))
	assert.Equal(t, []int{2, 3, 1}, ids(SortTasks(tasks, SortByUnit, false)))
	assert.Equal(t, []int{1, 2, 3}, ids(SortTasks(tasks, SortByStatus, false)))
}

func TestSortTasksStable(t *testing.T) {
	tasks := []model.TaskRecord{
		task(1, "A", model.StatusDone, 50),
		task(2, "B", model.StatusDone, 50),
		task(3, "C", model.StatusDone, 10),
	}
	assert.Equal(t, []int{3, 1, 2}, ids(SortTasks(tasks, SortByProgress, false)))
	assert.Equal(t, []int{1, 2, 3}, ids(SortTasks(tasks, SortByProgress, true)))
}

func TestSortTasksVietnameseCollation(t *testing.T) {
	tasks := []model.TaskRecord{
		{ID: 1, Title: "đường truyền"},
		{ID: 2, Title: "dữ liệu"},
		{ID: 3, Title: "e-office"},
	}
	assert.Equal(t, []int{2, 1, 3}, ids(SortTasks(tasks, SortByName, false)))
}

func TestSortTasksCopies(t *testing.T) {
	tasks := model.SampleTasks()
	_ = SortTasks(tasks, SortByID, true)
	assert.Equal(t, []int{1, 2, 3}, ids(tasks))
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("Progress")
	require.NoError(t, err)
	assert.Equal(t, SortByProgress, f)

	f, err = ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByID, f)

	_, err = ParseSortField("priority")
	assert.Error(t, err)
}
