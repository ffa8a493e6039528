package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/model"
)

func TestFilterTasksNoFilterIsIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		tasks := randomTasks(r, r.Intn(20))
		got := FilterTasks(tasks, Filter{})
		assert.Equal(t, len(tasks), len(got))
		for j := range tasks {
			assert.Equal(t, tasks[j], got[j])
		}
	}
}

func TestFilterTasksIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	filters := []Filter{
		{Status: OnlyStatus(model.StatusInProgress)},
		{Unit: "PV06"},
		{Search: "pv"},
		{Status: OnlyStatus(model.StatusDone), Unit: "PA08", Search: "task"},
	}
	for i := 0; i < 50; i++ {
		tasks := randomTasks(r, 25)
		for _, f := range filters {
			once := FilterTasks(tasks, f)
			assert.Equal(t, once, FilterTasks(once, f))
		}
	}
}

func TestFilterTasksSearchIsCaseInsensitive(t *testing.T) {
	tasks := model.SampleTasks()
	upper := FilterTasks(tasks, Filter{Search: "PV06"})
	lower := FilterTasks(tasks, Filter{Search: "pv06"})
	assert.Equal(t, upper, lower)
	assert.Len(t, upper, 1)
	assert.Equal(t, 1, upper[0].ID)
}

func TestFilterTasksSearchFields(t *testing.T) {
	tasks := model.SampleTasks()
	assert.Len(t, FilterTasks(tasks, Filter{Search: "NGƯỜI NƯỚC NGOÀI"}), 1, "title")
	assert.Len(t, FilterTasks(tasks, Filter{Search: "pa08"}), 1, "unit")
	assert.Len(t, FilterTasks(tasks, Filter{Search: "phản hồi"}), 1, "note")
	assert.Empty(t, FilterTasks(tasks, Filter{Search: "tốt"}), "evaluation is not searched")
}

func TestFilterTasksBlankSearchMatchesAll(t *testing.T) {
	tasks := model.SampleTasks()
	assert.Equal(t, tasks, FilterTasks(tasks, Filter{Search: "   \t"}))
}

func TestFilterTasksConjunction(t *testing.T) {
	tasks := model.SampleTasks()

	got := FilterTasks(tasks, Filter{Status: OnlyStatus(model.StatusInProgress), Search: "dữ liệu"})
	assert.Len(t, got, 2)

	got = FilterTasks(tasks, Filter{Status: OnlyStatus(model.StatusInProgress), Unit: "PA08", Search: "dữ liệu"})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	got = FilterTasks(tasks, Filter{Status: OnlyStatus(model.StatusDone), Unit: "PA08"})
	assert.Empty(t, got)
}

func TestFilterTasksPreservesOrder(t *testing.T) {
	tasks := []model.TaskRecord{
		task(9, "X", model.StatusDone, 100),
		task(3, "Y", model.StatusPaused, 10),
		task(5, "X", model.StatusDone, 100),
	}
	got := FilterTasks(tasks, Filter{Unit: "X"})
	assert.Equal(t, []int{9, 5}, []int{got[0].ID, got[1].ID})
}

func TestFilterTasksDoesNotAlias(t *testing.T) {
	tasks := model.SampleTasks()
	got := FilterTasks(tasks, Filter{})
	got[0].Title = "changed"
	assert.NotEqual(t, "changed", tasks[0].Title)
}

func TestParseStatusFilter(t *testing.T) {
	for _, in := range []string{"", "all", " ALL "} {
		st, err := ParseStatusFilter(in)
		require.NoError(t, err, in)
		assert.Nil(t, st, in)
	}

	st, err := ParseStatusFilter("not_started")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, model.StatusNotStarted, *st)

	_, err = ParseStatusFilter("finished")
	assert.Error(t, err)
}

func TestFilterByNotStartedMatchesZeroValue(t *testing.T) {
	tasks := []model.TaskRecord{{ID: 1}, task(2, "PV06", model.StatusDone, 100)}
	got := FilterTasks(tasks, Filter{Status: OnlyStatus(model.StatusNotStarted)})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestUnits(t *testing.T) {
	tasks := append(model.SampleTasks(), task(4, "PV06", model.StatusPaused, 0), task(5, " ", model.StatusPaused, 0))
	assert.Equal(t, []string{"PV06", "PA08", "PV01"}, Units(tasks))
}
