package board

import (
	"testing"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func task(id int64, status api.Status, cat *int64) api.Task {
	return api.Task{ID: id, Title: "task", Status: status, CategoryID: cat}
}

func ids(tasks []api.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tasks := []api.Task{
		task(1, api.StatusPending, ptr[int64](1)),
		task(2, api.StatusPending, ptr[int64](2)),
		task(3, api.StatusReview, nil),
		task(4, api.StatusCompleted, ptr[int64](1)),
	}

	t.Run("nil selector returns all", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2, 3, 4}, ids(Filter(tasks, nil)))
	})

	t.Run("selector keeps matching tasks in order", func(t *testing.T) {
		assert.Equal(t, []int64{1, 4}, ids(Filter(tasks, ptr[int64](1))))
	})

	t.Run("unknown category yields empty", func(t *testing.T) {
		assert.Empty(t, Filter(tasks, ptr[int64](99)))
	})

	t.Run("result is a subset with matching category", func(t *testing.T) {
		for _, got := range Filter(tasks, ptr[int64](2)) {
			require.NotNil(t, got.CategoryID)
			assert.Equal(t, int64(2), *got.CategoryID)
		}
	})
}

func TestPartition(t *testing.T) {
	tasks := []api.Task{
		task(1, api.StatusPending, nil),
		task(2, api.StatusInProgress, nil),
		task(3, api.StatusPending, nil),
		task(4, "late", nil),
		task(5, api.StatusCompleted, nil),
		task(6, api.StatusReview, nil),
	}

	lanes := Partition(tasks)
	assert.Equal(t, []int64{1, 3}, ids(lanes.Pending))
	assert.Equal(t, []int64{2}, ids(lanes.InProgress))
	assert.Equal(t, []int64{6}, ids(lanes.Review))
	assert.Equal(t, []int64{5}, ids(lanes.Completed))
	assert.Equal(t, 5, lanes.Len())

	t.Run("unknown statuses are excluded but recoverable", func(t *testing.T) {
		assert.Equal(t, []int64{4}, ids(Unlaned(tasks)))
		assert.Equal(t, len(tasks), lanes.Len()+len(Unlaned(tasks)))
	})

	t.Run("every laned task matches its lane", func(t *testing.T) {
		for _, s := range api.Statuses {
			for _, got := range lanes.Lane(s) {
				assert.Equal(t, s, got.Status)
			}
		}
	})
}

func TestFilterThenPartition(t *testing.T) {
	tasks := []api.Task{
		task(1, api.StatusPending, ptr[int64](1)),
		task(2, api.StatusPending, ptr[int64](2)),
		task(3, api.StatusReview, ptr[int64](1)),
	}

	lanes := Partition(Filter(tasks, ptr[int64](1)))
	assert.Equal(t, []int64{1}, ids(lanes.Pending))
	assert.Equal(t, []int64{3}, ids(lanes.Review))
	assert.Empty(t, lanes.InProgress)
}

func TestCategoryIndex(t *testing.T) {
	idx := NewCategoryIndex([]api.Category{
		{ID: 1, Name: "Work", Color: "blue"},
		{ID: 2, Name: "Home", Color: "teal"},
	})

	assert.Equal(t, "Work", idx.Name(ptr[int64](1)))
	assert.Equal(t, ColorBlue, idx.Color(ptr[int64](1)))
	assert.Equal(t, ColorGray, idx.Color(ptr[int64](2)), "unknown token renders gray")
	assert.Equal(t, Uncategorized, idx.Name(ptr[int64](7)), "dangling reference")
	assert.Equal(t, Uncategorized, idx.Name(nil))

	t.Run("filter cycle", func(t *testing.T) {
		sel := idx.NextFilter(nil)
		require.NotNil(t, sel)
		assert.Equal(t, int64(1), *sel)
		sel = idx.NextFilter(sel)
		require.NotNil(t, sel)
		assert.Equal(t, int64(2), *sel)
		assert.Nil(t, idx.NextFilter(sel))
		assert.Nil(t, NewCategoryIndex(nil).NextFilter(nil))
	})
}

func TestPriorityAndOverdue(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("HIGH"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
	assert.Equal(t, "medium", ParsePriority("").String())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	overdue := api.Task{Status: api.StatusPending, Deadline: &past}
	assert.True(t, IsOverdue(overdue, now))

	done := api.Task{Status: api.StatusCompleted, Deadline: &past}
	assert.False(t, IsOverdue(done, now))
	assert.False(t, IsOverdue(api.Task{Status: api.StatusPending}, now))
}
