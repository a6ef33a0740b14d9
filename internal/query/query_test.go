package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/remind/internal/countdown"
	"github.com/nissyi-gh/remind/internal/model"
)

var today = time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)

func rel(days int) string {
	return model.FormatDate(today.AddDate(0, 0, days))
}

type fakeLister struct {
	tasks []model.Task
	err   error
	owner string
}

func (f *fakeLister) List(_ context.Context, owner string) ([]model.Task, error) {
	f.owner = owner
	return f.tasks, f.err
}

func (f *fakeLister) Get(_ context.Context, id string) (model.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, errors.New("missing")
}

func newTestService(tasks ...model.Task) (*Service, *fakeLister) {
	f := &fakeLister{tasks: tasks}
	return NewService(f, func() time.Time { return today }), f
}

func ids(views []TaskView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestTasksWithCountdownSortsByDays(t *testing.T) {
	s, _ := newTestService(
		model.Task{ID: "plus5", Deadline: rel(5)},
		model.Task{ID: "minus1", Deadline: rel(-1)},
		model.Task{ID: "today", Deadline: rel(0)},
	)

	views, err := s.TasksWithCountdown(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"minus1", "today", "plus5"}, ids(views))
	assert.Equal(t, countdown.StatusOverdue, views[0].Countdown.Status)
	assert.Equal(t, "due today", views[1].Countdown.Text)
	assert.Equal(t, countdown.StatusNormal, views[2].Countdown.Status)

	for i := 1; i < len(views); i++ {
		assert.LessOrEqual(t, views[i-1].Countdown.Days, views[i].Countdown.Days)
	}
}

func TestTasksWithCountdownStableForTies(t *testing.T) {
	s, _ := newTestService(
		model.Task{ID: "a", Deadline: rel(2)},
		model.Task{ID: "b", Deadline: rel(1)},
		model.Task{ID: "c", Deadline: rel(2)},
		model.Task{ID: "d", Deadline: rel(1)},
		model.Task{ID: "bad", Deadline: "not-a-date"},
		model.Task{ID: "e", Deadline: rel(0)},
	)

	views, err := s.TasksWithCountdown(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "e", "b", "d", "a", "c"}, ids(views))
	assert.True(t, views[0].Countdown.Unknown())
	assert.False(t, views[1].Countdown.Unknown())
}

func TestTasksWithCountdownPassesOwner(t *testing.T) {
	s, f := newTestService()
	_, err := s.TasksWithCountdown(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", f.owner)
}

func TestTasksWithCountdownPropagatesError(t *testing.T) {
	s, f := newTestService()
	f.err = errors.New("boom")

	_, err := s.TasksWithCountdown(context.Background(), "")
	assert.ErrorIs(t, err, f.err)
	_, err = s.Stats(context.Background(), "")
	assert.ErrorIs(t, err, f.err)
}

func TestPendingDropsCompleted(t *testing.T) {
	s, _ := newTestService(
		model.Task{ID: "done", Deadline: rel(-3), Completed: true},
		model.Task{ID: "open", Deadline: rel(4)},
		model.Task{ID: "late", Deadline: rel(-1)},
	)

	views, err := s.Pending(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "open"}, ids(views))
}

func TestStats(t *testing.T) {
	s, _ := newTestService(
		model.Task{ID: "1", Deadline: rel(-2)},
		model.Task{ID: "2", Deadline: rel(1)},
		model.Task{ID: "3", Deadline: rel(9)},
		model.Task{ID: "4", Deadline: rel(0), Completed: true},
		model.Task{ID: "5", Deadline: "garbage"},
	)

	st, err := s.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 5, Pending: 4, Completed: 1, Urgent: 2}, st)
}

func TestGet(t *testing.T) {
	s, _ := newTestService(model.Task{ID: "x", Deadline: rel(3)})

	v, err := s.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, countdown.Countdown{Days: 3, Status: countdown.StatusUrgent, Text: "3 days remaining"}, v.Countdown)

	_, err = s.Get(context.Background(), "y")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	s, _ := newTestService()
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), s.Today())
}
