// Package query produces the sorted, countdown-annotated task feed shared by
// every front end and the reminder job.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/nissyi-gh/remind/internal/countdown"
	"github.com/nissyi-gh/remind/internal/model"
)

// TaskLister is the part of the task store the service reads from.
type TaskLister interface {
	List(ctx context.Context, owner string) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
}

// TaskView is a task with its countdown computed for today.
type TaskView struct {
	model.Task
	Countdown countdown.Countdown `json:"countdown"`
}

// Stats are aggregate counts over a task list.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Urgent    int `json:"urgent"`
}

// Service composes the store with the countdown engine.
type Service struct {
	tasks TaskLister
	now   func() time.Time
}

// NewService creates a Service reading from tasks. A nil now uses time.Now.
func NewService(tasks TaskLister, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{tasks: tasks, now: now}
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return model.DateOf(s.now())
}

func (s *Service) view(t model.Task, today time.Time) TaskView {
	return TaskView{Task: t, Countdown: countdown.Compute(t.Deadline, today)}
}

// TasksWithCountdown returns the owner's tasks, most overdue first. Tasks
// with equal days keep store order.
func (s *Service) TasksWithCountdown(ctx context.Context, owner string) ([]TaskView, error) {
	tasks, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, s.view(t, today))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Countdown.Days < views[j].Countdown.Days
	})
	return views, nil
}

// Pending returns TasksWithCountdown restricted to tasks not yet completed.
func (s *Service) Pending(ctx context.Context, owner string) ([]TaskView, error) {
	views, err := s.TasksWithCountdown(ctx, owner)
	if err != nil {
		return nil, err
	}
	pending := make([]TaskView, 0, len(views))
	for _, v := range views {
		if !v.Completed {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

// Get returns a single task with its countdown.
func (s *Service) Get(ctx context.Context, id string) (TaskView, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	return s.view(t, s.Today()), nil
}

// Stats counts the owner's tasks. Urgent counts pending tasks that are
// urgent or overdue.
func (s *Service) Stats(ctx context.Context, owner string) (Stats, error) {
	views, err := s.TasksWithCountdown(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	st.Total = len(views)
	for _, v := range views {
		if v.Completed {
			st.Completed++
			continue
		}
		st.Pending++
		if v.Countdown.Status.Pressing() {
			st.Urgent++
		}
	}
	return st, nil
}
