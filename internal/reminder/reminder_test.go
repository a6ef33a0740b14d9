package reminder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/remind/internal/model"
	"github.com/nissyi-gh/remind/internal/query"
)

type fakeFeed struct {
	tasks []query.TaskView
	err   error
}

func (f fakeFeed) Pending(context.Context, string) ([]query.TaskView, error) {
	return f.tasks, f.err
}

type recordingNotifier struct {
	calls int
	got   []query.TaskView
	err   error
}

func (n *recordingNotifier) Send(_ context.Context, tasks []query.TaskView) error {
	n.calls++
	n.got = tasks
	return n.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestJobSkipsWhenNothingPending(t *testing.T) {
	n := &recordingNotifier{}
	job := NewJob(fakeFeed{}, n, quietLogger())

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, n.calls)
}

func TestJobSendsPending(t *testing.T) {
	tasks := []query.TaskView{{Task: model.Task{ID: "1"}}, {Task: model.Task{ID: "2"}}}
	n := &recordingNotifier{}
	job := NewJob(fakeFeed{tasks: tasks}, n, quietLogger())

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: true, Count: 2}, res)
	assert.Equal(t, 1, n.calls)
	assert.Equal(t, tasks, n.got)
}

func TestJobReportsSendFailure(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	job := NewJob(fakeFeed{tasks: []query.TaskView{{}}}, n, quietLogger())

	res, err := job.Run(context.Background())
	assert.ErrorIs(t, err, n.err)
	assert.False(t, res.Sent)
	assert.Equal(t, 1, n.calls, "no retry")
}

func TestJobReportsFeedFailure(t *testing.T) {
	feedErr := errors.New("disk gone")
	n := &recordingNotifier{}
	job := NewJob(fakeFeed{err: feedErr}, n, quietLogger())

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, feedErr)
	assert.Zero(t, n.calls)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"23:59", 23, 59, false},
		{"0:5", 0, 5, false},
		{" 07:30 ", 7, 30, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"-1:10", 0, 0, true},
		{"0800", 0, 0, true},
		{"ab:cd", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		h, m, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.h, h, tt.in)
		assert.Equal(t, tt.m, m, tt.in)
	}
}

func TestNewSchedulerExpr(t *testing.T) {
	job := NewJob(fakeFeed{}, &recordingNotifier{}, quietLogger())

	s, err := NewScheduler(job, "07:45", time.UTC, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "45 7 * * *", s.Expr())

	fallback, err := NewScheduler(job, "25:99", time.UTC, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "0 8 * * *", fallback.Expr())
}

func TestSchedulerStartStop(t *testing.T) {
	job := NewJob(fakeFeed{}, &recordingNotifier{}, quietLogger())
	s, err := NewScheduler(job, "06:15", time.UTC, quietLogger())
	require.NoError(t, err)

	s.Start()
	next := s.Next().In(time.UTC)
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 15, next.Minute())
	assert.True(t, next.After(time.Now()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSchedulerTickRunsJob(t *testing.T) {
	n := &recordingNotifier{}
	job := NewJob(fakeFeed{tasks: []query.TaskView{{}}}, n, quietLogger())
	s, err := NewScheduler(job, "08:00", time.UTC, quietLogger())
	require.NoError(t, err)

	s.tick()
	assert.Equal(t, 1, n.calls)
}
