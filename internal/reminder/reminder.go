// Package reminder runs the pending-task reminder, once or on a daily schedule.
package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/nissyi-gh/remind/internal/notify"
	"github.com/nissyi-gh/remind/internal/query"
)

// DefaultClock is the reminder time used when none, or an invalid one, is configured.
const DefaultClock = "08:00"

// PendingFeed supplies the tasks a reminder covers.
type PendingFeed interface {
	Pending(ctx context.Context, owner string) ([]query.TaskView, error)
}

// Result describes one reminder pass.
type Result struct {
	Sent  bool
	Count int
}

// Job pulls pending tasks for every owner and hands them to a Notifier.
type Job struct {
	feed     PendingFeed
	notifier notify.Notifier
	logger   *log.Logger
}

// NewJob creates a Job.
func NewJob(feed PendingFeed, notifier notify.Notifier, logger *log.Logger) *Job {
	return &Job{feed: feed, notifier: notifier, logger: logger}
}

// Run performs one pass. Nothing is sent when no task is pending.
func (j *Job) Run(ctx context.Context) (Result, error) {
	pending, err := j.feed.Pending(ctx, "")
	if err != nil {
		return Result{}, fmt.Errorf("load pending tasks: %w", err)
	}
	if len(pending) == 0 {
		j.logger.Info("no pending tasks, skipping reminder")
		return Result{}, nil
	}
	if err := j.notifier.Send(ctx, pending); err != nil {
		return Result{Count: len(pending)}, err
	}
	return Result{Sent: true, Count: len(pending)}, nil
}

// ParseClock parses "HH:MM" in 24-hour time.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// Scheduler fires a Job once a day at a fixed wall-clock time. A tick that
// arrives while the previous one is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	job    *Job
	logger *log.Logger
	expr   string
}

// NewScheduler schedules job daily at clock ("HH:MM") in loc. An invalid
// clock falls back to DefaultClock with a warning.
func NewScheduler(job *Job, clock string, loc *time.Location, logger *log.Logger) (*Scheduler, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		logger.Warn("invalid reminder time, using default", "time", clock, "default", DefaultClock, "err", err)
		hour, minute, _ = ParseClock(DefaultClock)
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Scheduler{
		job:    job,
		logger: logger,
		expr:   fmt.Sprintf("%d %d * * *", minute, hour),
	}
	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(s.expr, s.tick); err != nil {
		return nil, fmt.Errorf("schedule reminder: %w", err)
	}
	return s, nil
}

// Expr returns the cron expression the scheduler uses.
func (s *Scheduler) Expr() string {
	return s.expr
}

// Next returns the next time the reminder will fire.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger routes cron's own messages into the application logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

func (s *Scheduler) tick() {
	s.logger.Info("running daily reminder")
	res, err := s.job.Run(context.Background())
	switch {
	case err != nil:
		s.logger.Error("reminder failed", "err", err)
	case res.Sent:
		s.logger.Info("reminder sent", "tasks", res.Count)
	}
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "cron", s.expr, "next", s.Next().Format(time.RFC3339))
}

// Stop stops the schedule and waits for a running tick, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
