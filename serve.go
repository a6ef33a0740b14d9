package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/nissyi-gh/remind/internal/api"
	"github.com/nissyi-gh/remind/internal/reminder"
)

const shutdownTimeout = 30 * time.Second

func serveCommand(args []string) error {
	fs, configPath := newFlagSet("serve", os.Stderr)
	noScheduler := fs.Bool("no-scheduler", false, "do not run the daily reminder in this process")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *configPath, os.Stderr)
	if err != nil {
		return err
	}

	job := a.reminderJob(os.Stdout, false)
	srv := api.New(a.store, a.query, job, a.cfg.APIKey, a.logger)

	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		a.Close()
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr, err)
	}

	steps := []gfshutdown.Operation{srv.Shutdown, closeStore(a)}
	if !*noScheduler {
		sched, err := newScheduler(a, job)
		if err != nil {
			ln.Close()
			a.Close()
			return err
		}
		sched.Start()
		steps = append([]gfshutdown.Operation{sched.Stop}, steps...)
	}

	go func() {
		if err := srv.Serve(ln); err != nil {
			a.logger.Error("http server stopped", "err", err)
		}
	}()

	return waitForShutdown(a, map[string]gfshutdown.Operation{"serve": inOrder(steps...)})
}

func scheduleCommand(args []string) error {
	fs, configPath := newFlagSet("schedule", os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(context.Background(), *configPath, os.Stderr)
	if err != nil {
		return err
	}
	sched, err := newScheduler(a, a.reminderJob(os.Stdout, false))
	if err != nil {
		a.Close()
		return err
	}
	sched.Start()

	return waitForShutdown(a, map[string]gfshutdown.Operation{
		"schedule": inOrder(sched.Stop, closeStore(a)),
	})
}

func newScheduler(a *app, job *reminder.Job) (*reminder.Scheduler, error) {
	loc, err := a.location()
	if err != nil {
		return nil, err
	}
	return reminder.NewScheduler(job, a.cfg.Reminder.Time, loc, a.logger)
}

// inOrder runs steps one after another as a single shutdown operation, since
// gfshutdown runs separate operations concurrently. Later steps still run
// after a failure.
func inOrder(steps ...gfshutdown.Operation) gfshutdown.Operation {
	return func(ctx context.Context) error {
		var errs []error
		for _, step := range steps {
			if err := step(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func closeStore(a *app) gfshutdown.Operation {
	return func(context.Context) error {
		return a.Close()
	}
}

// waitForShutdown blocks until SIGINT or SIGTERM and then runs ops.
func waitForShutdown(a *app, ops map[string]gfshutdown.Operation) error {
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, ops)
	exitCode := <-wait
	a.logger.Info("shutdown complete", "code", exitCode)
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with code %d", exitCode)
	}
	return nil
}
