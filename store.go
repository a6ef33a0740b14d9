package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nissyi-gh/remind/internal/config"
	"github.com/nissyi-gh/remind/internal/logging"
	"github.com/nissyi-gh/remind/internal/notify"
	"github.com/nissyi-gh/remind/internal/query"
	"github.com/nissyi-gh/remind/internal/reminder"
	"github.com/nissyi-gh/remind/internal/store"
)

// app holds the components every command shares.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	store    *store.TaskStore
	query    *query.Service
	renderer notify.Renderer
}

// newApp loads configuration and opens the task store. Logs go to logOut.
func newApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)

	repo, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	s, err := store.Open(ctx, repo, cfg.DefaultOwner, logger)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  s,
		query:  query.NewService(s, nil),
		renderer: notify.Renderer{
			DefaultOwner: s.DefaultOwner(),
			Names:        cfg.DisplayName,
		},
	}, nil
}

func openRepository(ctx context.Context, cfg config.Storage, logger *log.Logger) (store.Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return store.NewSQLite(cfg.Path)
	case config.DriverPostgres:
		return store.NewPostgres(ctx, cfg.DSN)
	default:
		repo, err := store.NewJSONFile(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using json storage", "path", repo.Path())
		return repo, nil
	}
}

// notifier returns the SMTP mailer when email is configured, and otherwise
// a notifier that prints the digest to out. dryRun always prints.
func (a *app) notifier(out io.Writer, dryRun bool) notify.Notifier {
	if a.cfg.Email.Enabled() && !dryRun {
		return notify.NewMailer(a.cfg.Email, a.renderer, a.logger)
	}
	return notify.NewLogNotifier(a.renderer, out, a.logger)
}

func (a *app) reminderJob(out io.Writer, dryRun bool) *reminder.Job {
	return reminder.NewJob(a.query, a.notifier(out, dryRun), a.logger)
}

// location returns the configured reminder time zone, or the local one.
func (a *app) location() (*time.Location, error) {
	if a.cfg.Reminder.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.cfg.Reminder.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", a.cfg.Reminder.Timezone, err)
	}
	return loc, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
