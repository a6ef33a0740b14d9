package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissyi-gh/remind/internal/config"
	"github.com/nissyi-gh/remind/internal/notify"
	"github.com/nissyi-gh/remind/internal/store"
)

// isolate runs the test in an empty directory with storage under it.
func isolate(t *testing.T, driver string) string {
	t.Helper()

	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("REMIND_STORAGE", driver)
	t.Setenv("REMIND_DATA", filepath.Join(dir, "data"))
	t.Setenv("EMAIL_SMTP_SERVER", "")
	return dir
}

func TestRunUnknownCommand(t *testing.T) {
	assert.ErrorContains(t, run([]string{"bogus"}), `unknown command "bogus"`)
}

func TestOpenRepository(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard)

	repo, err := openRepository(context.Background(), config.Storage{Driver: config.DriverJSON, Path: filepath.Join(dir, "t.json")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &store.JSONFile{}, repo)
	require.NoError(t, repo.Close())

	repo, err = openRepository(context.Background(), config.Storage{Driver: config.DriverSQLite, Path: filepath.Join(dir, "t.db")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &store.SQLite{}, repo)
	require.NoError(t, repo.Close())
}

func TestNotifierSelection(t *testing.T) {
	a := &app{cfg: config.Default(), logger: log.New(io.Discard)}
	assert.IsType(t, &notify.LogNotifier{}, a.notifier(io.Discard, false))

	a.cfg.Email = config.Email{SMTPServer: "smtp.example.com", SMTPPort: 587, Sender: "a@example.com", Recipients: []string{"b@example.com"}}
	assert.IsType(t, &notify.Mailer{}, a.notifier(io.Discard, false))
	assert.IsType(t, &notify.LogNotifier{}, a.notifier(io.Discard, true))
}

func TestImportAndSendCommands(t *testing.T) {
	dir := isolate(t, config.DriverSQLite)

	file := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(file, []byte("tasks:\n  - title: Water plants\n    deadline: 2020-01-01\n"), 0o644))

	require.NoError(t, run([]string{"import", file}))
	require.NoError(t, run([]string{"send", "-dry-run"}))

	a, err := newApp(context.Background(), "", io.Discard)
	require.NoError(t, err)
	defer a.Close()
	pending, err := a.query.Pending(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Water plants", pending[0].Title)
}

func TestImportCommandNeedsFile(t *testing.T) {
	isolate(t, config.DriverJSON)
	assert.Error(t, run([]string{"import"}))
}

func TestLocation(t *testing.T) {
	a := &app{cfg: config.Default()}
	loc, err := a.location()
	require.NoError(t, err)
	assert.Equal(t, "Local", loc.String())

	a.cfg.Reminder.Timezone = "UTC"
	loc, err = a.location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	a.cfg.Reminder.Timezone = "Not/AZone"
	_, err = a.location()
	assert.Error(t, err)
}

func TestInOrder(t *testing.T) {
	var order []string
	step := func(name string, err error) gfshutdown.Operation {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	stopErr := errors.New("scheduler busy")
	closeErr := errors.New("disk full")

	err := inOrder(step("scheduler", stopErr), step("http", nil), step("store", closeErr))(context.Background())
	assert.Equal(t, []string{"scheduler", "http", "store"}, order)
	assert.ErrorIs(t, err, stopErr)
	assert.ErrorIs(t, err, closeErr)

	order = nil
	assert.NoError(t, inOrder(step("a", nil), step("b", nil))(context.Background()))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestNewAppRendererOwner(t *testing.T) {
	isolate(t, config.DriverJSON)
	t.Setenv("REMIND_DEFAULT_OWNER", "household")

	a, err := newApp(context.Background(), "", io.Discard)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "household", a.store.DefaultOwner())
	assert.Equal(t, "household", a.renderer.DefaultOwner)
}

// chdir changes the working directory for the rest of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
