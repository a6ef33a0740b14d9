package main

import (
	"context"
	"io"
	"os"

	"github.com/nissyi-gh/remind/internal/ui"
)

func tuiCommand(args []string) error {
	fs, configPath := newFlagSet("tui", os.Stderr)
	owner := fs.String("owner", "", "show only this owner's tasks and add new ones for them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs are dropped.
	a, err := newApp(context.Background(), *configPath, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	return ui.Run(a.store, a.query, ui.Options{
		Owner:    *owner,
		Renderer: a.renderer,
	})
}
