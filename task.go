package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nissyi-gh/remind/internal/importer"
)

func sendCommand(args []string) error {
	fs, configPath := newFlagSet("send", os.Stderr)
	dryRun := fs.Bool("dry-run", false, "print the digest instead of emailing it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.reminderJob(os.Stdout, *dryRun).Run(ctx)
	if err != nil {
		return err
	}
	if !res.Sent {
		fmt.Println("No pending tasks, nothing sent.")
		return nil
	}
	fmt.Printf("Reminder sent for %d pending tasks.\n", res.Count)
	return nil
}

func importCommand(args []string) error {
	fs, configPath := newFlagSet("import", os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: remind import [-config file] <tasks.yaml>")
	}

	ctx := context.Background()
	a, err := newApp(ctx, *configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := importer.ImportFile(ctx, a.store, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("Imported %d tasks.\n", n)
	return nil
}
