package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const usage = `remind - deadline reminders for personal tasks

Usage:
  remind <command> [flags]

Commands:
  serve     run the web UI and JSON API, with the daily reminder
  schedule  run only the daily reminder
  send      send the reminder once
  tui       open the terminal UI
  import    add tasks from a YAML file

Run "remind <command> -h" for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return serveCommand(nil)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return serveCommand(rest)
	case "schedule":
		return scheduleCommand(rest)
	case "send":
		return sendCommand(rest)
	case "tui":
		return tuiCommand(rest)
	case "import":
		return importCommand(rest)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newFlagSet returns a flag set for a subcommand with the shared -config flag.
func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("remind "+name, flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "config file (.yaml, .yml or .toml)")
	return fs, configPath
}
