package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nissyi-gh/remind/internal/model"
)

type document struct {
	Tasks []model.Task `json:"tasks"`
}

// JSONFile keeps the task collection in a single JSON document.
type JSONFile struct {
	path   string
	logger *log.Logger
}

// NewJSONFile returns a repository backed by the document at path. An empty
// path selects tasks.json under the user's data directory.
func NewJSONFile(path string, logger *log.Logger) (*JSONFile, error) {
	p, err := resolvePath(path, "tasks.json")
	if err != nil {
		return nil, err
	}
	return &JSONFile{path: p, logger: logger}, nil
}

// Path returns the location of the document.
func (f *JSONFile) Path() string {
	return f.path
}

// Load reads the document. A missing, unreadable or corrupt document loads
// as an empty collection.
func (f *JSONFile) Load(_ context.Context) ([]model.Task, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("task file unreadable, starting empty", "path", f.path, "err", err)
		}
		return []model.Task{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("task file corrupt, starting empty", "path", f.path, "err", err)
		return []model.Task{}, nil
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	return doc.Tasks, nil
}

// Save replaces the document. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (f *JSONFile) Save(_ context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(document{Tasks: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (f *JSONFile) Close() error {
	return nil
}
