package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nissyi-gh/remind/internal/model"
)

// Repository persists the whole task collection as one unit. Order is
// preserved between Save and the next Load.
type Repository interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
	Close() error
}

func defaultDataPath(name string) (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "remind")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func resolvePath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	p, err := defaultDataPath(name)
	if err != nil {
		return "", fmt.Errorf("determine data path: %w", err)
	}
	return p, nil
}
