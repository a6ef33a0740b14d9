package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nissyi-gh/remind/internal/model"
)

// TaskStore is the durable task collection. Every mutation loads the whole
// collection, changes it and saves it back through the Repository.
// Operations are serialized within the process only.
type TaskStore struct {
	mu           sync.Mutex
	repo         Repository
	defaultOwner string
	logger       *log.Logger
	now          func() time.Time
	newID        func() string
}

// Open builds the store on repo and assigns defaultOwner to every stored
// task that has no owner yet.
func Open(ctx context.Context, repo Repository, defaultOwner string, logger *log.Logger) (*TaskStore, error) {
	s := &TaskStore{
		repo:         repo,
		defaultOwner: defaultOwner,
		logger:       logger,
		now:          time.Now,
		newID:        func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	if err := s.migrateOwners(ctx); err != nil {
		return nil, fmt.Errorf("migrate owners: %w", err)
	}
	return s, nil
}

func (s *TaskStore) migrateOwners(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	migrated := 0
	for i := range tasks {
		if !tasks[i].HasOwner() {
			owner := s.defaultOwner
			tasks[i].Owner = &owner
			migrated++
		}
	}
	if migrated == 0 {
		return nil
	}
	if err := s.repo.Save(ctx, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Info("assigned default owner to legacy tasks", "owner", s.defaultOwner, "count", migrated)
	return nil
}

// DefaultOwner returns the owner given to tasks created without one.
func (s *TaskStore) DefaultOwner() string {
	return s.defaultOwner
}

// Add validates and persists a new task and returns its id. An empty owner
// is replaced by the default owner.
func (s *TaskStore) Add(ctx context.Context, title, description, deadline, owner string) (string, error) {
	title = strings.TrimSpace(title)
	deadline = strings.TrimSpace(deadline)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if _, err := model.ParseDate(deadline); err != nil {
		return "", &ValidationError{Field: "deadline", Message: "must be a valid date in YYYY-MM-DD format"}
	}
	if owner == "" {
		owner = s.defaultOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load tasks: %w", err)
	}
	t := model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Deadline:    deadline,
		CreatedAt:   model.FormatDate(s.now()),
		Completed:   false,
		Owner:       &owner,
	}
	if err := s.repo.Save(ctx, append(tasks, t)); err != nil {
		return "", fmt.Errorf("save tasks: %w", err)
	}
	return t.ID, nil
}

// visibleTo is the owner filter. Tasks without an owner predate owners and
// are shown to everyone.
func visibleTo(t model.Task, owner string) bool {
	return !t.HasOwner() || *t.Owner == owner
}

// List returns tasks in stored order. An empty owner returns every task.
func (s *TaskStore) List(ctx context.Context, owner string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if owner == "" {
		return tasks, nil
	}
	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if visibleTo(t, owner) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Get returns the task with id, or ErrNotFound.
func (s *TaskStore) Get(ctx context.Context, id string) (model.Task, error) {
	tasks, err := s.List(ctx, "")
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("get task %s: %w", id, ErrNotFound)
}

// Delete removes the task with id. It reports false, without error, when
// no such task exists.
func (s *TaskStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load tasks: %w", err)
	}
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}
	if err := s.repo.Save(ctx, kept); err != nil {
		return false, fmt.Errorf("save tasks: %w", err)
	}
	return true, nil
}

// Toggle flips the completed flag of the task with id. It reports false,
// without error, when no such task exists.
func (s *TaskStore) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i].Completed = !tasks[i].Completed
		if err := s.repo.Save(ctx, tasks); err != nil {
			return false, fmt.Errorf("save tasks: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// Close closes the underlying repository.
func (s *TaskStore) Close() error {
	return s.repo.Close()
}
