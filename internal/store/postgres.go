package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nissyi-gh/remind/internal/model"
)

// Postgres keeps the task collection in a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and ensures the tasks table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure tasks table: %w", err)
	}
	return p, nil
}

// EnsureTable creates the tasks table if it doesn't exist.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS remind_tasks (
			id          TEXT PRIMARY KEY,
			position    INTEGER NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			deadline    TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			owner       TEXT
		)`)
	return err
}

// Load returns all tasks in stored order.
func (p *Postgres) Load(ctx context.Context) ([]model.Task, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, description, deadline, created_at, completed, owner
		FROM remind_tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Deadline, &t.CreatedAt, &t.Completed, &t.Owner); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

// Save replaces the stored collection in a single transaction.
func (p *Postgres) Save(ctx context.Context, tasks []model.Task) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM remind_tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	batch := &pgx.Batch{}
	for i, t := range tasks {
		batch.Queue(`
			INSERT INTO remind_tasks (id, position, title, description, deadline, created_at, completed, owner)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, i, t.Title, t.Description, t.Deadline, t.CreatedAt, t.Completed, t.Owner)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}
	return tx.Commit(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
