package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nissyi-gh/remind/internal/model"
	_ "modernc.org/sqlite"
)

// SQLite keeps the task collection in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite database and ensures the schema exists.
func NewSQLite(dbPath string) (*SQLite, error) {
	dbPath, err := resolvePath(dbPath, "remind.db")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT    PRIMARY KEY,
		position    INTEGER NOT NULL,
		title       TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		deadline    TEXT    NOT NULL,
		created_at  TEXT    NOT NULL,
		completed   INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := migrateOwner(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate owner: %w", err)
	}

	return &SQLite{db: db}, nil
}

// migrateOwner adds the nullable owner column to databases created before
// tasks had owners. Existing rows keep NULL until the store migration runs.
func migrateOwner(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(tasks)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasOwner := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "owner" {
			hasOwner = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasOwner {
		_, err := db.Exec("ALTER TABLE tasks ADD COLUMN owner TEXT")
		return err
	}
	return nil
}

func scanTask(scanner interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var comp int
	var owner sql.NullString
	if err := scanner.Scan(&t.ID, &t.Title, &t.Description, &t.Deadline, &t.CreatedAt, &comp, &owner); err != nil {
		return model.Task{}, err
	}
	t.Completed = comp != 0
	if owner.Valid {
		o := owner.String
		t.Owner = &o
	}
	return t, nil
}

// Load returns all tasks in stored order.
func (s *SQLite) Load(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, deadline, created_at, completed, owner FROM tasks ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Save replaces the stored collection in a single transaction.
func (s *SQLite) Save(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO tasks (id, position, title, description, deadline, created_at, completed, owner) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		comp := 0
		if t.Completed {
			comp = 1
		}
		var owner sql.NullString
		if t.Owner != nil {
			owner = sql.NullString{String: *t.Owner, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.ID, i, t.Title, t.Description, t.Deadline, t.CreatedAt, comp, owner); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
