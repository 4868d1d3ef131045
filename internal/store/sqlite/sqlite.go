// Package sqlite is a SQLite-backed to-do collection for the reference server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/idilsaglam/todos/internal/model"
)

// Store implements store.Backend using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per-connection.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		body TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ListAll returns every item in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body, completed FROM todos ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var (
			id int64
			it model.Item
		)
		if err := rows.Scan(&id, &it.Body, &it.Completed); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		it.ID = model.NumericID(id)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return items, nil
}

// Create inserts a new item and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, body string, completed bool) (model.Item, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (body, completed) VALUES (?, ?)`, body, completed)
	if err != nil {
		return model.Item{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, fmt.Errorf("last insert id: %w", err)
	}
	return model.Item{ID: model.NumericID(id), Body: body, Completed: completed}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
