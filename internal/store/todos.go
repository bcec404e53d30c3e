// ABOUTME: SQLite implementation of TodoStore operations.
// ABOUTME: Handles todo CRUD and case-insensitive substring search.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// CreateTodo inserts a new todo and returns the stored row.
func (s *SQLiteStore) CreateTodo(ctx context.Context, text string) (*Todo, error) {
	now := time.Now()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (todo, created_at, updated_at)
		VALUES (?, ?, ?)
	`, text, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Todo{ID: id, Text: text, CreatedAt: now, UpdatedAt: now}, nil
}

// GetTodo retrieves a todo by ID.
func (s *SQLiteStore) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	var t Todo
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, todo, created_at, updated_at FROM todos WHERE id = ?
	`, id).Scan(&t.ID, &t.Text, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &t, nil
}

// ListTodos lists all todos in insertion order.
func (s *SQLiteStore) ListTodos(ctx context.Context) ([]*Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, todo, created_at, updated_at FROM todos ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTodos(rows)
}

// UpdateTodo replaces the text of an existing todo and refreshes updated_at.
func (s *SQLiteStore) UpdateTodo(ctx context.Context, id int64, text string) (*Todo, error) {
	now := time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE todos SET todo = ?, updated_at = ? WHERE id = ?
	`, text, now.Format(time.RFC3339), id)
	if err != nil {
		return nil, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, ErrNotFound
	}

	return s.GetTodo(ctx, id)
}

// DeleteTodo deletes a todo by ID.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchTodos returns todos whose text contains query as a case-insensitive
// substring. The pattern is always a bound parameter; LIKE metacharacters in
// the query match literally.
func (s *SQLiteStore) SearchTodos(ctx context.Context, query string) ([]*Todo, error) {
	pattern := "%" + escapeLike(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, todo, created_at, updated_at FROM todos
		WHERE todo LIKE ? ESCAPE '\'
		ORDER BY id ASC
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTodos(rows)
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanTodos(rows *sql.Rows) ([]*Todo, error) {
	var todos []*Todo
	for rows.Next() {
		var t Todo
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Text, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		todos = append(todos, &t)
	}
	return todos, rows.Err()
}
