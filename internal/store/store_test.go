// ABOUTME: Tests for the SQLite store implementation.
// ABOUTME: Uses an in-memory database for todo and session coverage.

package store

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateTodoThenList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	todo, err := s.CreateTodo(ctx, "buy milk")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if todo.ID == 0 {
		t.Error("expected non-zero id")
	}
	if todo.Text != "buy milk" {
		t.Errorf("unexpected text: %q", todo.Text)
	}

	todos, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(todos))
	}
	if todos[0].ID != todo.ID || todos[0].Text != "buy milk" {
		t.Errorf("listed todo mismatch: %+v", todos[0])
	}
}

func TestListTodosInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.CreateTodo(ctx, text); err != nil {
			t.Fatalf("CreateTodo %q: %v", text, err)
		}
	}

	todos, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	for i, want := range []string{"first", "second", "third"} {
		if todos[i].Text != want {
			t.Errorf("todos[%d].Text = %q, want %q", i, todos[i].Text, want)
		}
	}
}

func TestDeleteTodo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	todo, err := s.CreateTodo(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	if err := s.DeleteTodo(ctx, todo.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}

	todos, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	for _, got := range todos {
		if got.ID == todo.ID {
			t.Errorf("deleted todo %d still listed", todo.ID)
		}
	}
}

func TestDeleteTodoNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteTodo(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTodo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	todo, err := s.CreateTodo(ctx, "old text")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	updated, err := s.UpdateTodo(ctx, todo.ID, "new text")
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if updated.ID != todo.ID {
		t.Errorf("id changed: %d -> %d", todo.ID, updated.ID)
	}
	if updated.Text != "new text" {
		t.Errorf("unexpected text: %q", updated.Text)
	}

	todos, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "new text" {
		t.Errorf("list does not reflect update: %+v", todos)
	}
}

func TestUpdateTodoNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateTodo(context.Background(), 9999, "text")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTodoNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTodo(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchTodosCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"Buy MILK", "walk the dog", "buy milkshake"} {
		if _, err := s.CreateTodo(ctx, text); err != nil {
			t.Fatalf("CreateTodo %q: %v", text, err)
		}
	}

	results, err := s.SearchTodos(ctx, "milk")
	if err != nil {
		t.Fatalf("SearchTodos: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	for _, r := range results {
		if r.Text == "walk the dog" {
			t.Error("non-matching row included in search results")
		}
	}
}

func TestSearchTodosEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTodo(ctx, "finish 100% of report"); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if _, err := s.CreateTodo(ctx, "finish 100 reports"); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	// "%" must match only the literal percent sign, not act as a wildcard.
	results, err := s.SearchTodos(ctx, "100%")
	if err != nil {
		t.Fatalf("SearchTodos: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].Text != "finish 100% of report" {
		t.Errorf("unexpected match: %q", results[0].Text)
	}
}

func TestSearchTodosNoMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTodo(ctx, "something"); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	results, err := s.SearchTodos(ctx, "nomatch")
	if err != nil {
		t.Fatalf("SearchTodos: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no matches, got %d", len(results))
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &Session{Title: "Add milk to my list"}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected generated session id")
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Title != "Add milk to my list" {
		t.Errorf("unexpected title: %q", got.Title)
	}

	if err := s.TouchSession(ctx, sess.ID); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}

	sessions, err := s.ListSessions(ctx, 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
}

func TestSetSessionTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &Session{}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := s.SetSessionTitle(ctx, sess.ID, "groceries"); err != nil {
		t.Fatalf("SetSessionTitle: %v", err)
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Title != "groceries" {
		t.Errorf("unexpected title: %q", got.Title)
	}

	if err := s.SetSessionTitle(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchSessionNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.TouchSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTranscriptAppendAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &Session{Title: "test"}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	payloads := []string{
		`{"type":"user","user":"Add milk"}`,
		`{"type":"plan","plan":"I will call createTodo"}`,
		`{"type":"output","output":"Done"}`,
	}
	roles := []string{RoleUser, RoleModel, RoleModel}
	for i, p := range payloads {
		msg := &TranscriptMessage{
			SessionID: sess.ID,
			Seq:       i,
			Role:      roles[i],
			Payload:   p,
		}
		if err := s.AppendTranscript(ctx, msg); err != nil {
			t.Fatalf("AppendTranscript seq %d: %v", i, err)
		}
	}

	msgs, err := s.GetTranscript(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != i {
			t.Errorf("msgs[%d].Seq = %d", i, m.Seq)
		}
		if m.Payload != payloads[i] {
			t.Errorf("msgs[%d].Payload = %q, want %q", i, m.Payload, payloads[i])
		}
	}
}

func TestTranscriptDuplicateSeqRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &Session{Title: "test"}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	msg := &TranscriptMessage{SessionID: sess.ID, Seq: 0, Role: RoleUser, Payload: `{}`}
	if err := s.AppendTranscript(ctx, msg); err != nil {
		t.Fatalf("AppendTranscript: %v", err)
	}

	dup := &TranscriptMessage{SessionID: sess.ID, Seq: 0, Role: RoleUser, Payload: `{}`}
	if err := s.AppendTranscript(ctx, dup); err == nil {
		t.Error("expected error for duplicate sequence number")
	}
}
