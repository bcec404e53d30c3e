// ABOUTME: Store interface and data types for quill persistence
// ABOUTME: Defines Todo, Session, TranscriptMessage and the store interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Todo represents a single todo list entry.
type Todo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"todo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roles for transcript messages.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Session represents one chat session.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TranscriptMessage is one persisted structured message within a session.
// Payload holds the serialized structured message exactly as exchanged
// with the model.
type TranscriptMessage struct {
	ID        string
	SessionID string
	Seq       int
	Role      string // "user" or "model"
	Payload   string
	CreatedAt time.Time
}

// TodoStore defines todo table operations.
type TodoStore interface {
	CreateTodo(ctx context.Context, text string) (*Todo, error)
	GetTodo(ctx context.Context, id int64) (*Todo, error)
	ListTodos(ctx context.Context) ([]*Todo, error)
	UpdateTodo(ctx context.Context, id int64, text string) (*Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	SearchTodos(ctx context.Context, query string) ([]*Todo, error)
}

// SessionStore defines session and transcript persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
	TouchSession(ctx context.Context, id string) error
	SetSessionTitle(ctx context.Context, id, title string) error

	AppendTranscript(ctx context.Context, msg *TranscriptMessage) error
	GetTranscript(ctx context.Context, sessionID string) ([]*TranscriptMessage, error)
}

// Store combines all persistence interfaces.
type Store interface {
	TodoStore
	SessionStore

	// Close releases any resources held by the store
	Close() error
}
