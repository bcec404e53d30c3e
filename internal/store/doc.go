// Package store provides persistent storage for quill using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture:
//
//   - TodoStore: CRUD and substring search over the todo table
//   - SessionStore: chat sessions and their append-only transcripts
//   - Store: the combined interface the rest of the program depends on
//
// SQLiteStore implements all interfaces in a single struct.
//
// # Data Models
//
//   - Todo: one todo entry (integer id, text, timestamps)
//   - Session: one chat session
//   - TranscriptMessage: one serialized structured message within a session
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Database file locations:
//
//   - Production: ~/.local/share/quill/quill.db
//   - Testing: :memory: (in-memory database)
//
// # Error Handling
//
// ErrNotFound is returned when a requested row does not exist. Delete and
// update report ErrNotFound via RowsAffected rather than assuming the row
// was present. All methods accept context.Context.
//
// # Search
//
// SearchTodos matches a case-insensitive substring. The pattern is a bound
// parameter and LIKE metacharacters in the query are escaped, so user input
// can never alter the query shape.
package store
