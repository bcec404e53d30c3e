// ABOUTME: Tests for Markdown and HTML transcript export.

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-cli/quill/internal/store"
)

func sampleSession() (*store.Session, []*store.TranscriptMessage) {
	session := &store.Session{
		ID:        "s-1",
		Title:     "groceries",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	payloads := []struct {
		role    string
		payload string
	}{
		{store.RoleUser, `{"type":"user","user":"add milk"}`},
		{store.RoleModel, `{"type":"plan","plan":"create a todo for milk"}`},
		{store.RoleModel, `{"type":"action","function":"createTodo","input":["milk"]}`},
		{store.RoleUser, `{"type":"observation","observation":7}`},
		{store.RoleModel, `{"type":"output","output":"Added milk to your list."}`},
	}

	msgs := make([]*store.TranscriptMessage, len(payloads))
	for i, p := range payloads {
		msgs[i] = &store.TranscriptMessage{
			SessionID: session.ID,
			Seq:       i + 1,
			Role:      p.role,
			Payload:   p.payload,
		}
	}
	return session, msgs
}

func TestMarkdown(t *testing.T) {
	session, msgs := sampleSession()

	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, session, msgs))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# groceries\n"))
	assert.Contains(t, out, "**You:** add milk")
	assert.Contains(t, out, "_plan:_ create a todo for milk")
	assert.Contains(t, out, "`createTodo(\"milk\")`")
	assert.Contains(t, out, "returned `7`")
	assert.Contains(t, out, "**Assistant:** Added milk to your list.")
}

func TestMarkdownUnreadableRow(t *testing.T) {
	session, _ := sampleSession()
	msgs := []*store.TranscriptMessage{
		{SessionID: session.ID, Seq: 1, Role: store.RoleModel, Payload: "not json"},
	}

	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, session, msgs))
	assert.Contains(t, buf.String(), "unreadable message 1")
}

func TestHTML(t *testing.T) {
	session, msgs := sampleSession()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, session, msgs))
	out := buf.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>groceries</title>")
	assert.Contains(t, out, "<strong>You:</strong> add milk")
	assert.Contains(t, out, "Added milk to your list.")
}

func TestHTMLUntitledSessionUsesID(t *testing.T) {
	session, msgs := sampleSession()
	session.Title = ""

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, session, msgs))
	assert.Contains(t, buf.String(), "<title>s-1</title>")
}
