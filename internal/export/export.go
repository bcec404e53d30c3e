// ABOUTME: Renders a session transcript to Markdown and HTML for export.
// ABOUTME: Markdown is the source form; HTML is converted from it with goldmark.

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/quill-cli/quill/internal/protocol"
	"github.com/quill-cli/quill/internal/store"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
blockquote { color: #555; border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; }
pre { background: #f4f4f4; padding: 0.5rem 1rem; overflow-x: auto; }
code { background: #f4f4f4; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// Markdown writes the session transcript as a Markdown document.
func Markdown(w io.Writer, session *store.Session, msgs []*store.TranscriptMessage) error {
	title := session.Title
	if title == "" {
		title = session.ID
	}

	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "Session `%s`, started %s.\n\n", session.ID, session.CreatedAt.Format(time.RFC1123))

	for _, tm := range msgs {
		msg, err := protocol.Parse(tm.Payload)
		if err != nil {
			// Transcript rows are written by us, but stay readable if one
			// is ever corrupted.
			fmt.Fprintf(w, "> unreadable message %d: %v\n\n", tm.Seq, err)
			continue
		}

		switch msg.Type {
		case protocol.TypeUser:
			fmt.Fprintf(w, "**You:** %s\n\n", msg.User)
		case protocol.TypePlan:
			fmt.Fprintf(w, "> _plan:_ %s\n\n", msg.Plan)
		case protocol.TypeAction:
			fmt.Fprintf(w, "> `%s(%s)`\n\n", msg.Function, renderArgs(msg.Input))
		case protocol.TypeObservation:
			fmt.Fprintf(w, "> returned `%s`\n\n", compactJSON(msg.Observation))
		case protocol.TypeOutput:
			fmt.Fprintf(w, "**Assistant:** %s\n\n", msg.Output)
		}
	}
	return nil
}

// HTML writes the session transcript as a standalone HTML page.
func HTML(w io.Writer, session *store.Session, msgs []*store.TranscriptMessage) error {
	var md bytes.Buffer
	if err := Markdown(&md, session, msgs); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}

	title := session.Title
	if title == "" {
		title = session.ID
	}
	return pageTemplate.Execute(w, struct {
		Title   string
		Content template.HTML
	}{
		Title:   title,
		Content: template.HTML(body.String()),
	})
}

// renderArgs joins action arguments into a compact call-style list.
func renderArgs(input []json.RawMessage) string {
	parts := make([]string, len(input))
	for i, raw := range input {
		parts[i] = compactJSON(raw)
	}
	return strings.Join(parts, ", ")
}

// compactJSON re-marshals a raw value without insignificant whitespace,
// truncated so one huge observation cannot swamp the document.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	s := buf.String()
	if len(s) > 200 {
		s = s[:197] + "..."
	}
	return s
}
