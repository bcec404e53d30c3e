// Package export renders persisted session transcripts for sharing.
//
// Markdown is the source form: user and assistant text are shown prominently
// while plans, actions, and observations become quoted metadata. HTML wraps
// the goldmark-converted Markdown in a small standalone page.
package export
