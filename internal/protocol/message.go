// ABOUTME: Structured message contract exchanged between the engine and the model.
// ABOUTME: Tagged union of user/plan/action/observation/output with strict validation.

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message types. Exactly one is present per message and determines which
// other fields are required.
const (
	TypeUser        = "user"
	TypePlan        = "plan"
	TypeAction      = "action"
	TypeObservation = "observation"
	TypeOutput      = "output"
)

// Message is one structured message in the conversation transcript.
type Message struct {
	Type string `json:"type"`

	// TypeUser
	User string `json:"user,omitempty"`

	// TypePlan
	Plan string `json:"plan,omitempty"`

	// TypeAction
	Function string            `json:"function,omitempty"`
	Input    []json.RawMessage `json:"input,omitempty"`

	// TypeObservation
	Observation json.RawMessage `json:"observation,omitempty"`

	// TypeOutput
	Output string `json:"output,omitempty"`
}

// NewUser wraps operator input as a user message.
func NewUser(text string) *Message {
	return &Message{Type: TypeUser, User: text}
}

// NewObservation wraps a tool result (or error payload) as an observation.
// The payload must be valid JSON.
func NewObservation(payload json.RawMessage) *Message {
	return &Message{Type: TypeObservation, Observation: payload}
}

// NewErrorObservation builds an observation describing a dispatch failure so
// the model can react conversationally instead of the process dying.
func NewErrorObservation(msg string) *Message {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	return &Message{Type: TypeObservation, Observation: payload}
}

// Validate checks that the message matches one of the five known shapes.
func (m *Message) Validate() error {
	switch m.Type {
	case TypeUser:
		if m.User == "" {
			return fmt.Errorf("user message missing %q field", "user")
		}
	case TypePlan:
		if m.Plan == "" {
			return fmt.Errorf("plan message missing %q field", "plan")
		}
	case TypeAction:
		if m.Function == "" {
			return fmt.Errorf("action message missing %q field", "function")
		}
		if m.Input == nil {
			return fmt.Errorf("action message missing %q field", "input")
		}
	case TypeObservation:
		if len(m.Observation) == 0 {
			return fmt.Errorf("observation message missing %q field", "observation")
		}
	case TypeOutput:
		if m.Output == "" {
			return fmt.Errorf("output message missing %q field", "output")
		}
	case "":
		return fmt.Errorf("message has no type tag")
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// MarshalJSON keeps an action's input array present even when empty.
// omitempty would drop it, and the result would no longer validate.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	if m.Type == TypeAction {
		input := m.Input
		if input == nil {
			input = []json.RawMessage{}
		}
		return json.Marshal(struct {
			alias
			Input []json.RawMessage `json:"input"`
		}{alias(m), input})
	}
	return json.Marshal(alias(m))
}

// Encode serializes the message to its wire form.
func (m *Message) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding message: %w", err)
	}
	return string(b), nil
}

// Parse extracts a structured message from raw model text. An optional
// markdown code fence around the JSON is stripped first; the result must
// parse as JSON and validate as one of the known shapes.
func Parse(raw string) (*Message, error) {
	cleaned := StripFence(raw)

	var m Message
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, fmt.Errorf("parsing model reply: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model reply: %w", err)
	}
	return &m, nil
}

// StripFence removes a surrounding markdown code fence, with or without a
// language tag, leaving the inner text untouched.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the fence line.
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
