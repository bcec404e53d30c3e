// ABOUTME: Todo pack exposing todo CRUD and search to the model.
// ABOUTME: Handlers convert named arguments into store calls.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quill-cli/quill/internal/store"
)

// TodoPack creates the todo tools backed by the given store.
func TodoPack(s store.TodoStore) []*Tool {
	h := &todoHandlers{store: s}
	return []*Tool{
		{
			Definition: &Definition{
				Name:            "createTodo",
				Description:     "Create a new todo with the given text. Returns the new todo's id.",
				Params:          []Param{{Name: "text", Type: "string"}},
				InputSchemaJSON: `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`,
			},
			Handler: h.Create,
		},
		{
			Definition: &Definition{
				Name:            "getAllTodos",
				Description:     "List every todo in the list.",
				Params:          nil,
				InputSchemaJSON: `{"type":"object","properties":{}}`,
			},
			Handler: h.List,
		},
		{
			Definition: &Definition{
				Name:            "deleteTodoById",
				Description:     "Delete the todo with the given id. Returns the deleted id.",
				Params:          []Param{{Name: "id", Type: "integer"}},
				InputSchemaJSON: `{"type":"object","properties":{"id":{"type":"integer"}},"required":["id"]}`,
			},
			Handler: h.Delete,
		},
		{
			Definition: &Definition{
				Name:            "searchTodo",
				Description:     "Find todos whose text contains the query, ignoring case.",
				Params:          []Param{{Name: "query", Type: "string"}},
				InputSchemaJSON: `{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`,
			},
			Handler: h.Search,
		},
		{
			Definition: &Definition{
				Name:            "updateTodoById",
				Description:     "Replace the text of the todo with the given id. Returns the id.",
				Params:          []Param{{Name: "id", Type: "integer"}, {Name: "text", Type: "string"}},
				InputSchemaJSON: `{"type":"object","properties":{"id":{"type":"integer"},"text":{"type":"string"}},"required":["id","text"]}`,
			},
			Handler: h.Update,
		},
	}
}

type todoHandlers struct {
	store store.TodoStore
}

type createTodoInput struct {
	Text string `json:"text"`
}

func (h *todoHandlers) Create(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in createTodoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if in.Text == "" {
		return nil, fmt.Errorf("todo text must not be empty")
	}

	todo, err := h.store.CreateTodo(ctx, in.Text)
	if err != nil {
		return nil, err
	}

	return json.Marshal(todo.ID)
}

func (h *todoHandlers) List(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	todos, err := h.store.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*store.Todo{}
	}

	return json.Marshal(todos)
}

type deleteTodoInput struct {
	ID int64 `json:"id"`
}

func (h *todoHandlers) Delete(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in deleteTodoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := h.store.DeleteTodo(ctx, in.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no todo with id %d", in.ID)
		}
		return nil, err
	}

	return json.Marshal(in.ID)
}

type searchTodoInput struct {
	Query string `json:"query"`
}

func (h *todoHandlers) Search(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in searchTodoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	todos, err := h.store.SearchTodos(ctx, in.Query)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*store.Todo{}
	}

	return json.Marshal(todos)
}

type updateTodoInput struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

func (h *todoHandlers) Update(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in updateTodoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if in.Text == "" {
		return nil, fmt.Errorf("todo text must not be empty")
	}

	todo, err := h.store.UpdateTodo(ctx, in.ID, in.Text)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no todo with id %d", in.ID)
		}
		return nil, err
	}

	return json.Marshal(todo.ID)
}
