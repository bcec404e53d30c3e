// ABOUTME: MCP stdio server exposing the todo tools to external clients.
// ABOUTME: Wraps store operations in mcp-go tool handlers.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quill-cli/quill/internal/store"
)

// NewServer builds an MCP server exposing the todo tools backed by the
// given store.
func NewServer(st store.TodoStore, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"quill",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	h := &todoTools{store: st, logger: logger.With("component", "mcp")}
	h.register(s)
	return s
}

// Serve runs the server over stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type todoTools struct {
	store  store.TodoStore
	logger *slog.Logger
}

func (h *todoTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("createTodo",
		mcp.WithDescription("Create a new todo with the given text. Returns the new todo's id."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Todo text")),
	), h.createTodo)

	s.AddTool(mcp.NewTool("getAllTodos",
		mcp.WithDescription("List every todo in the list."),
	), h.getAllTodos)

	s.AddTool(mcp.NewTool("deleteTodoById",
		mcp.WithDescription("Delete the todo with the given id. Returns the deleted id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo id")),
	), h.deleteTodoByID)

	s.AddTool(mcp.NewTool("searchTodo",
		mcp.WithDescription("Find todos whose text contains the query, ignoring case."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to search for")),
	), h.searchTodo)

	s.AddTool(mcp.NewTool("updateTodoById",
		mcp.WithDescription("Replace the text of the todo with the given id. Returns the id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Replacement text")),
	), h.updateTodoByID)
}

type createTodoArgs struct {
	Text string `json:"text"`
}

func (h *todoTools) createTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createTodoArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Text == "" {
		return mcp.NewToolResultError("todo text must not be empty"), nil
	}

	todo, err := h.store.CreateTodo(ctx, args.Text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.logger.Info("todo created via mcp", "id", todo.ID)
	return jsonResult(todo.ID)
}

func (h *todoTools) getAllTodos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	todos, err := h.store.ListTodos(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if todos == nil {
		todos = []*store.Todo{}
	}
	return jsonResult(todos)
}

type deleteTodoArgs struct {
	ID int64 `json:"id"`
}

func (h *todoTools) deleteTodoByID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args deleteTodoArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	if err := h.store.DeleteTodo(ctx, args.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no todo with id %d", args.ID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.logger.Info("todo deleted via mcp", "id", args.ID)
	return jsonResult(args.ID)
}

type searchTodoArgs struct {
	Query string `json:"query"`
}

func (h *todoTools) searchTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchTodoArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	todos, err := h.store.SearchTodos(ctx, args.Query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if todos == nil {
		todos = []*store.Todo{}
	}
	return jsonResult(todos)
}

type updateTodoArgs struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

func (h *todoTools) updateTodoByID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateTodoArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Text == "" {
		return mcp.NewToolResultError("todo text must not be empty"), nil
	}

	todo, err := h.store.UpdateTodo(ctx, args.ID, args.Text)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no todo with id %d", args.ID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(todo.ID)
}

// jsonResult serializes a value as the tool's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
