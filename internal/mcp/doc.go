// Package mcp exposes the todo tools over the Model Context Protocol.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This
// package wraps the todo store in an MCP server speaking stdio, so external
// clients (Claude Desktop, editors, other agents) can manage the same todo
// list the chat loop does.
//
// # Tools
//
// The five todo operations are exposed under their chat-facing names:
//
//   - createTodo(text)
//   - getAllTodos()
//   - deleteTodoById(id)
//   - searchTodo(query)
//   - updateTodoById(id, text)
//
// Results are returned as JSON text content; store errors become MCP tool
// errors rather than protocol failures.
//
// # Usage
//
// Run `quill mcp` and point an MCP client at the process. The server reads
// JSON-RPC from stdin and writes responses to stdout; logs go to stderr.
package mcp
