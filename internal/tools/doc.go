// Package tools provides the tool registry and the todo tool pack.
//
// # Overview
//
// A tool is a named, schema-described callable the model may invoke through
// a structured action message. The registry is built once at startup and is
// immutable for the process lifetime; duplicate names fail construction.
//
// # The todo pack
//
// TodoPack registers five tools over the todo store:
//
//	createTodo(text)        -> new id
//	getAllTodos()           -> all todos
//	deleteTodoById(id)      -> deleted id
//	searchTodo(query)       -> matching todos
//	updateTodoById(id,text) -> updated id
//
// # Positional binding
//
// The model supplies arguments as a positional array. BindArgs validates
// arity and types against the tool's declared parameters and produces the
// named-argument JSON object handlers consume. Mismatches are rejected
// before any handler runs, so untrusted model output cannot reach a tool
// with the wrong shape.
package tools
