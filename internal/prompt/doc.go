// Package prompt builds the fixed system instruction sent with every model
// call.
//
// The instruction embeds the conversational protocol (the five message
// shapes and their rules), the registry's tool names and JSON descriptors,
// the todo table schema, and a worked example transcript. Build is pure:
// the same registry always yields the same string.
package prompt
