// Package engine runs the conversation loop between the operator, the model,
// and the tool registry.
//
// # Loop
//
// The engine alternates between waiting for operator input and driving model
// turns. One operator line becomes a user message; the engine then calls the
// model repeatedly until it produces an output message:
//
//   - plan: recorded and shown dimmed, the model is called again
//   - action: dispatched against the registry, the result (or a structured
//     error) is fed back as an observation, the model is called again
//   - output: shown to the operator, control returns to the input prompt
//
// # Hardening
//
// Model output is untrusted. A malformed reply earns one corrective
// observation and a retry before the turn is abandoned. Unknown tools, wrong
// arity, and type mismatches become error observations the model can react
// to instead of killing the process. A per-input step cap stops action loops,
// and only a bounded window of the transcript is sent per model call.
//
// Every message exchanged is appended to the session transcript in the store,
// so sessions can be listed and exported later.
package engine
