// Package protocol defines the structured message contract between the
// conversation engine and the model.
//
// Every transcript entry is one JSON object carrying a "type" tag that
// selects exactly one of five shapes:
//
//	{"type":"user","user":"..."}
//	{"type":"plan","plan":"..."}
//	{"type":"action","function":"...","input":[...]}
//	{"type":"observation","observation":<any JSON>}
//	{"type":"output","output":"..."}
//
// Model replies may arrive wrapped in a markdown code fence; Parse strips
// the fence, parses the JSON, and validates the shape explicitly. Anything
// that does not match a known shape is rejected rather than trusted.
package protocol
