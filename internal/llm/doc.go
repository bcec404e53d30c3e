// Package llm is the model boundary: a small HTTP client for the Gemini
// generateContent API.
//
// # Overview
//
// One Generate call sends the fixed system instruction plus the transcript
// turns and returns the model's reply text. The engine owns retries and
// interpretation; this package only moves bytes.
//
// # Authentication
//
// The API key comes from the GEMINI_API_KEY environment variable and is sent
// in the x-goog-api-key header. NewFromEnv fails fast when it is missing.
//
// # Request shape
//
// Requests carry a system_instruction, alternating user/model contents, and
// a generationConfig asking for application/json replies. Each call is
// bounded by the configured timeout on top of the caller's context.
package llm
